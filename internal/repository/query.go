package repository

import (
	"math"
	"strings"

	"gorm.io/gorm"
)

// PageQuery selects one page of a searchable listing.
type PageQuery struct {
	Page     int
	PageSize int
	Search   string
}

// Normalize clamps the page to 1 and falls back to defaultSize for an unset page size.
func (q PageQuery) Normalize(defaultSize int) PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Offset is the number of rows skipped before the requested page.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// TotalPages returns ceil(total/pageSize).
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

// likeEscaper escapes LIKE wildcards with '!', which every supported dialect accepts
// as an explicit ESCAPE character.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// searchScope matches term as a case-insensitive substring of any of columns.
func searchScope(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	term = strings.ToLower(strings.TrimSpace(term))
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + likeEscaper.Replace(term) + "%"
		conds := make([]string, 0, len(columns))
		args := make([]interface{}, 0, len(columns))
		for _, col := range columns {
			conds = append(conds, "LOWER("+col+") LIKE ? ESCAPE '!'")
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// findPage counts the rows matched by query and loads the requested page ordered
// by table.id. query must already carry its filters; preloads are applied to the
// page load only.
func findPage[T any](query *gorm.DB, table string, q PageQuery, dest *[]T, preloads ...string) (int64, error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 || q.Offset() >= int(total) {
		return total, nil
	}

	page := query.Select(table + ".*")
	for _, rel := range preloads {
		page = page.Preload(rel)
	}
	err := page.
		Order(table + ".id ASC").
		Offset(q.Offset()).
		Limit(q.PageSize).
		Find(dest).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
