package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperr "github.com/mkajic20/smart-charger-backend/internal/errors"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

// Result is the envelope every service operation returns. Failures never
// escape as Go errors; Kind tells the transport how to report them.
type Result[T any] struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
	Page       *int   `json:"page,omitempty"`
	TotalPages *int   `json:"total_pages,omitempty"`
	Payload    T      `json:"payload,omitempty"`

	Kind apperr.Kind `json:"-"`
}

func ok[T any](message string, payload T) Result[T] {
	return Result[T]{Success: true, Message: message, Payload: payload}
}

func paged[T any](message string, payload T, page, totalPages int) Result[T] {
	return Result[T]{Success: true, Message: message, Payload: payload, Page: &page, TotalPages: &totalPages}
}

func fail[T any](err error) Result[T] {
	domainErr := apperr.From(err)
	res := Result[T]{Kind: domainErr.Kind, Message: domainErr.Message, Error: domainErr.Detail}
	if domainErr.Kind == apperr.KindStore && domainErr.Err != nil {
		res.Error = domainErr.Err.Error()
	}
	return res
}

// missing converts gorm.ErrRecordNotFound into a NotFound error with message and
// wraps anything else with op.
func missing(err error, op, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// pageOf applies the shared paging contract to a listing: an empty match or a
// page past the end fails with emptyMessage.
func pageOf[T any](items []T, total int64, q repository.PageQuery, message, emptyMessage string) Result[[]T] {
	totalPages := repository.TotalPages(total, q.PageSize)
	if total == 0 || q.Page > totalPages {
		return fail[[]T](apperr.NotFound(emptyMessage))
	}
	return paged(message, items, q.Page, totalPages)
}
