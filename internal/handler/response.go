package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mkajic20/smart-charger-backend/internal/auth"
	"github.com/mkajic20/smart-charger-backend/internal/errors"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
	"github.com/mkajic20/smart-charger-backend/internal/service"
)

// listQuery binds the paging parameters shared by list endpoints.
type listQuery struct {
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
	Search   string `query:"search"`
}

func (q listQuery) pageQuery() repository.PageQuery {
	return repository.PageQuery{Page: q.Page, PageSize: q.PageSize, Search: q.Search}
}

func bindListQuery(c echo.Context) (repository.PageQuery, error) {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return repository.PageQuery{}, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_QUERY",
		})
	}
	return q.pageQuery(), nil
}

// respond writes the envelope with okStatus on success and the status mapped
// from the failure kind otherwise.
func respond[T any](c echo.Context, okStatus int, res service.Result[T]) error {
	if res.Success {
		return c.JSON(okStatus, res)
	}
	return c.JSON(errors.HTTPStatus(res.Kind), res)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid " + name,
			Code:  "INVALID_ID",
		})
	}
	return uint(id), nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
	}
	return nil
}

func currentClaims(c echo.Context) (*auth.Claims, error) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "invalid token",
			Code:  "INVALID_TOKEN",
		})
	}
	return claims, nil
}
