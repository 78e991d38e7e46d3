package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkajic20/smart-charger-backend/internal/service"
)

// HistoryHandler serves finished charging sessions.
type HistoryHandler struct {
	history service.HistoryService
}

// NewHistoryHandler creates a history handler.
func NewHistoryHandler(history service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// UserHistory godoc
// @Summary List a user's finished sessions
// @Tags history
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Card or charger name filter"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /users/{id}/history [get]
func (h *HistoryHandler) UserHistory(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.history.GetUsersChargingHistory(c.Request().Context(), userID, q))
}

// FullHistory godoc
// @Summary List every finished session
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "User, card or charger name filter"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/history [get]
func (h *HistoryHandler) FullHistory(c echo.Context) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.history.GetFullChargingHistory(c.Request().Context(), q))
}
