package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkajic20/smart-charger-backend/internal/service"
)

// ChargerHandler serves charging station endpoints.
type ChargerHandler struct {
	chargers service.ChargerService
	sessions service.SessionService
}

// NewChargerHandler creates a charger handler.
func NewChargerHandler(chargers service.ChargerService, sessions service.SessionService) *ChargerHandler {
	return &ChargerHandler{chargers: chargers, sessions: sessions}
}

// ChargerRequest is the body for creating or updating a charger.
type ChargerRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r ChargerRequest) input() service.ChargerInput {
	return service.ChargerInput{Name: r.Name, Latitude: r.Latitude, Longitude: r.Longitude}
}

// ListChargers godoc
// @Summary List chargers
// @Tags chargers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Name filter"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /chargers [get]
func (h *ChargerHandler) ListChargers(c echo.Context) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.chargers.GetAllChargers(c.Request().Context(), q))
}

// GetCharger godoc
// @Summary Get charger by id
// @Tags chargers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Charger ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} map[string]interface{}
// @Router /chargers/{id} [get]
func (h *ChargerHandler) GetCharger(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.chargers.GetChargerByID(c.Request().Context(), id))
}

// ActiveSession godoc
// @Summary Get the open session on a charger
// @Tags chargers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Charger ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /chargers/{id}/session [get]
func (h *ChargerHandler) ActiveSession(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.sessions.ActiveSession(c.Request().Context(), id))
}

// CreateCharger godoc
// @Summary Create charger
// @Tags chargers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChargerRequest true "Charger payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /chargers [post]
func (h *ChargerHandler) CreateCharger(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	var req ChargerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, h.chargers.CreateNewCharger(c.Request().Context(), req.input(), claims.UserID))
}

// UpdateCharger godoc
// @Summary Update charger name and location
// @Tags chargers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Charger ID"
// @Param request body ChargerRequest true "Charger payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /chargers/{id} [put]
func (h *ChargerHandler) UpdateCharger(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req ChargerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.chargers.UpdateCharger(c.Request().Context(), id, req.input()))
}

// DeleteCharger godoc
// @Summary Delete charger
// @Tags chargers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Charger ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /chargers/{id} [delete]
func (h *ChargerHandler) DeleteCharger(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.chargers.DeleteCharger(c.Request().Context(), id))
}
