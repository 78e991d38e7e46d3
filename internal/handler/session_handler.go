package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/mkajic20/smart-charger-backend/internal/service"
)

// SessionHandler serves the card-reader endpoints.
type SessionHandler struct {
	sessions service.SessionService
	cards    service.CardService
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(sessions service.SessionService, cards service.CardService) *SessionHandler {
	return &SessionHandler{sessions: sessions, cards: cards}
}

// StartChargingRequest is sent by a charger when a card is presented.
type StartChargingRequest struct {
	StartTime time.Time `json:"start_time"`
	ChargerID uint      `json:"charger_id" validate:"required"`
	CardID    uint      `json:"card_id" validate:"required"`
	UserID    uint      `json:"user_id"`
}

// EndChargingRequest is sent by a charger when the session finishes.
type EndChargingRequest struct {
	EventID uint                `json:"event_id" validate:"required"`
	EndTime time.Time           `json:"end_time"`
	Volume  decimal.NullDecimal `json:"volume" swaggertype:"number"`
}

// VerifyCardRequest carries the value read from an RFID card.
type VerifyCardRequest struct {
	Value string `json:"value" validate:"required"`
}

// StartCharging godoc
// @Summary Start a charging session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body StartChargingRequest true "Session start"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /events/start [post]
func (h *SessionHandler) StartCharging(c echo.Context) error {
	var req StartChargingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res := h.sessions.StartCharging(c.Request().Context(), service.StartChargingInput{
		StartTime: req.StartTime,
		ChargerID: req.ChargerID,
		CardID:    req.CardID,
		UserID:    req.UserID,
	})
	return respond(c, http.StatusOK, res)
}

// EndCharging godoc
// @Summary End a charging session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body EndChargingRequest true "Session end"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /events/stop [patch]
func (h *SessionHandler) EndCharging(c echo.Context) error {
	var req EndChargingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res := h.sessions.EndCharging(c.Request().Context(), service.EndChargingInput{
		EventID: req.EventID,
		EndTime: req.EndTime,
		Volume:  req.Volume,
	})
	return respond(c, http.StatusOK, res)
}

// VerifyCard godoc
// @Summary Check whether a card may start a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body VerifyCardRequest true "Card value"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /cards/verify [post]
func (h *SessionHandler) VerifyCard(c echo.Context) error {
	var req VerifyCardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.cards.VerifyCard(c.Request().Context(), req.Value))
}
