package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkajic20/smart-charger-backend/internal/service"
)

// CardHandler serves RFID card endpoints for owners and administrators.
type CardHandler struct {
	cards service.CardService
}

// NewCardHandler creates a card handler.
func NewCardHandler(cards service.CardService) *CardHandler {
	return &CardHandler{cards: cards}
}

// AddCardRequest is the body for registering a card.
type AddCardRequest struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

// ListCards godoc
// @Summary List all cards
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Owner or card name filter"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/cards [get]
func (h *CardHandler) ListCards(c echo.Context) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.cards.GetAllCards(c.Request().Context(), q))
}

// GetCard godoc
// @Summary Get card by id
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/cards/{id} [get]
func (h *CardHandler) GetCard(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.cards.GetCardByID(c.Request().Context(), id))
}

// ToggleCard godoc
// @Summary Enable or disable a card
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/cards/{id} [patch]
func (h *CardHandler) ToggleCard(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.cards.UpdateActiveStatus(c.Request().Context(), id))
}

// DeleteCard godoc
// @Summary Delete card
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/cards/{id} [delete]
func (h *CardHandler) DeleteCard(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.cards.DeleteCard(c.Request().Context(), id))
}

// ListUserCards godoc
// @Summary List the caller's cards
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} map[string]interface{}
// @Router /users/{id}/cards [get]
func (h *CardHandler) ListUserCards(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.cards.GetAllCardsForUser(c.Request().Context(), userID))
}

// GetUserCard godoc
// @Summary Get one of the caller's cards
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param cardId path int true "Card ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /users/{id}/cards/{cardId} [get]
func (h *CardHandler) GetUserCard(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	cardID, err := parseID(c, "cardId")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.cards.GetCardByIDForUser(c.Request().Context(), cardID, userID))
}

// AddUserCard godoc
// @Summary Register a card for the caller
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body AddCardRequest true "Card payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /users/{id}/cards [post]
func (h *CardHandler) AddUserCard(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req AddCardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res := h.cards.AddCard(c.Request().Context(), service.CardInput{Value: req.Value, Name: req.Name}, userID)
	return respond(c, http.StatusCreated, res)
}

// DeleteUserCard godoc
// @Summary Delete one of the caller's cards
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param cardId path int true "Card ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /users/{id}/cards/{cardId} [delete]
func (h *CardHandler) DeleteUserCard(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	cardID, err := parseID(c, "cardId")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.cards.DeleteCardForUser(c.Request().Context(), cardID, userID))
}
