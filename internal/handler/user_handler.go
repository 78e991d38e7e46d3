package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkajic20/smart-charger-backend/internal/service"
)

// UserHandler bundles the administrative user endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Name or email filter"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.svc.GetAllUsers(c.Request().Context(), q))
}

// GetUser godoc
// @Summary Get user by id
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.svc.GetUserByID(c.Request().Context(), id))
}

// ToggleUser godoc
// @Summary Activate or deactivate a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users/{id}/activate [patch]
func (h *UserHandler) ToggleUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.svc.UpdateActiveStatus(c.Request().Context(), id))
}

// UpdateRole godoc
// @Summary Change a user's role
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param roleId path int true "Role ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /admin/users/{id}/role/{roleId} [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	roleID, err := parseID(c, "roleId")
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.svc.UpdateRole(c.Request().Context(), id, roleID))
}

// ListRoles godoc
// @Summary List roles
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /admin/roles [get]
func (h *UserHandler) ListRoles(c echo.Context) error {
	return respond(c, http.StatusOK, h.svc.GetAllRoles(c.Request().Context()))
}
