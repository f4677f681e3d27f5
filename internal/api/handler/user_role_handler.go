package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

// UserRoleHandler exposes the user-role assignment ledger. Admin-only.
type UserRoleHandler struct {
	rbacService ports.RBACService
}

func NewUserRoleHandler(rbacService ports.RBACService) *UserRoleHandler {
	return &UserRoleHandler{rbacService: rbacService}
}

type assignRoleRequest struct {
	RoleID string `json:"role_id" validate:"required"`
}

type grantedRoleView struct {
	Role       roleSummary           `json:"role"`
	Assignment domain.RoleAssignment `json:"assignment"`
}

type userRolesResponse struct {
	Status string            `json:"status"`
	Roles  []grantedRoleView `json:"roles"`
}

type assignRoleResponse struct {
	Status     string                 `json:"status"`
	Message    string                 `json:"message"`
	Created    bool                   `json:"created"`
	Assignment *domain.RoleAssignment `json:"assignment"`
}

// List returns the user's active role assignments with metadata.
//
// @Summary      List a user's roles
// @Tags         user-roles
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userRolesResponse
// @Failure      404  {object}  map[string]any
// @Router       /users/{id}/roles [get]
func (h *UserRoleHandler) List(c echo.Context) error {
	granted, err := h.rbacService.ListUserRoles(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	views := make([]grantedRoleView, 0, len(granted))
	for _, g := range granted {
		views = append(views, grantedRoleView{
			Role:       roleSummary{ID: g.Role.ID, Name: g.Role.Name, Code: g.Role.Code},
			Assignment: g.Assignment,
		})
	}
	return c.JSON(http.StatusOK, userRolesResponse{Status: "success", Roles: views})
}

// Assign grants a role to a user. The operation is an idempotent
// upsert: 201 when a new assignment row was created, 200 when an
// existing row was reactivated.
//
// @Summary      Assign a role to a user
// @Tags         user-roles
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      assignRoleRequest  true  "Role to assign"
// @Success      200   {object}  assignRoleResponse
// @Success      201   {object}  assignRoleResponse
// @Failure      404   {object}  map[string]any
// @Router       /users/{id}/roles [post]
func (h *UserRoleHandler) Assign(c echo.Context) error {
	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	assignment, created, err := h.rbacService.AssignRole(c.Request().Context(), c.Param("id"), req.RoleID)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, assignRoleResponse{
		Status:     "success",
		Message:    "role assigned successfully",
		Created:    created,
		Assignment: assignment,
	})
}

// Revoke soft-revokes a role from a user.
//
// @Summary      Revoke a role from a user
// @Tags         user-roles
// @Produce      json
// @Param        id      path      string  true  "User id"
// @Param        roleId  path      string  true  "Role id"
// @Success      200     {object}  ackResponse
// @Failure      404     {object}  map[string]any
// @Router       /users/{id}/roles/{roleId} [delete]
func (h *UserRoleHandler) Revoke(c echo.Context) error {
	if err := h.rbacService.RevokeRole(c.Request().Context(), c.Param("id"), c.Param("roleId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ackResponse{Status: "success", Message: "role revoked successfully"})
}
