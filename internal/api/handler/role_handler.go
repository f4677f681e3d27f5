package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

// RoleHandler exposes the role catalog. Every route is admin-gated at
// the router, including the read side.
type RoleHandler struct {
	roleService ports.RoleService
}

func NewRoleHandler(roleService ports.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

type createRoleRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Code        string `json:"code" validate:"required,max=50"`
	Description string `json:"description"`
}

type updateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type roleResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Role    *domain.Role `json:"role"`
}

type roleListResponse struct {
	Status string        `json:"status"`
	Roles  []domain.Role `json:"roles"`
}

// List returns the catalog, newest-created first. Pass all=true to
// include deactivated roles.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Param        all  query     bool  false  "Include deactivated roles"
// @Success      200  {object}  roleListResponse
// @Failure      403  {object}  map[string]any
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	includeInactive, _ := strconv.ParseBool(c.QueryParam("all"))

	roles, err := h.roleService.ListRoles(c.Request().Context(), !includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleListResponse{Status: "success", Roles: roles})
}

// Create adds a role to the catalog.
//
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      createRoleRequest  true  "Role definition"
// @Success      201   {object}  roleResponse
// @Failure      400   {object}  map[string]any
// @Router       /roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	role, err := h.roleService.CreateRole(c.Request().Context(), ports.CreateRoleInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, roleResponse{
		Status:  "success",
		Message: "role created successfully",
		Role:    role,
	})
}

// Get fetches a single role by id.
//
// @Summary      Get role
// @Tags         roles
// @Produce      json
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  roleResponse
// @Failure      404  {object}  map[string]any
// @Router       /roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	role, err := h.roleService.GetRole(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{Status: "success", Role: role})
}

// Update applies a partial update to a role. The code is immutable.
//
// @Summary      Update role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Role id"
// @Param        body  body      updateRoleRequest  true  "Fields to update"
// @Success      200   {object}  roleResponse
// @Failure      404   {object}  map[string]any
// @Router       /roles/{id} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	role, err := h.roleService.UpdateRole(c.Request().Context(), c.Param("id"), ports.RoleUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{
		Status:  "success",
		Message: "role updated successfully",
		Role:    role,
	})
}

// Deactivate soft-deletes a role. Assignments referencing it become
// ineffective immediately.
//
// @Summary      Deactivate role
// @Tags         roles
// @Produce      json
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  ackResponse
// @Failure      404  {object}  map[string]any
// @Router       /roles/{id} [delete]
func (h *RoleHandler) Deactivate(c echo.Context) error {
	if err := h.roleService.DeactivateRole(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ackResponse{Status: "success", Message: "role deactivated successfully"})
}
