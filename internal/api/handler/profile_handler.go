package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

type ProfileHandler struct {
	authService ports.AuthService
}

func NewProfileHandler(authService ports.AuthService) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

type updateProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type roleSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type profileView struct {
	ID          string        `json:"id"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	FirstName   string        `json:"first_name,omitempty"`
	LastName    string        `json:"last_name,omitempty"`
	LastLoginAt *string       `json:"last_login_at,omitempty"`
	Roles       []roleSummary `json:"roles"`
}

type profileResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	User    profileView `json:"user"`
}

func toProfileView(p *ports.Profile) profileView {
	roles := make([]roleSummary, 0, len(p.Roles))
	for _, r := range p.Roles {
		roles = append(roles, roleSummary{ID: r.ID, Name: r.Name, Code: r.Code})
	}
	view := profileView{
		ID:        p.User.ID,
		Username:  p.User.Username,
		Email:     p.User.Email,
		FirstName: p.User.FirstName,
		LastName:  p.User.LastName,
		Roles:     roles,
	}
	if p.User.LastLoginAt != nil {
		formatted := p.User.LastLoginAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		view.LastLoginAt = &formatted
	}
	return view
}

// Get returns the authenticated user's profile together with the
// effective active roles, computed live from the assignment ledger.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]any
// @Router       /auth/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	profile, err := h.authService.GetProfile(c.Request().Context(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Status: "success", User: toProfileView(profile)})
}

// Update applies a partial profile update; omitted fields are left
// unchanged.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  map[string]any
// @Router       /auth/profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Email == nil && req.FirstName == nil && req.LastName == nil {
		return domain.NewValidationError("body", "at least one field must be provided")
	}

	profile, err := h.authService.UpdateProfile(c.Request().Context(), principal.UserID, ports.ProfileUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{
		Status:  "success",
		Message: "profile updated successfully",
		User:    toProfileView(profile),
	})
}
