package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sentra-id/identity-api/internal/api/metrics"
	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

type changePasswordRequest struct {
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required"`
}

type userSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func summarize(u *domain.User) userSummary {
	return userSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type registerResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	User    userSummary `json:"user"`
}

type loginResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Tokens  ports.TokenPair `json:"tokens"`
	User    userSummary     `json:"user"`
}

type ackResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type refreshResponse struct {
	Status string `json:"status"`
	Access string `json:"access"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]any
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		if _, ok := domain.AsValidationError(err); ok {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, registerResponse{
		Status:  "success",
		Message: "user registered successfully",
		User:    summarize(user),
	})
}

// Login authenticates a user and issues an access/refresh token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tokens, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		case errors.Is(err, domain.ErrAccountDisabled):
			metrics.LoginsTotal.WithLabelValues("account_disabled").Inc()
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Status:  "success",
		Message: "login successful",
		Tokens:  tokens,
		User:    summarize(user),
	})
}

// Refresh exchanges a valid refresh token for a new access token.
//
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  refreshResponse
// @Failure      401   {object}  map[string]any
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	access, err := h.authService.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("invalid_token").Inc()
		return err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, refreshResponse{Status: "success", Access: access})
}

// Logout invalidates the caller's refresh token when server-side
// revocation is enabled. Idempotent: repeating it succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      logoutRequest  false  "Refresh token to revoke"
// @Success      200   {object}  ackResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	// Body is optional; without a refresh token logout is client-side.
	_ = c.Bind(&req)

	if err := h.authService.Logout(c.Request().Context(), req.Refresh); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ackResponse{Status: "success", Message: "logged out successfully"})
}

// ChangePassword replaces the authenticated caller's password.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Password change"
// @Success      200   {object}  ackResponse
// @Failure      400   {object}  map[string]any
// @Router       /auth/password/change [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), principal.UserID, req.OldPassword, req.NewPassword, req.NewPasswordConfirm); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ackResponse{Status: "success", Message: "password changed successfully"})
}
