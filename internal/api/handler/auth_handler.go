package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/student-registry/registry-api/internal/api/metrics"
	"github.com/student-registry/registry-api/internal/api/middleware"
	"github.com/student-registry/registry-api/internal/core/domain"
	"github.com/student-registry/registry-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieConfig
}

func NewAuthHandler(authService ports.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Login authenticates a user and sets the access and refresh token cookies.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Username or email, and password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_input").Inc()
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_input").Inc()
		return err
	}

	pair, _, err := h.authService.Login(c.Request().Context(), req.identifier(), req.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	h.cookies.set(c, middleware.AccessCookieName, pair.Access)
	h.cookies.set(c, middleware.RefreshCookieName, pair.Refresh)
	return c.JSON(http.StatusOK, messageResponse{Message: "Login successful"})
}

// Logout clears both token cookies.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.clear(c, middleware.AccessCookieName)
	h.cookies.clear(c, middleware.RefreshCookieName)
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Refresh issues a new access cookie from a valid refresh cookie.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(middleware.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	access, err := h.authService.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}

	h.cookies.set(c, middleware.AccessCookieName, *access)
	return c.JSON(http.StatusOK, messageResponse{Message: "Token refreshed"})
}

// Me returns the profile of the authenticated user.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/me [post]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// Protected greets the authenticated user.
//
// @Summary      Protected greeting
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/protected [get]
func (h *AuthHandler) Protected(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("Welcome User %s!", userID)})
}

// RegisterUser creates a new authorized user.
//
// @Summary      Register an authorized user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerUserRequest  true  "User details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/register-user [post]
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.authService.RegisterUser(c.Request().Context(), req.Username, req.Email, req.Password); err != nil {
		return err
	}
	metrics.UsersRegisteredTotal.Inc()

	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
