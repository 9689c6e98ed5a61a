package handler

import (
	"log/slog"
	"net/http"

	"authservice/internal/middleware"
	"authservice/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	guard       *middleware.Auth
	logger      *slog.Logger
}

// NewAuthHandler sets up the routing dependencies for auth endpoints
func NewAuthHandler(authService service.AuthService, guard *middleware.Auth, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, guard: guard, logger: logger}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/self", h.guard.Authenticate(), h.Self)
		auth.POST("/refresh", h.guard.ValidateRefreshToken(), h.Refresh)
		auth.POST("/logout", h.guard.Authenticate(), h.guard.ParseRefreshToken(), h.Logout)
	}
}

// Register handles POST /auth/register
// @Summary      Register a new user
// @Description  Self-service registration. The account always gets the customer role; the response sets the auth cookie pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration payload"
// @Success      201      {object}  map[string]uint
// @Failure      400      {object}  response.Body
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.guard.SetTokenCookies(c, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusCreated, gin.H{"id": pair.UserID})
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Verifies credentials and sets the auth cookie pair. Unknown email and wrong password are indistinguishable.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login credentials"
// @Success      200      {object}  map[string]uint
// @Failure      400      {object}  response.Body
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.guard.SetTokenCookies(c, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"id": pair.UserID})
}

// Self handles GET /auth/self
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  service.UserResponse
// @Failure      401  {object}  response.Body
// @Router       /auth/self [get]
func (h *AuthHandler) Self(c *gin.Context) {
	user, err := h.authService.Self(c.Request.Context(), c.GetUint(middleware.CtxUserID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Refresh handles POST /auth/refresh
// @Summary      Rotate the token pair
// @Description  Revokes the presented refresh token and issues a fresh pair. The old refresh token is single-use.
// @Tags         auth
// @Produce      json
// @Success      201  {object}  map[string]uint
// @Failure      401  {object}  response.Body
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	userID := c.GetUint(middleware.CtxUserID)
	tokenID := c.GetUint(middleware.CtxRefreshTokenID)

	pair, err := h.authService.Refresh(c.Request.Context(), userID, tokenID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.guard.SetTokenCookies(c, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusCreated, gin.H{"id": pair.UserID})
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Description  Deletes the refresh-token row and clears both cookies. Outstanding access tokens expire naturally.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  response.Body
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), c.GetUint(middleware.CtxRefreshTokenID)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.guard.ClearTokenCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
