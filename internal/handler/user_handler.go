package handler

import (
	"log/slog"
	"net/http"

	"authservice/internal/middleware"
	"authservice/internal/model"
	"authservice/internal/service"
	"authservice/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	guard       *middleware.Auth
	logger      *slog.Logger
}

// NewUserHandler sets up the routing dependencies for user management endpoints
func NewUserHandler(userService service.UserService, guard *middleware.Auth, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, guard: guard, logger: logger}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// Managers pass the role gate but are confined to their own tenant by the
// service layer.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users", h.guard.Authenticate(), h.guard.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		users.POST("", h.Create)
		users.PATCH("/:id", h.Update)
		users.GET("", h.List)
		users.GET("/:id", h.Get)
		users.DELETE("/:id", h.Delete)
	}
}

// Create handles POST /users
// @Summary      Create a user
// @Description  Admin-driven creation with explicit role and tenant, unlike self-registration.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateUserRequest  true  "Create user payload"
// @Success      201      {object}  map[string]uint
// @Failure      400      {object}  response.Body
// @Failure      404      {object}  response.Body
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID})
}

// Update handles PATCH /users/:id
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "User id"
// @Param        payload  body      service.UpdateUserRequest  true  "Fields to update"
// @Success      200      {object}  map[string]uint
// @Failure      400      {object}  response.Body
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.ID})
}

// List handles GET /users
// @Summary      List users
// @Description  Paginated listing with q and role filters. The page parameters are echoed back.
// @Tags         users
// @Produce      json
// @Param        currentPage  query     int     false  "1-based page"
// @Param        perPage      query     int     false  "page size"
// @Param        q            query     string  false  "search over name and email"
// @Param        role         query     string  false  "role filter"
// @Success      200          {object}  map[string]any
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	query := service.UserQuery{
		Q:       c.Query("q"),
		Role:    model.Role(c.Query("role")),
		Page:    params.CurrentPage,
		PerPage: params.PerPage,
	}

	users, total, err := h.userService.List(c.Request.Context(), actorFrom(c), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currentPage": params.CurrentPage,
		"perPage":     params.PerPage,
		"total":       total,
		"data":        users,
	})
}

// Get handles GET /users/:id
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  service.UserResponse
// @Failure      400  {object}  response.Body
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /users/:id
// @Summary      Delete a user
// @Description  Also removes the user's refresh-token rows, killing any outstanding sessions.
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  map[string]uint
// @Failure      400  {object}  response.Body
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}
