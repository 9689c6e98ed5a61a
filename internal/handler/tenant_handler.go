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

type TenantHandler struct {
	tenantService service.TenantService
	guard         *middleware.Auth
	logger        *slog.Logger
}

// NewTenantHandler sets up the routing dependencies for tenant endpoints
func NewTenantHandler(tenantService service.TenantService, guard *middleware.Auth, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{tenantService: tenantService, guard: guard, logger: logger}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// The listing is public; every mutation and single-tenant read is admin-only.
func (h *TenantHandler) RegisterRoutes(router *gin.RouterGroup) {
	tenants := router.Group("/tenants")
	{
		tenants.GET("", h.List)

		admin := tenants.Group("", h.guard.Authenticate(), h.guard.RequireRole(model.RoleAdmin))
		{
			admin.POST("", h.Create)
			admin.PATCH("/:id", h.Update)
			admin.GET("/:id", h.Get)
			admin.DELETE("/:id", h.Delete)
		}
	}
}

// Create handles POST /tenants
// @Summary      Create a tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TenantRequest  true  "Tenant payload"
// @Success      201      {object}  map[string]uint
// @Failure      400      {object}  response.Body
// @Router       /tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req service.TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": tenant.ID})
}

// Update handles PATCH /tenants/:id
// @Summary      Update a tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id       path      int                    true  "Tenant id"
// @Param        payload  body      service.TenantRequest  true  "Tenant payload"
// @Success      200      {object}  map[string]uint
// @Failure      404      {object}  response.Body
// @Router       /tenants/{id} [patch]
func (h *TenantHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req service.TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": tenant.ID})
}

// List handles GET /tenants
// @Summary      List tenants
// @Tags         tenants
// @Produce      json
// @Param        currentPage  query     int     false  "1-based page"
// @Param        perPage      query     int     false  "page size"
// @Param        q            query     string  false  "search over name and address"
// @Success      200          {object}  map[string]any
// @Router       /tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	query := service.TenantQuery{
		Q:       c.Query("q"),
		Page:    params.CurrentPage,
		PerPage: params.PerPage,
	}

	tenants, total, err := h.tenantService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currentPage": params.CurrentPage,
		"perPage":     params.PerPage,
		"total":       total,
		"data":        tenants,
	})
}

// Get handles GET /tenants/:id
// @Summary      Get a tenant
// @Tags         tenants
// @Produce      json
// @Param        id   path      int  true  "Tenant id"
// @Success      200  {object}  service.TenantResponse
// @Failure      404  {object}  response.Body
// @Router       /tenants/{id} [get]
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// Delete handles DELETE /tenants/:id
// @Summary      Delete a tenant
// @Tags         tenants
// @Produce      json
// @Param        id   path      int  true  "Tenant id"
// @Success      200  {object}  map[string]uint
// @Failure      404  {object}  response.Body
// @Router       /tenants/{id} [delete]
func (h *TenantHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.tenantService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}
