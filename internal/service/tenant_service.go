package service

import (
	"context"
	"errors"
	"log/slog"

	"authservice/internal/apperror"
	"authservice/internal/model"
	"authservice/internal/repository"

	"gorm.io/gorm"
)

type TenantRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Address string `json:"address" binding:"required,max=255"`
}

// TenantQuery narrows and pages a tenant listing.
type TenantQuery struct {
	Q       string
	Page    int
	PerPage int
}

type TenantResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

func mapTenantResponse(tenant *model.Tenant) *TenantResponse {
	return &TenantResponse{ID: tenant.ID, Name: tenant.Name, Address: tenant.Address}
}

// TenantService defines the admin CRUD over tenants.
type TenantService interface {
	Create(ctx context.Context, req TenantRequest) (*TenantResponse, error)
	Update(ctx context.Context, id uint, req TenantRequest) (*TenantResponse, error)
	List(ctx context.Context, query TenantQuery) ([]TenantResponse, int64, error)
	Get(ctx context.Context, id uint) (*TenantResponse, error)
	Delete(ctx context.Context, id uint) error
}

type tenantService struct {
	tenants repository.TenantRepository
	logger  *slog.Logger
}

// NewTenantService returns a new instance of TenantService
func NewTenantService(tenants repository.TenantRepository, logger *slog.Logger) TenantService {
	return &tenantService{tenants: tenants, logger: logger}
}

func (s *tenantService) Create(ctx context.Context, req TenantRequest) (*TenantResponse, error) {
	tenant := &model.Tenant{Name: req.Name, Address: req.Address}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, apperror.Internal("Failed to store the tenant in the database", err)
	}

	s.logger.Info("tenant has been created", "id", tenant.ID)
	return mapTenantResponse(tenant), nil
}

func (s *tenantService) Update(ctx context.Context, id uint, req TenantRequest) (*TenantResponse, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Tenant does not exist.")
		}
		return nil, apperror.Internal("Failed to look up tenant", err)
	}

	tenant.Name = req.Name
	tenant.Address = req.Address
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, apperror.Internal("Failed to update the tenant", err)
	}

	s.logger.Info("tenant has been updated", "id", tenant.ID)
	return mapTenantResponse(tenant), nil
}

func (s *tenantService) List(ctx context.Context, query TenantQuery) ([]TenantResponse, int64, error) {
	tenants, total, err := s.tenants.List(ctx, repository.TenantFilter{
		Q:       query.Q,
		Page:    query.Page,
		PerPage: query.PerPage,
	})
	if err != nil {
		return nil, 0, apperror.Internal("Failed to list tenants", err)
	}

	responses := make([]TenantResponse, 0, len(tenants))
	for i := range tenants {
		responses = append(responses, *mapTenantResponse(&tenants[i]))
	}
	return responses, total, nil
}

func (s *tenantService) Get(ctx context.Context, id uint) (*TenantResponse, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Tenant does not exist.")
		}
		return nil, apperror.Internal("Failed to look up tenant", err)
	}
	return mapTenantResponse(tenant), nil
}

func (s *tenantService) Delete(ctx context.Context, id uint) error {
	if _, err := s.tenants.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Tenant does not exist.")
		}
		return apperror.Internal("Failed to look up tenant", err)
	}
	if err := s.tenants.Delete(ctx, id); err != nil {
		return apperror.Internal("Failed to delete the tenant", err)
	}

	s.logger.Info("tenant has been deleted", "id", id)
	return nil
}
