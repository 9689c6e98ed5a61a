package repository

import (
	"context"

	"authservice/internal/model"

	"gorm.io/gorm"
)

// TenantFilter narrows and pages a tenant listing.
type TenantFilter struct {
	Q       string // matches name or address
	Page    int    // 1-based
	PerPage int
}

// TenantRepository defines the interface for data access of Tenant entities
type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	GetByID(ctx context.Context, id uint) (*model.Tenant, error)
	List(ctx context.Context, filter TenantFilter) ([]model.Tenant, int64, error)
	Update(ctx context.Context, tenant *model.Tenant) error
	Delete(ctx context.Context, id uint) error
}

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository returns a new instance of TenantRepository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	return GetDB(ctx, r.db).Create(tenant).Error
}

func (r *tenantRepository) GetByID(ctx context.Context, id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := GetDB(ctx, r.db).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) List(ctx context.Context, filter TenantFilter) ([]model.Tenant, int64, error) {
	var tenants []model.Tenant
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Tenant{})
	if filter.Q != "" {
		like := "%" + filter.Q + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PerPage
	if err := query.Order("id").Offset(offset).Limit(filter.PerPage).Find(&tenants).Error; err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

func (r *tenantRepository) Update(ctx context.Context, tenant *model.Tenant) error {
	return GetDB(ctx, r.db).Save(tenant).Error
}

func (r *tenantRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Tenant{}).Error
}
