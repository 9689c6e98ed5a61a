package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"authservice/internal/apperror"
	"authservice/internal/model"
	"authservice/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Actor identifies who is performing a management operation. Tenant scoping
// for managers is resolved from the store, not from token claims, since the
// access token only carries {sub, role}.
type Actor struct {
	ID   uint
	Role model.Role
}

type CreateUserRequest struct {
	FirstName string     `json:"firstName" binding:"required"`
	LastName  string     `json:"lastName" binding:"required"`
	Email     string     `json:"email" binding:"required,email"`
	Password  string     `json:"password" binding:"required,min=8"`
	Role      model.Role `json:"role" binding:"required"`
	TenantID  *uint      `json:"tenantId"`
}

type UpdateUserRequest struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email" binding:"omitempty,email"`
	Role      model.Role `json:"role"`
	TenantID  *uint      `json:"tenantId"`
}

// UserQuery narrows and pages a user listing.
type UserQuery struct {
	Q       string
	Role    model.Role
	Page    int
	PerPage int
}

// DTO for returning User without exposing sensitive data. There is no
// password field here at all, so no user-returning path can leak the digest.
type UserResponse struct {
	ID        uint            `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email"`
	Role      model.Role      `json:"role"`
	Tenant    *TenantResponse `json:"tenant,omitempty"`
}

func mapUserResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
	}
	if user.Tenant != nil {
		resp.Tenant = mapTenantResponse(user.Tenant)
	}
	return resp
}

// UserService defines the management CRUD over users with tenant scoping.
type UserService interface {
	Create(ctx context.Context, actor Actor, req CreateUserRequest) (*UserResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req UpdateUserRequest) (*UserResponse, error)
	List(ctx context.Context, actor Actor, query UserQuery) ([]UserResponse, int64, error)
	Get(ctx context.Context, actor Actor, id uint) (*UserResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type userService struct {
	users         repository.UserRepository
	tenants       repository.TenantRepository
	refreshTokens repository.RefreshTokenRepository
	txManager     repository.TransactionManager
	events        EventPublisher
	logger        *slog.Logger
}

// NewUserService returns a new instance of UserService
func NewUserService(
	users repository.UserRepository,
	tenants repository.TenantRepository,
	refreshTokens repository.RefreshTokenRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	logger *slog.Logger,
) UserService {
	return &userService{
		users:         users,
		tenants:       tenants,
		refreshTokens: refreshTokens,
		txManager:     txManager,
		events:        events,
		logger:        logger,
	}
}

// managerTenant resolves the acting manager's tenant id. Admins get nil
// (unscoped). A manager without a tenant cannot act at all.
func (s *userService) managerTenant(ctx context.Context, actor Actor) (*uint, error) {
	if actor.Role != model.RoleManager {
		return nil, nil
	}
	manager, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to look up acting user", err)
	}
	if manager.TenantID == nil {
		return nil, apperror.Authorization("Access denied: manager has no tenant")
	}
	return manager.TenantID, nil
}

// inScope reports whether a tenant-scoped actor may touch the target user.
func inScope(scope *uint, target *model.User) bool {
	if scope == nil {
		return true
	}
	return target.TenantID != nil && *target.TenantID == *scope
}

func (s *userService) Create(ctx context.Context, actor Actor, req CreateUserRequest) (*UserResponse, error) {
	if !req.Role.Valid() {
		return nil, apperror.Validation("Invalid role")
	}

	scope, err := s.managerTenant(ctx, actor)
	if err != nil {
		return nil, err
	}
	if scope != nil {
		if req.Role == model.RoleAdmin {
			return nil, apperror.Authorization("Access denied: managers cannot grant the admin role")
		}
		// managers create users in their own tenant only
		req.TenantID = scope
	}

	if req.TenantID != nil {
		if _, err := s.tenants.GetByID(ctx, *req.TenantID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("Tenant does not exist.")
			}
			return nil, apperror.Internal("Failed to look up tenant", err)
		}
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflict("Email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal("Failed to look up email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}

	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
		TenantID:  req.TenantID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperror.Internal("Failed to store the user in the database", err)
	}

	s.logger.Info("user has been created", "id", user.ID, "role", user.Role)
	if s.events != nil {
		s.events.Publish("user.created", map[string]any{"id": user.ID, "role": user.Role})
	}
	return mapUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, actor Actor, id uint, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// historical quirk: missing users surface as 400 on management paths
			return nil, apperror.NotFound("User does not exist.").WithStatus(http.StatusBadRequest)
		}
		return nil, apperror.Internal("Failed to look up user", err)
	}

	scope, err := s.managerTenant(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !inScope(scope, user) {
		return nil, apperror.Authorization("Access denied: user belongs to another tenant")
	}

	if req.Role != "" {
		if !req.Role.Valid() {
			return nil, apperror.Validation("Invalid role")
		}
		if scope != nil && req.Role == model.RoleAdmin {
			return nil, apperror.Authorization("Access denied: managers cannot grant the admin role")
		}
		user.Role = req.Role
	}

	if req.Email != "" && req.Email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing.ID != user.ID {
			return nil, apperror.Conflict("Email already exists")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Internal("Failed to look up email", err)
		}
		user.Email = req.Email
	}

	if req.TenantID != nil {
		if scope != nil && *req.TenantID != *scope {
			return nil, apperror.Authorization("Access denied: user belongs to another tenant")
		}
		if _, err := s.tenants.GetByID(ctx, *req.TenantID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// 400 here, 404 on create: the original treats the paths differently
				return nil, apperror.Validation("Tenant does not exist.")
			}
			return nil, apperror.Internal("Failed to look up tenant", err)
		}
		user.TenantID = req.TenantID
		user.Tenant = nil
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperror.Internal("Failed to update the user", err)
	}

	s.logger.Info("user has been updated", "id", user.ID)
	if s.events != nil {
		s.events.Publish("user.updated", map[string]any{"id": user.ID})
	}
	return mapUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, actor Actor, query UserQuery) ([]UserResponse, int64, error) {
	if query.Role != "" && !query.Role.Valid() {
		return nil, 0, apperror.Validation("Invalid role")
	}

	scope, err := s.managerTenant(ctx, actor)
	if err != nil {
		return nil, 0, err
	}

	users, total, err := s.users.List(ctx, repository.UserFilter{
		Q:        query.Q,
		Role:     query.Role,
		TenantID: scope,
		Page:     query.Page,
		PerPage:  query.PerPage,
	})
	if err != nil {
		return nil, 0, apperror.Internal("Failed to list users", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) Get(ctx context.Context, actor Actor, id uint) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User does not exist.").WithStatus(http.StatusBadRequest)
		}
		return nil, apperror.Internal("Failed to look up user", err)
	}

	scope, err := s.managerTenant(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !inScope(scope, user) {
		return nil, apperror.Authorization("Access denied: user belongs to another tenant")
	}

	return mapUserResponse(user), nil
}

// Delete removes a user together with all refresh-token rows it owns, in one
// transaction. A surviving token row for a deleted user would be a live
// session for a nonexistent account.
func (s *userService) Delete(ctx context.Context, actor Actor, id uint) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("User does not exist.").WithStatus(http.StatusBadRequest)
		}
		return apperror.Internal("Failed to look up user", err)
	}

	scope, err := s.managerTenant(ctx, actor)
	if err != nil {
		return err
	}
	if !inScope(scope, user) {
		return apperror.Authorization("Access denied: user belongs to another tenant")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.refreshTokens.DeleteAllForUser(txCtx, user.ID); err != nil {
			return err
		}
		return s.users.Delete(txCtx, user.ID)
	})
	if err != nil {
		return apperror.Internal("Failed to delete the user", err)
	}

	s.logger.Info("user has been deleted", "id", user.ID)
	if s.events != nil {
		s.events.Publish("user.deleted", map[string]any{"id": user.ID})
	}
	return nil
}
