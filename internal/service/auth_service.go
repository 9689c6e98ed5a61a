package service

import (
	"context"
	"errors"
	"log/slog"

	"authservice/internal/apperror"
	"authservice/internal/model"
	"authservice/internal/repository"
	"authservice/internal/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPair carries the freshly issued credentials back to the handler,
// which turns them into cookies.
type TokenPair struct {
	UserID       uint
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates registration, login, token rotation and logout.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenPair, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, userID, tokenID uint) (*TokenPair, error)
	Logout(ctx context.Context, tokenID uint) error
	Self(ctx context.Context, userID uint) (*UserResponse, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *token.Issuer
	events EventPublisher
	logger *slog.Logger
}

// NewAuthService returns a new instance of AuthService
func NewAuthService(users repository.UserRepository, tokens *token.Issuer, events EventPublisher, logger *slog.Logger) AuthService {
	return &authService{users: users, tokens: tokens, events: events, logger: logger}
}

// issueTokenPair mints both credentials for a user. The refresh row is
// persisted first so its id can be embedded as the jti of the signed token.
func (s *authService) issueTokenPair(ctx context.Context, user *model.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	record, err := s.tokens.PersistRefreshToken(ctx, user)
	if err != nil {
		return nil, apperror.Internal("Failed to persist refresh token", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID, user.Role, record.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to sign refresh token", err)
	}

	return &TokenPair{UserID: user.ID, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Register creates a self-service account. The role is always customer;
// elevated roles only exist through the admin management endpoints.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*TokenPair, error) {
	s.logger.Debug("new request to register a user", "email", req.Email, "password", "*******")

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
		Role:      model.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperror.Internal("Failed to store the user in the database", err)
	}

	s.logger.Info("user has been registered", "id", user.ID)
	if s.events != nil {
		s.events.Publish("user.registered", map[string]any{"id": user.ID, "email": user.Email})
	}

	return s.issueTokenPair(ctx, user)
}

// Login verifies credentials. Unknown email and wrong password produce the
// identical error so responses carry no account-enumeration signal.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.InvalidCredentials("Email or password does not match.")
		}
		return nil, apperror.Internal("Failed to look up email", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.InvalidCredentials("Email or password does not match.")
	}

	s.logger.Info("user has been logged in", "id", user.ID)
	return s.issueTokenPair(ctx, user)
}

// Refresh rotates the refresh token named by tokenID and issues a new access
// token. Rotation is single-use: the old row is deleted atomically with the
// insert of its replacement, so a replayed refresh token fails.
func (s *authService) Refresh(ctx context.Context, userID, tokenID uint) (*TokenPair, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User with the token could not find")
		}
		return nil, apperror.Internal("Failed to look up user", err)
	}

	record, err := s.tokens.RotateRefreshToken(ctx, tokenID, user)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID, user.Role, record.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to sign refresh token", err)
	}

	s.logger.Info("refresh token has been rotated", "userId", user.ID)
	return &TokenPair{UserID: user.ID, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout revokes the refresh token. Deleting an already-deleted row is a
// no-op, so logout stays idempotent. Outstanding access tokens keep working
// until their natural expiry.
func (s *authService) Logout(ctx context.Context, tokenID uint) error {
	if err := s.tokens.DeleteRefreshToken(ctx, tokenID); err != nil {
		return apperror.Internal("Failed to delete refresh token", err)
	}
	s.logger.Info("refresh token has been deleted", "tokenId", tokenID)
	return nil
}

// Self returns the authenticated user without the password digest.
func (s *authService) Self(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User does not exist.")
		}
		return nil, apperror.Internal("Failed to look up user", err)
	}
	return mapUserResponse(user), nil
}
