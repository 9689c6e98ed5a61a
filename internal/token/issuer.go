// Package token issues and revokes the two credentials of the session model:
// a short-lived RS256 access token verified statelessly on every request, and
// a long-lived HS256 refresh token backed by a database row so it can be
// revoked (logout) and rotated (refresh) before its natural expiry.
package token

import (
	"context"
	"crypto/rsa"
	"strconv"
	"time"

	"authservice/internal/apperror"
	"authservice/internal/model"
	"authservice/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 365 * 24 * time.Hour
)

// Issuer signs access and refresh tokens and manages the refresh-token rows.
type Issuer struct {
	repo          repository.RefreshTokenRepository
	txManager     repository.TransactionManager
	privateKey    *rsa.PrivateKey
	refreshSecret []byte
}

// NewIssuer wires the issuer. privateKey may be nil, in which case access
// token generation fails; refresh-token signing requires a non-empty secret.
func NewIssuer(repo repository.RefreshTokenRepository, txManager repository.TransactionManager, privateKey *rsa.PrivateKey, refreshSecret []byte) *Issuer {
	return &Issuer{
		repo:          repo,
		txManager:     txManager,
		privateKey:    privateKey,
		refreshSecret: refreshSecret,
	}
}

// GenerateAccessToken signs {sub, role} with the RSA private key, valid for
// one hour. A missing key is a deployment fault, surfaced as a 500.
func (i *Issuer) GenerateAccessToken(userID uint, role model.Role) (string, error) {
	if i.privateKey == nil {
		return "", apperror.Internal("Secret key is not set", nil)
	}

	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    IssuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.privateKey)
}

// GenerateRefreshToken signs {sub, role, jti} with the HMAC secret, valid for
// one year. tokenID must be the id of an already-persisted refresh-token row.
func (i *Issuer) GenerateRefreshToken(userID uint, role model.Role, tokenID uint) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    IssuerName,
			ID:        strconv.FormatUint(uint64(tokenID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
}

// PersistRefreshToken inserts the row whose id becomes the jti of the signed
// refresh token. The row comes first; the token naming it is signed after.
func (i *Issuer) PersistRefreshToken(ctx context.Context, user *model.User) (*model.RefreshToken, error) {
	record := &model.RefreshToken{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(RefreshTokenTTL),
	}
	if err := i.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteRefreshToken revokes a refresh token by deleting its row. Idempotent.
func (i *Issuer) DeleteRefreshToken(ctx context.Context, tokenID uint) error {
	return i.repo.DeleteByID(ctx, tokenID)
}

// RotateRefreshToken atomically replaces one refresh-token row with a fresh
// one. The delete is keyed by (token id, user id) and checked for rows
// affected, so two concurrent rotations of the same token cannot both
// succeed: the loser sees zero rows and aborts before a replacement exists.
func (i *Issuer) RotateRefreshToken(ctx context.Context, tokenID uint, user *model.User) (*model.RefreshToken, error) {
	var record *model.RefreshToken
	err := i.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		affected, err := i.repo.DeleteByIDForUser(txCtx, tokenID, user.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperror.Authentication("Refresh token has been revoked")
		}

		record = &model.RefreshToken{
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(RefreshTokenTTL),
		}
		return i.repo.Create(txCtx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// IsRevoked reports whether no row matches both the token id and the owning
// user. A valid signature from a deleted or foreign session is still revoked.
func (i *Issuer) IsRevoked(ctx context.Context, tokenID, userID uint) (bool, error) {
	exists, err := i.repo.ExistsForUser(ctx, tokenID, userID)
	if err != nil {
		return true, err
	}
	return !exists, nil
}

// RefreshSecret exposes the HMAC secret for the middleware that verifies
// refresh-token cookies.
func (i *Issuer) RefreshSecret() []byte { return i.refreshSecret }
