package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"authservice/internal/apperror"
	"authservice/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

type fakeRefreshTokenRepo struct {
	nextID uint
	rows   map[uint]*model.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{rows: make(map[uint]*model.RefreshToken)}
}

func (f *fakeRefreshTokenRepo) Create(_ context.Context, token *model.RefreshToken) error {
	f.nextID++
	token.ID = f.nextID
	clone := *token
	f.rows[token.ID] = &clone
	return nil
}

func (f *fakeRefreshTokenRepo) DeleteByID(_ context.Context, id uint) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeRefreshTokenRepo) DeleteByIDForUser(_ context.Context, id, userID uint) (int64, error) {
	row, ok := f.rows[id]
	if !ok || row.UserID != userID {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

func (f *fakeRefreshTokenRepo) ExistsForUser(_ context.Context, id, userID uint) (bool, error) {
	row, ok := f.rows[id]
	return ok && row.UserID == userID, nil
}

func (f *fakeRefreshTokenRepo) DeleteAllForUser(_ context.Context, userID uint) error {
	for id, row := range f.rows {
		if row.UserID == userID {
			delete(f.rows, id)
		}
	}
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func TestGenerateAccessTokenClaims(t *testing.T) {
	key := testKey(t)
	issuer := NewIssuer(newFakeRefreshTokenRepo(), fakeTxManager{}, key, []byte("refresh-secret"))

	signed, err := issuer.GenerateAccessToken(42, model.RoleManager)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse access token: %v", err)
	}
	if parsed.Method.Alg() != jwt.SigningMethodRS256.Alg() {
		t.Fatalf("expected RS256, got %s", parsed.Method.Alg())
	}
	if claims.Subject != "42" {
		t.Fatalf("expected sub 42, got %q", claims.Subject)
	}
	if claims.Role != model.RoleManager {
		t.Fatalf("expected role manager, got %q", claims.Role)
	}
	if claims.Issuer != IssuerName {
		t.Fatalf("expected issuer %q, got %q", IssuerName, claims.Issuer)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 59*time.Minute || ttl > 61*time.Minute {
		t.Fatalf("expected ~1h validity, got %v", ttl)
	}
}

func TestGenerateAccessTokenWithoutKey(t *testing.T) {
	issuer := NewIssuer(newFakeRefreshTokenRepo(), fakeTxManager{}, nil, []byte("refresh-secret"))

	_, err := issuer.GenerateAccessToken(1, model.RoleCustomer)
	if err == nil {
		t.Fatal("expected error without a signing key")
	}
	appErr, ok := apperror.As(err)
	if !ok || appErr.Status != 500 {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestRefreshTokenCarriesRowID(t *testing.T) {
	repo := newFakeRefreshTokenRepo()
	secret := []byte("refresh-secret")
	issuer := NewIssuer(repo, fakeTxManager{}, testKey(t), secret)

	user := &model.User{ID: 7, Role: model.RoleCustomer}
	record, err := issuer.PersistRefreshToken(context.Background(), user)
	if err != nil {
		t.Fatalf("persist refresh token: %v", err)
	}
	if record.ID == 0 {
		t.Fatal("expected a row id before signing")
	}

	signed, err := issuer.GenerateRefreshToken(user.ID, user.Role, record.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse refresh token: %v", err)
	}
	if parsed.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		t.Fatalf("expected HS256, got %s", parsed.Method.Alg())
	}

	tokenID, err := claims.RefreshTokenID()
	if err != nil {
		t.Fatalf("parse jti: %v", err)
	}
	if tokenID != record.ID {
		t.Fatalf("expected jti %d, got %d", record.ID, tokenID)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 364*24*time.Hour || ttl > 366*24*time.Hour {
		t.Fatalf("expected ~1y validity, got %v", ttl)
	}
}

func TestRotateRefreshTokenSingleUse(t *testing.T) {
	repo := newFakeRefreshTokenRepo()
	issuer := NewIssuer(repo, fakeTxManager{}, testKey(t), []byte("refresh-secret"))
	ctx := context.Background()

	user := &model.User{ID: 3, Role: model.RoleCustomer}
	old, err := issuer.PersistRefreshToken(ctx, user)
	if err != nil {
		t.Fatalf("persist refresh token: %v", err)
	}

	fresh, err := issuer.RotateRefreshToken(ctx, old.ID, user)
	if err != nil {
		t.Fatalf("rotate refresh token: %v", err)
	}
	if fresh.ID == old.ID {
		t.Fatal("rotation must produce a new row id")
	}

	if revoked, _ := issuer.IsRevoked(ctx, old.ID, user.ID); !revoked {
		t.Fatal("old token must be revoked after rotation")
	}
	if revoked, _ := issuer.IsRevoked(ctx, fresh.ID, user.ID); revoked {
		t.Fatal("new token must be valid after rotation")
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected exactly one row after rotation, got %d", len(repo.rows))
	}

	// replaying the old token id must fail: the compare-and-delete sees zero rows
	if _, err := issuer.RotateRefreshToken(ctx, old.ID, user); err == nil {
		t.Fatal("expected second rotation of the same token to fail")
	} else if appErr, ok := apperror.As(err); !ok || appErr.Status != 401 {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("failed rotation must not create rows, got %d", len(repo.rows))
	}
}

func TestDeleteRefreshTokenIdempotent(t *testing.T) {
	repo := newFakeRefreshTokenRepo()
	issuer := NewIssuer(repo, fakeTxManager{}, testKey(t), []byte("refresh-secret"))
	ctx := context.Background()

	record, err := issuer.PersistRefreshToken(ctx, &model.User{ID: 1, Role: model.RoleCustomer})
	if err != nil {
		t.Fatalf("persist refresh token: %v", err)
	}

	if err := issuer.DeleteRefreshToken(ctx, record.ID); err != nil {
		t.Fatalf("delete refresh token: %v", err)
	}
	if err := issuer.DeleteRefreshToken(ctx, record.ID); err != nil {
		t.Fatalf("second delete must be a no-op, got %v", err)
	}
}

func TestIsRevokedForeignUser(t *testing.T) {
	repo := newFakeRefreshTokenRepo()
	issuer := NewIssuer(repo, fakeTxManager{}, testKey(t), []byte("refresh-secret"))
	ctx := context.Background()

	record, err := issuer.PersistRefreshToken(ctx, &model.User{ID: 1, Role: model.RoleCustomer})
	if err != nil {
		t.Fatalf("persist refresh token: %v", err)
	}

	// a row owned by someone else must not validate the token
	if revoked, _ := issuer.IsRevoked(ctx, record.ID, 2); !revoked {
		t.Fatal("token must be revoked for a foreign user id")
	}
	if revoked, _ := issuer.IsRevoked(ctx, record.ID, 1); revoked {
		t.Fatal("token must be valid for its owner")
	}
}
