package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"authservice/internal/model"
	"authservice/internal/repository"
	"authservice/internal/token"

	"gorm.io/gorm"
)

// In-memory stand-ins for the GORM repositories, following their contracts:
// missing rows surface as gorm.ErrRecordNotFound, email lookups are
// case-insensitive, deletes of missing rows are no-ops.

type fakeUserRepo struct {
	nextID uint
	users  map[uint]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.nextID++
	user.ID = f.nextID
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	var matched []model.User
	for _, user := range f.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.TenantID != nil && (user.TenantID == nil || *user.TenantID != *filter.TenantID) {
			continue
		}
		if filter.Q != "" {
			q := strings.ToLower(filter.Q)
			hay := strings.ToLower(user.FirstName + " " + user.LastName + " " + user.Email)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		matched = append(matched, *user)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.PerPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(f.users, id)
	return nil
}

type fakeTenantRepo struct {
	nextID  uint
	tenants map[uint]*model.Tenant
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: make(map[uint]*model.Tenant)}
}

func (f *fakeTenantRepo) Create(_ context.Context, tenant *model.Tenant) error {
	f.nextID++
	tenant.ID = f.nextID
	clone := *tenant
	f.tenants[tenant.ID] = &clone
	return nil
}

func (f *fakeTenantRepo) GetByID(_ context.Context, id uint) (*model.Tenant, error) {
	tenant, ok := f.tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *tenant
	return &clone, nil
}

func (f *fakeTenantRepo) List(_ context.Context, filter repository.TenantFilter) ([]model.Tenant, int64, error) {
	var matched []model.Tenant
	for _, tenant := range f.tenants {
		if filter.Q != "" {
			q := strings.ToLower(filter.Q)
			if !strings.Contains(strings.ToLower(tenant.Name+" "+tenant.Address), q) {
				continue
			}
		}
		matched = append(matched, *tenant)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.PerPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeTenantRepo) Update(_ context.Context, tenant *model.Tenant) error {
	clone := *tenant
	f.tenants[tenant.ID] = &clone
	return nil
}

func (f *fakeTenantRepo) Delete(_ context.Context, id uint) error {
	delete(f.tenants, id)
	return nil
}

type fakeRefreshTokenRepo struct {
	nextID uint
	rows   map[uint]*model.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{rows: make(map[uint]*model.RefreshToken)}
}

func (f *fakeRefreshTokenRepo) Create(_ context.Context, row *model.RefreshToken) error {
	f.nextID++
	row.ID = f.nextID
	clone := *row
	f.rows[row.ID] = &clone
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

func (f *fakeRefreshTokenRepo) countForUser(userID uint) int {
	n := 0
	for _, row := range f.rows {
		if row.UserID == userID {
			n++
		}
	}
	return n
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeEvents) Publish(event string, _ any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	testRSAKeyOnce sync.Once
	testRSAKey     *rsa.PrivateKey
)

// signing is slow; every test shares one generated key
func testSigningKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testRSAKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		testRSAKey = key
	})
	return testRSAKey
}

func newTestIssuer(t *testing.T, repo repository.RefreshTokenRepository) *token.Issuer {
	t.Helper()
	return token.NewIssuer(repo, fakeTxManager{}, testSigningKey(t), []byte("test-refresh-secret"))
}
