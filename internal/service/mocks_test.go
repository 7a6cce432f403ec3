package service

import (
	"context"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/mock"

	"recipes/internal/enrich"
	"recipes/internal/model"
	"recipes/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByPublicID(ctx context.Context, publicID string) (*model.User, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockRecipeRepository is a mock implementation of RecipeRepository.
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id uint) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) UpdateRating(ctx context.Context, recipe *model.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) List(ctx context.Context) ([]model.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) ListByOwner(ctx context.Context, email string) ([]model.Recipe, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) ListByIngredientCount(ctx context.Context, limit int, ascending bool) ([]model.Recipe, error) {
	args := m.Called(ctx, limit, ascending)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Search(ctx context.Context, field repository.SearchField, query string) ([]model.Recipe, error) {
	args := m.Called(ctx, field, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

// MockRevocationStore is a mock implementation of auth.RevocationStore.
type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockHook is a mock implementation of enrich.Hook.
type MockHook struct {
	mock.Mock
}

func (m *MockHook) Lookup(ctx context.Context, email string) (*enrich.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrich.Profile), args.Error(1)
}

// fakeLedger is an in-memory IngredientRepository.
type fakeLedger struct {
	entries []model.Ingredient
	failOn  string
	failErr error
}

func (l *fakeLedger) Increment(_ context.Context, name string) error {
	if l.failErr != nil && name == l.failOn {
		return l.failErr
	}
	for i := range l.entries {
		if l.entries[i].Name == name {
			l.entries[i].Used++
			return nil
		}
	}
	l.entries = append(l.entries, model.Ingredient{ID: uint(len(l.entries) + 1), Name: name, Used: 1})
	return nil
}

func (l *fakeLedger) Top(_ context.Context, n int) ([]model.Ingredient, error) {
	sorted := append([]model.Ingredient(nil), l.entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Used > sorted[j].Used })
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted, nil
}

func (l *fakeLedger) used(name string) int {
	for _, e := range l.entries {
		if e.Name == name {
			return e.Used
		}
	}
	return 0
}

// fakeUnitOfWork runs fn directly and restores the ledger when fn fails.
type fakeUnitOfWork struct {
	repos     repository.Repositories
	ledger    *fakeLedger
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	var snapshot []model.Ingredient
	if u.ledger != nil {
		snapshot = append(snapshot, u.ledger.entries...)
	}
	if err := fn(ctx, u.repos); err != nil {
		if u.ledger != nil {
			u.ledger.entries = snapshot
		}
		u.rollbacks++
		return err
	}
	u.commits++
	return nil
}

// stubResolver resolves every token to user, or fails with err.
type stubResolver struct {
	user *model.User
	err  error
}

func (r stubResolver) Resolve(_ context.Context, token string) (*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.user, nil
}

// fakeCache is an in-memory RecipeCache holding encoded values.
type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst interface{}) bool {
	data, ok := c.entries[key]
	return ok && json.Unmarshal(data, dst) == nil
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *fakeCache) AddJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if _, ok := c.entries[key]; ok {
		return nil
	}
	return c.SetJSON(ctx, key, value, ttl)
}
