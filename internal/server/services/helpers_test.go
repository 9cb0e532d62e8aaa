package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/logging"
	"github.com/dmitrijs2005/itemkeeper/internal/server/auth"
	"github.com/dmitrijs2005/itemkeeper/internal/server/cache"
	"github.com/dmitrijs2005/itemkeeper/internal/server/config"
	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// testClock is a settable clock shared by the issuer and the service.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

type sessionFixture struct {
	svc    *SessionService
	issuer *auth.Issuer
	repos  repomanager.RepositoryManager
	clock  *testClock
}

func newSessionFixture(t *testing.T, userCache cache.UserCache) *sessionFixture {
	t.Helper()
	return newSessionFixtureWith(t, repomanager.NewInMemoryRepositoryManager(), userCache)
}

func newSessionFixtureWith(t *testing.T, rm repomanager.RepositoryManager, userCache cache.UserCache) *sessionFixture {
	t.Helper()
	cfg := testConfig()
	clock := newTestClock()
	issuer := auth.NewIssuer([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration).WithClock(clock.Now)
	svc := NewSessionService(rm, issuer, userCache, cfg, testLogger()).WithClock(clock.Now)
	return &sessionFixture{svc: svc, issuer: issuer, repos: rm, clock: clock}
}

// stubManager lets a test swap one repository for a failing fake.
type stubManager struct {
	users users.Repository
	items items.Repository
}

func (m *stubManager) RunMigrations(context.Context) error { return nil }
func (m *stubManager) Users() users.Repository             { return m.users }
func (m *stubManager) Items() items.Repository             { return m.items }
func (m *stubManager) Close() error                        { return nil }

// failingUsers embeds a working repository and overrides selected calls.
type failingUsers struct {
	users.Repository
	getByEmailErr   error
	setRefreshErr   error
	clearRefreshNil bool
}

func (f *failingUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmailErr != nil {
		return nil, f.getByEmailErr
	}
	return f.Repository.GetByEmail(ctx, email)
}

func (f *failingUsers) SetRefreshToken(ctx context.Context, userID, token string, exp time.Time) error {
	if f.setRefreshErr != nil {
		return f.setRefreshErr
	}
	return f.Repository.SetRefreshToken(ctx, userID, token, exp)
}

func (f *failingUsers) ClearRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	if f.clearRefreshNil {
		return false, nil
	}
	return f.Repository.ClearRefreshToken(ctx, userID, token)
}

type fakeUserCache struct {
	mu    sync.Mutex
	users map[string]*models.PublicUser
	gets  int
}

func newFakeUserCache() *fakeUserCache {
	return &fakeUserCache{users: map[string]*models.PublicUser{}}
}

func (c *fakeUserCache) Get(_ context.Context, id string) (*models.PublicUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	u, ok := c.users[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return u, nil
}

func (c *fakeUserCache) Set(_ context.Context, u *models.PublicUser) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[u.ID] = u
	return nil
}

func (c *fakeUserCache) Del(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, id)
	return nil
}
