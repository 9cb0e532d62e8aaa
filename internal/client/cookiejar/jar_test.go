package cookiejar

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func openJar(t *testing.T, path string, now *time.Time) *Jar {
	t.Helper()
	j, err := Open(context.Background(), path, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j.WithClock(func() time.Time { return *now })
}

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func names(cs []*http.Cookie) map[string]string {
	m := map[string]string{}
	for _, c := range cs {
		m[c.Name] = c.Value
	}
	return m
}

func TestJar_SetAndGet(t *testing.T) {
	now := t0
	j := openJar(t, filepath.Join(t.TempDir(), "jar.db"), &now)
	u := mustURL(t, "http://127.0.0.1:8080/auth/login")

	j.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: "r1", Path: "/", HttpOnly: true, MaxAge: 3600}})

	got := j.Cookies(mustURL(t, "http://127.0.0.1:8080/auth/refresh"))
	assert.Equal(t, map[string]string{"refreshToken": "r1"}, names(got))

	assert.Empty(t, j.Cookies(mustURL(t, "http://other.host/auth/refresh")), "host-only cookie")
}

func TestJar_PersistsAcrossReopen(t *testing.T) {
	now := t0
	path := filepath.Join(t.TempDir(), "jar.db")
	u := mustURL(t, "http://localhost:8080/auth/login")

	j, err := Open(context.Background(), path, testLogger())
	require.NoError(t, err)
	j.WithClock(func() time.Time { return now })
	j.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: "keep", Path: "/", MaxAge: 600}})
	require.NoError(t, j.Close())

	j2 := openJar(t, path, &now)
	assert.Equal(t, "keep", names(j2.Cookies(u))["refreshToken"])
}

func TestOpen_CreatesStateDirectory(t *testing.T) {
	now := t0
	path := filepath.Join(t.TempDir(), "state", "itemkeeper", "jar.db")
	j := openJar(t, path, &now)

	j.SetCookies(mustURL(t, "http://localhost/"), []*http.Cookie{{Name: "a", Value: "1"}})
	assert.Len(t, j.Cookies(mustURL(t, "http://localhost/")), 1)
}

func TestJar_MaxAgeExpiry(t *testing.T) {
	now := t0
	j := openJar(t, filepath.Join(t.TempDir(), "jar.db"), &now)
	u := mustURL(t, "http://localhost/")

	j.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: "r", Path: "/", MaxAge: 60}})
	assert.Len(t, j.Cookies(u), 1)

	now = t0.Add(61 * time.Second)
	assert.Empty(t, j.Cookies(u))
}

func TestJar_NegativeMaxAgeDeletes(t *testing.T) {
	now := t0
	j := openJar(t, filepath.Join(t.TempDir(), "jar.db"), &now)
	u := mustURL(t, "http://localhost/auth/logout")

	j.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: "r", Path: "/", MaxAge: 60}})
	j.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: "", Path: "/", MaxAge: -1}})

	assert.Empty(t, j.Cookies(u))
}

func TestJar_PastExpiresDeletes(t *testing.T) {
	now := t0
	j := openJar(t, filepath.Join(t.TempDir(), "jar.db"), &now)
	u := mustURL(t, "http://localhost/")

	j.SetCookies(u, []*http.Cookie{{Name: "a", Value: "1", Path: "/"}})
	j.SetCookies(u, []*http.Cookie{{Name: "a", Value: "", Path: "/", Expires: t0.Add(-time.Hour)}})

	assert.Empty(t, j.Cookies(u))
}

func TestJar_SecureOnlyOverHTTPS(t *testing.T) {
	now := t0
	j := openJar(t, filepath.Join(t.TempDir(), "jar.db"), &now)

	j.SetCookies(mustURL(t, "https://api.example/"), []*http.Cookie{{Name: "s", Value: "1", Path: "/", Secure: true}})

	assert.Empty(t, j.Cookies(mustURL(t, "http://api.example/")))
	assert.Len(t, j.Cookies(mustURL(t, "https://api.example/")), 1)
}

func TestJar_PathMatching(t *testing.T) {
	now := t0
	j := openJar(t, filepath.Join(t.TempDir(), "jar.db"), &now)

	j.SetCookies(mustURL(t, "http://h/auth/login"), []*http.Cookie{{Name: "scoped", Value: "1", Path: "/auth"}})

	assert.Len(t, j.Cookies(mustURL(t, "http://h/auth/refresh")), 1)
	assert.Len(t, j.Cookies(mustURL(t, "http://h/auth")), 1)
	assert.Empty(t, j.Cookies(mustURL(t, "http://h/authz")))
	assert.Empty(t, j.Cookies(mustURL(t, "http://h/items")))
}

func TestJar_DefaultPath(t *testing.T) {
	now := t0
	j := openJar(t, filepath.Join(t.TempDir(), "jar.db"), &now)

	j.SetCookies(mustURL(t, "http://h/auth/login"), []*http.Cookie{{Name: "d", Value: "1"}})

	assert.Len(t, j.Cookies(mustURL(t, "http://h/auth/me")), 1)
	assert.Empty(t, j.Cookies(mustURL(t, "http://h/items")))
}

func TestJar_Clear(t *testing.T) {
	now := t0
	j := openJar(t, filepath.Join(t.TempDir(), "jar.db"), &now)
	u := mustURL(t, "http://h/")

	j.SetCookies(u, []*http.Cookie{{Name: "a", Value: "1", Path: "/"}})
	require.NoError(t, j.Clear(context.Background()))
	assert.Empty(t, j.Cookies(u))
}

func TestJar_WorksAsClientJar(t *testing.T) {
	now := t0
	j := openJar(t, filepath.Join(t.TempDir(), "jar.db"), &now)
	var _ http.CookieJar = j
}

func TestOpen_MigrationError(t *testing.T) {
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "jar.db"), testLogger())
	assert.ErrorContains(t, err, "boom")
}

func TestStore_ErrorsWrapped(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s := NewSQLiteStore(db)
	ctx := context.Background()

	assert.ErrorContains(t, s.Upsert(ctx, record{Name: "k"}), "failed to set cookie[k]")
	assert.ErrorContains(t, s.Delete(ctx, "h", "/", "k"), "failed to delete cookie[k]")
	assert.ErrorContains(t, s.Clear(ctx), "failed to clear cookies")
	_, err = s.ListLive(ctx, "h", t0)
	assert.ErrorContains(t, err, "failed to list cookies")
}
