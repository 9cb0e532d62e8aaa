// Package cookiejar is a persistent http.CookieJar backed by SQLite. It
// keeps the refresh token cookie across CLI invocations the way a browser
// keeps its cookie store.
//
// Only host-only cookies are supported: the Domain attribute is ignored and
// a cookie is returned for the exact host that set it.
package cookiejar

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/client/cookiejar/migrations"
	"github.com/dmitrijs2005/itemkeeper/internal/dbx"
	"github.com/dmitrijs2005/itemkeeper/internal/filex"
	"github.com/dmitrijs2005/itemkeeper/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// gooseUpContext is a test seam.
var gooseUpContext = goose.UpContext

type Jar struct {
	db     *sql.DB
	store  *SQLiteStore
	logger logging.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the SQLite database at path and brings
// its schema up to date.
func Open(ctx context.Context, path string, logger logging.Logger) (*Jar, error) {
	path, err := filex.EnsureParentDir(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cookie db: %w", err)
	}
	// One writer keeps SQLite from reporting SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate cookie db: %w", err)
	}

	return &Jar{db: db, store: NewSQLiteStore(db), logger: logger.With("module", "cookiejar"), now: time.Now}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func (j *Jar) WithClock(now func() time.Time) *Jar {
	j.now = now
	return j
}

func (j *Jar) Close() error {
	return j.db.Close()
}

// Clear drops every stored cookie.
func (j *Jar) Clear(ctx context.Context) error {
	return j.store.Clear(ctx)
}

// SetCookies implements http.CookieJar. Storage errors are logged because
// the interface has no error return.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	ctx := context.Background()
	host := u.Hostname()
	now := j.now()

	err := dbx.WithTx(ctx, j.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := NewSQLiteStore(tx)
		for _, c := range cookies {
			path := cookiePath(u, c)
			expires := expiry(c, now)

			if c.MaxAge < 0 || (!expires.IsZero() && !expires.After(now)) {
				if err := store.Delete(ctx, host, path, c.Name); err != nil {
					return err
				}
				continue
			}

			rec := record{Host: host, Path: path, Name: c.Name, Value: c.Value, Secure: c.Secure, ExpiresAt: expires}
			if err := store.Upsert(ctx, rec); err != nil {
				return err
			}
		}
		return store.PurgeExpired(ctx, now)
	})
	if err != nil {
		j.logger.Error(ctx, "store cookies", "host", host, "error", err)
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	ctx := context.Background()

	records, err := j.store.ListLive(ctx, u.Hostname(), j.now())
	if err != nil {
		j.logger.Error(ctx, "load cookies", "host", u.Hostname(), "error", err)
		return nil
	}

	reqPath := u.EscapedPath()
	if reqPath == "" {
		reqPath = "/"
	}

	var out []*http.Cookie
	for _, r := range records {
		if r.Secure && u.Scheme != "https" {
			continue
		}
		if !pathMatch(r.Path, reqPath) {
			continue
		}
		out = append(out, &http.Cookie{Name: r.Name, Value: r.Value})
	}
	return out
}

func expiry(c *http.Cookie, now time.Time) time.Time {
	if c.MaxAge > 0 {
		return now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	if !c.Expires.IsZero() {
		return c.Expires
	}
	return time.Time{}
}

// cookiePath applies the RFC 6265 default-path rule.
func cookiePath(u *url.URL, c *http.Cookie) string {
	if strings.HasPrefix(c.Path, "/") {
		return c.Path
	}
	p := u.Path
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "/"
	}
	return p[:i]
}

func pathMatch(cookiePath, reqPath string) bool {
	if cookiePath == reqPath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}
