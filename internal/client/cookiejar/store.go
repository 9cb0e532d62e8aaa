package cookiejar

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/dbx"
)

// record is one persisted cookie. ExpiresAt is zero for cookies without
// Max-Age or Expires.
type record struct {
	Host      string
	Path      string
	Name      string
	Value     string
	Secure    bool
	ExpiresAt time.Time
}

// SQLiteStore is the table-level access used by Jar.
type SQLiteStore struct {
	db dbx.DBTX
}

func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (r *SQLiteStore) Upsert(ctx context.Context, c record) error {
	var expires sql.NullInt64
	if !c.ExpiresAt.IsZero() {
		expires = sql.NullInt64{Int64: c.ExpiresAt.Unix(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cookies (host, path, name, value, secure, expires_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(host, path, name) DO UPDATE SET
			value = excluded.value, secure = excluded.secure, expires_at = excluded.expires_at
	`, c.Host, c.Path, c.Name, c.Value, c.Secure, expires)
	if err != nil {
		return fmt.Errorf("failed to set cookie[%s]: %w", c.Name, err)
	}
	return nil
}

func (r *SQLiteStore) Delete(ctx context.Context, host, path, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE host = ? AND path = ? AND name = ?`, host, path, name)
	if err != nil {
		return fmt.Errorf("failed to delete cookie[%s]: %w", name, err)
	}
	return nil
}

// ListLive returns the unexpired cookies for host.
func (r *SQLiteStore) ListLive(ctx context.Context, host string, now time.Time) ([]record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT host, path, name, value, secure, expires_at FROM cookies
		WHERE host = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY length(path) DESC, name`, host, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	defer rows.Close()

	var result []record
	for rows.Next() {
		var (
			c       record
			expires sql.NullInt64
		)
		if err := rows.Scan(&c.Host, &c.Path, &c.Name, &c.Value, &c.Secure, &expires); err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		if expires.Valid {
			c.ExpiresAt = time.Unix(expires.Int64, 0)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookie rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteStore) PurgeExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE expires_at IS NOT NULL AND expires_at <= ?`, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to purge cookies: %w", err)
	}
	return nil
}

func (r *SQLiteStore) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cookies`)
	if err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}
