package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/dbx"
	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, password_hash, refresh_token, refresh_token_expires_at,
		reset_token, reset_token_expires_at, created_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE email = $1
		 `
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	// ids are uuids; anything else cannot match and would only make postgres complain
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE refresh_token = $1
		 `
	return r.getOne(ctx, query, token)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		user                           models.User
		refreshToken, resetToken       sql.NullString
		refreshExpires, resetExpiresAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.UserName, &user.Email, &user.PasswordHash,
		&refreshToken, &refreshExpires, &resetToken, &resetExpiresAt, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.RefreshToken = refreshToken.String
	user.RefreshTokenExpiresAt = refreshExpires.Time
	user.ResetToken = resetToken.String
	user.ResetTokenExpiresAt = resetExpiresAt.Time

	return &user, nil
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query :=
		`UPDATE users SET refresh_token = $2, refresh_token_expires_at = $3
		 WHERE id = $1
		 `
	res, err := r.db.ExecContext(ctx, query, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	query :=
		`UPDATE users SET refresh_token = NULL, refresh_token_expires_at = NULL
		 WHERE id = $1 AND refresh_token = $2
		 `
	res, err := r.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query :=
		`UPDATE users SET reset_token = $2, reset_token_expires_at = $3
		 WHERE id = $1
		 `
	res, err := r.db.ExecContext(ctx, query, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (bool, error) {
	query :=
		`UPDATE users SET password_hash = $2, reset_token = NULL, reset_token_expires_at = NULL
		 WHERE reset_token = $1 AND reset_token_expires_at > $3
		 `
	res, err := r.db.ExecContext(ctx, query, token, passwordHash, now)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
