// Package users stores user accounts together with their single active
// refresh token and pending password-reset token.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. A duplicate email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)

	// SetRefreshToken overwrites whatever token the user held.
	SetRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	// ClearRefreshToken clears the token only if it still equals token and
	// reports whether it did.
	ClearRefreshToken(ctx context.Context, userID, token string) (bool, error)

	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	// ConsumeResetToken replaces the password of the user holding an
	// unexpired token and clears the token in one step. It reports false
	// when no such user exists.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (bool, error)
}
