// Package services contains server-side business logic. SessionService
// implements the account and session lifecycle; ItemService implements
// owner-scoped item CRUD.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/logging"
	"github.com/dmitrijs2005/itemkeeper/internal/server/auth"
	"github.com/dmitrijs2005/itemkeeper/internal/server/cache"
	"github.com/dmitrijs2005/itemkeeper/internal/server/config"
	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/repomanager"
)

// TokenPair is what a successful login hands to the transport: the access
// token for the response body and the refresh token for the cookie.
type TokenPair struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// SessionService provides authentication-related operations:
//   - Register: create users
//   - Login: verify credentials, mint an access token and replace the stored refresh token
//   - Refresh: mint an access token for a stored refresh token (no rotation)
//   - Logout: clear the stored refresh token
//   - ForgotPassword / ResetPassword: single-use password reset
//   - Authenticate: resolve an access token to a user for the auth gates
//
// A user holds at most one refresh token. Login overwrites it, so the most
// recent login wins and every earlier session stops refreshing.
type SessionService struct {
	repomanager                  repomanager.RepositoryManager
	issuer                       *auth.Issuer
	cache                        cache.UserCache // optional
	logger                       logging.Logger
	refreshTokenValidityDuration time.Duration
	resetTokenValidityDuration   time.Duration
	bcryptCost                   int
	now                          func() time.Time
}

// NewSessionService constructs a SessionService. userCache may be nil.
func NewSessionService(m repomanager.RepositoryManager, issuer *auth.Issuer, userCache cache.UserCache, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		repomanager:                  m,
		issuer:                       issuer,
		cache:                        userCache,
		logger:                       logger.With("module", "sessions"),
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		resetTokenValidityDuration:   cfg.ResetTokenValidityDuration,
		bcryptCost:                   cfg.BcryptCost,
		now:                          time.Now,
	}
}

// WithClock replaces the time source used for token expiry, for tests.
// The issuer should share the same clock.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Register creates a user. It issues no tokens; the user logs in separately.
func (s *SessionService) Register(ctx context.Context, username, email, password string) (*models.PublicUser, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users()
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	// a concurrent registration can still win the unique index
	u, err := repo.Create(ctx, &models.User{UserName: username, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u.Public(), nil
}

// Login verifies credentials and starts a new session, replacing any
// previous refresh token of the user. An unknown email and a wrong
// password fail the same way.
func (s *SessionService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users()
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	access, err := s.issuer.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}
	refresh, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}
	expiresAt := s.now().Add(s.refreshTokenValidityDuration)
	if err := repo.SetRefreshToken(ctx, user.ID, refresh, expiresAt); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, RefreshTokenExpiresAt: expiresAt}, nil
}

// Refresh returns a new access token for a stored, unexpired refresh
// token. The refresh token itself stays the same.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	user, err := s.userByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	access, err := s.issuer.IssueAccessToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("error issuing access token: %w", err)
	}
	return access, nil
}

// Logout clears the stored refresh token. If a newer login replaced the
// token between lookup and clear, nothing is cleared and the call fails
// like any other unknown token.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	user, err := s.userByRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	cleared, err := s.repomanager.Users().ClearRefreshToken(ctx, user.ID, refreshToken)
	if err != nil {
		return fmt.Errorf("error clearing refresh token: %w", err)
	}
	if !cleared {
		return common.ErrInvalidToken
	}
	return nil
}

func (s *SessionService) userByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	if refreshToken == "" {
		return nil, common.ErrMissingToken
	}

	user, err := s.repomanager.Users().GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if !user.RefreshTokenExpiresAt.IsZero() && !user.RefreshTokenExpiresAt.After(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}
	return user, nil
}

// ForgotPassword stores a fresh reset token for the user and returns it.
// The caller is responsible for getting it to the user.
func (s *SessionService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", common.ErrorValidation
	}

	repo := s.repomanager.Users()
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return "", fmt.Errorf("error generating reset token: %w", err)
	}
	if err := repo.SetResetToken(ctx, user.ID, token, s.now().Add(s.resetTokenValidityDuration)); err != nil {
		return "", fmt.Errorf("error storing reset token: %w", err)
	}

	s.logger.Info(ctx, "password reset requested", "user_id", user.ID)
	return token, nil
}

// ResetPassword sets a new password for the holder of an unexpired reset
// token and consumes the token.
func (s *SessionService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return common.ErrorValidation
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	ok, err := s.repomanager.Users().ConsumeResetToken(ctx, resetToken, hash, s.now())
	if err != nil {
		return fmt.Errorf("error consuming reset token: %w", err)
	}
	if !ok {
		return common.ErrResetTokenInvalid
	}
	return nil
}

// Authenticate resolves an access token to the user it was issued for.
// Errors: common.ErrMissingToken, common.ErrTokenExpired,
// common.ErrInvalidToken, or common.ErrorNotFound when the user is gone.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*models.PublicUser, error) {
	if accessToken == "" {
		return nil, common.ErrMissingToken
	}

	userID, err := s.issuer.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	return s.Me(ctx, userID)
}

// Me returns the public profile of userID, consulting the cache first.
func (s *SessionService) Me(ctx context.Context, userID string) (*models.PublicUser, error) {
	if s.cache != nil {
		u, err := s.cache.Get(ctx, userID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn(ctx, "user cache get failed", "error", err)
		}
	}

	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	public := user.Public()
	if s.cache != nil {
		if err := s.cache.Set(ctx, public); err != nil {
			s.logger.Warn(ctx, "user cache set failed", "error", err)
		}
	}
	return public, nil
}
