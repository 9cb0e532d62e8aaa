package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. Each method holds the
// lock for its whole read-modify-write, matching the row-level atomicity
// of the Postgres statements.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User)}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	stored := *user
	r.users[user.ID] = &stored

	return user, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) GetByRefreshToken(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return r.find(func(u *models.User) bool { return u.RefreshToken == token })
}

func (r *MemoryRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) SetRefreshToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.RefreshToken = token
	u.RefreshTokenExpiresAt = expiresAt
	return nil
}

func (r *MemoryRepository) ClearRefreshToken(_ context.Context, userID, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok || token == "" || u.RefreshToken != token {
		return false, nil
	}
	u.RefreshToken = ""
	u.RefreshTokenExpiresAt = time.Time{}
	return true, nil
}

func (r *MemoryRepository) SetResetToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.ResetToken = token
	u.ResetTokenExpiresAt = expiresAt
	return nil
}

func (r *MemoryRepository) ConsumeResetToken(_ context.Context, token, passwordHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token == "" {
		return false, nil
	}
	for _, u := range r.users {
		if u.ResetToken == token && u.ResetTokenExpiresAt.After(now) {
			u.PasswordHash = passwordHash
			u.ResetToken = ""
			u.ResetTokenExpiresAt = time.Time{}
			return true, nil
		}
	}
	return false, nil
}
