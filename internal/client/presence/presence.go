// Package presence decides whether the client can act as a logged-in user,
// refreshing the access token ahead of protected commands when needed.
package presence

import (
	"context"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/client/session"
	"github.com/dmitrijs2005/itemkeeper/internal/client/transport"
	"github.com/dmitrijs2005/itemkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

type Presence struct {
	store   *session.Store
	refresh transport.RefreshFunc
	leeway  time.Duration
	now     func() time.Time
	logger  logging.Logger
}

// New builds a Presence. A token is treated as expired once now+leeway
// reaches its exp claim.
func New(store *session.Store, refresh transport.RefreshFunc, leeway time.Duration, logger logging.Logger) *Presence {
	return &Presence{
		store:   store,
		refresh: refresh,
		leeway:  leeway,
		now:     time.Now,
		logger:  logger.With("module", "presence"),
	}
}

func (p *Presence) WithClock(now func() time.Time) *Presence {
	p.now = now
	return p
}

func (p *Presence) IsAuthenticated() bool {
	return p.store.IsAuthenticated()
}

// Ensure refreshes when no token is held or the held token has expired
// locally, then reports IsAuthenticated. A failed refresh logs out.
func (p *Presence) Ensure(ctx context.Context) bool {
	token := p.store.AccessToken()
	if token != "" && !p.expired(token) {
		return true
	}

	p.store.BeginRefresh()
	fresh, err := p.refresh(ctx)
	if err != nil || fresh == "" {
		p.logger.Debug(ctx, "refresh on presence check failed", "error", err)
		p.store.Clear()
		return false
	}
	p.store.SetAccessToken(fresh)
	return true
}

// expired reads exp without verifying the signature; the server remains
// the authority. Tokens without a readable exp count as expired.
func (p *Presence) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !p.now().Add(p.leeway).Before(claims.ExpiresAt.Time)
}
