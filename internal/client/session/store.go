// Package session holds the client's in-memory authentication state. The
// access token never leaves process memory; the refresh token lives in the
// cookie jar and is not visible here.
package session

import "sync"

// State is the client's position in the login lifecycle.
type State int

const (
	Anonymous State = iota
	Authenticated
	PendingRefresh
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case PendingRefresh:
		return "pending-refresh"
	default:
		return "unknown"
	}
}

// Store is safe for concurrent use. Callers share one Store per logged-in
// identity and pass it to whatever needs the access token.
type Store struct {
	mu          sync.RWMutex
	state       State
	accessToken string
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetAccessToken moves to Authenticated, or to Anonymous when token is empty.
func (s *Store) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
	if token == "" {
		s.state = Anonymous
		return
	}
	s.state = Authenticated
}

// BeginRefresh marks the held token as rejected. The token is kept so
// IsAuthenticated stays true until the refresh resolves.
func (s *Store) BeginRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = PendingRefresh
}

// Clear forgets the access token.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.state = Anonymous
}

func (s *Store) IsAuthenticated() bool {
	return s.AccessToken() != ""
}
