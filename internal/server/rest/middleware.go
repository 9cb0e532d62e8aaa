package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/logging"
	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/google/uuid"
)

type ctxKey string

const userKey ctxKey = "user"

// UserFromContext returns the user attached by the access token gate.
func UserFromContext(ctx context.Context) (*models.PublicUser, bool) {
	u, ok := ctx.Value(userKey).(*models.PublicUser)
	return u, ok
}

// accessTokenMiddleware admits requests that carry a valid access token in
// the Authorization header. Cookies are ignored here: only the refresh
// token travels as a cookie.
func (s *HTTPServer) accessTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := common.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized: No token provided")
			return
		}

		user, err := s.sessions.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrorNotFound):
				writeMessage(w, http.StatusUnauthorized, "Unauthorized: User not found")
			case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
				writeMessage(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
			default:
				s.logger.Error(r.Context(), "authentication failed", "error", err)
				writeMessage(w, http.StatusInternalServerError, "Server error during authentication")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// corsMiddleware allows listed origins with credentials so browsers send the
// refresh cookie cross-origin. Requests without Origin pass untouched.
func (s *HTTPServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := s.origins[origin]; !ok {
			s.logger.Warn(r.Context(), "origin not allowed", "origin", origin)
			writeMessage(w, http.StatusForbidden, "Origin not allowed")
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware tags the request context with the caller's
// X-Request-ID, or a fresh one, and echoes it back.
func (s *HTTPServer) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

func (s *HTTPServer) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				s.logger.Error(r.Context(), "panic in handler", "panic", p, "path", r.URL.Path)
				writeMessage(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
