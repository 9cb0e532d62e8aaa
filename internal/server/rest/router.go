package rest

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler returns the full route table wrapped in the common middleware.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)

	// Routes stay on the root router: a mux subrouter answers a method
	// mismatch with 404 instead of the root's 405 handler.
	r.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.refresh).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/forgot-password", s.forgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/auth/reset-password", s.resetPassword).Methods(http.MethodPost)
	r.Handle("/auth/me", s.protected(s.me)).Methods(http.MethodGet)

	r.Handle("/items", s.protected(s.createItem)).Methods(http.MethodPost)
	r.Handle("/items", s.protected(s.listItems)).Methods(http.MethodGet)
	r.Handle("/items/{id}", s.protected(s.getItem)).Methods(http.MethodGet)
	r.Handle("/items/{id}", s.protected(s.updateItem)).Methods(http.MethodPut)
	r.Handle("/items/{id}", s.protected(s.deleteItem)).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// CORS sits outside the router so preflight requests never hit method matching.
	return s.requestIDMiddleware(s.recoverMiddleware(s.loggingMiddleware(s.corsMiddleware(r))))
}

func (s *HTTPServer) protected(h http.HandlerFunc) http.Handler {
	return s.accessTokenMiddleware(h)
}
