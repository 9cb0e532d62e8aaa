package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/itemkeeper/internal/server/services"
	"github.com/gorilla/mux"
)

type itemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *HTTPServer) createItem(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.items.Create(r.Context(), user.ID, deref(req.Name), deref(req.Description))
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, item)
	case errors.Is(err, common.ErrorValidation):
		writeMessage(w, http.StatusBadRequest, "Item name is required")
	default:
		s.serverError(w, r, "item creation", err)
	}
}

func (s *HTTPServer) listItems(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	list, err := s.items.List(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, "item listing", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) getItem(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	item, err := s.items.Get(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		s.itemError(w, r, "item lookup", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) updateItem(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.items.Update(r.Context(), user.ID, mux.Vars(r)["id"], items.Patch{Name: req.Name, Description: req.Description})
	if err != nil {
		s.itemError(w, r, "item update", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) deleteItem(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	if err := s.items.Delete(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		s.itemError(w, r, "item deletion", err)
		return
	}
	writeMessage(w, http.StatusOK, "Item deleted successfully")
}

func (s *HTTPServer) itemError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, "Invalid item ID")
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, "Item not found or not authorized")
	default:
		s.serverError(w, r, op, err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
