package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/openpantry/pantryd/internal/store"
)

// pantryCollectionHandler serves /pantry/items: list and create.
func (s *Server) pantryCollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.pantry.List(r.Context())
		if err != nil {
			s.logger.Error("listing pantry items failed", "error", err)
			s.writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to list pantry items")
			return
		}
		if items == nil {
			items = []store.Item{}
		}
		s.writeJSON(w, http.StatusOK, items)

	case http.MethodPost:
		in, ok := s.decodeItemInput(w, r)
		if !ok {
			return
		}
		item, err := s.pantry.Create(r.Context(), *in)
		if err != nil {
			s.writePantryError(w, err, "failed to create pantry item")
			return
		}
		s.writeJSON(w, http.StatusCreated, item)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// pantryItemHandler serves /pantry/items/{id}: get, update, delete.
func (s *Server) pantryItemHandler(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/pantry/items/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid pantry item id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := s.pantry.Get(r.Context(), id)
		if err != nil {
			s.writePantryError(w, err, "failed to fetch pantry item")
			return
		}
		s.writeJSON(w, http.StatusOK, item)

	case http.MethodPut:
		in, ok := s.decodeItemInput(w, r)
		if !ok {
			return
		}
		item, err := s.pantry.Update(r.Context(), id, *in)
		if err != nil {
			s.writePantryError(w, err, "failed to update pantry item")
			return
		}
		s.writeJSON(w, http.StatusOK, item)

	case http.MethodDelete:
		if err := s.pantry.Delete(r.Context(), id); err != nil {
			s.writePantryError(w, err, "failed to delete pantry item")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// decodeItemInput parses and validates the JSON body of a create or
// update request, writing the error response itself on failure.
func (s *Server) decodeItemInput(w http.ResponseWriter, r *http.Request) (*store.ItemInput, bool) {
	var in store.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return nil, false
	}
	if err := in.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return nil, false
	}
	return &in, true
}

func (s *Server) writePantryError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "pantry item not found")
		return
	}
	s.logger.Error("pantry store error", "error", err)
	s.writeError(w, http.StatusInternalServerError, "INTERNAL", fallback)
}
