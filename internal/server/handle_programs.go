package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/resultboard/internal/catalog"
	"github.com/playperu/resultboard/internal/resultboard"
)

// Catalog is the read side of the program store.
type Catalog interface {
	List() []resultboard.Program
	Get(key string) (resultboard.Program, error)
}

func handleListPrograms(programs Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, programs.List())
	}
}

func handleGetProgram(programs Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		p, err := programs.Get(key)
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Program not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}
