package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jalsetu/notify-worker/internal/domain"
	"github.com/jalsetu/notify-worker/internal/repository"
)

// RecordHandler exposes read access to delivery records so on-call can check
// what happened to a given notification without querying the database.
type RecordHandler struct {
	records repository.RecordRepository
}

func NewRecordHandler(records repository.RecordRepository) *RecordHandler {
	return &RecordHandler{records: records}
}

// GetByID handles GET /records/{id}.
func (h *RecordHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.records.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "record not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load record")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}
