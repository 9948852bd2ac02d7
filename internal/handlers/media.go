package handlers

import (
	"errors"
	"net/http"

	"homeserver/internal/database"
	"homeserver/internal/logging"

	"github.com/gorilla/mux"
)

// MediaListResponse wraps a catalog listing.
type MediaListResponse struct {
	Media []database.MediaRecord `json:"media"`
	Count int                    `json:"count"`
}

// ListMedia returns catalog records, optionally filtered by the
// "category" and "search" query parameters.
func (h *Handlers) ListMedia(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")

	records, err := h.db.ListMedia(r.Context(), category, search)
	if err != nil {
		logging.Error("Failed to list media: %v", err)
		writeJSONError(w, "failed to list media", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, MediaListResponse{Media: records, Count: len(records)})
}

// GetMedia returns a single catalog record by ID.
func (h *Handlers) GetMedia(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	rec, err := h.db.GetMediaByID(r.Context(), vars["id"])
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "media not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to load media %s: %v", vars["id"], err)
		writeJSONError(w, "failed to load media", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, rec)
}

// ListCategories returns the configured category names.
func (h *Handlers) ListCategories(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string][]string{"categories": h.pipeline.Categories()})
}

// GetStats returns catalog summary counts.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.Stats(r.Context())
	if err != nil {
		logging.Error("Failed to load stats: %v", err)
		writeJSONError(w, "failed to load stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, stats)
}
