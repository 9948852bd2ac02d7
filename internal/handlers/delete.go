package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"homeserver/internal/database"
	"homeserver/internal/logging"
	"homeserver/internal/metrics"
)

// DeleteMedia removes a media item: the stored file first, then its
// thumbnail, then the catalog record. Artifact removal failures are
// logged but do not block record deletion, so a half-deleted item can
// always be retried or swept up later; only a failure to delete the
// record itself is an error.
func (h *Handlers) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	rec, err := h.db.GetMediaByID(r.Context(), vars["id"])
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			metrics.DeletesTotal.WithLabelValues("not_found").Inc()
			writeJSONError(w, "media not found", http.StatusNotFound)
			return
		}
		metrics.DeletesTotal.WithLabelValues("error").Inc()
		logging.Error("Failed to load media %s: %v", vars["id"], err)
		writeJSONError(w, "failed to load media", http.StatusInternalServerError)
		return
	}

	if err := h.store.Remove(rec.Path); err != nil {
		logging.Warn("Failed to remove file for %s: %v", rec.ID, err)
	}

	if rec.Thumbnail != "" {
		if err := h.store.RemoveThumbnail(rec.Thumbnail); err != nil {
			logging.Warn("Failed to remove thumbnail for %s: %v", rec.ID, err)
		}
	}

	if err := h.db.DeleteMedia(r.Context(), rec.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Raced with another delete; the item is gone either way.
			metrics.DeletesTotal.WithLabelValues("not_found").Inc()
			writeJSONError(w, "media not found", http.StatusNotFound)
			return
		}
		metrics.DeletesTotal.WithLabelValues("error").Inc()
		logging.Error("Failed to delete record %s: %v", rec.ID, err)
		writeJSONError(w, "failed to delete media", http.StatusInternalServerError)
		return
	}

	metrics.DeletesTotal.WithLabelValues("success").Inc()
	logging.Info("Deleted media %s (%s)", rec.ID, rec.Name)
	writeJSONStatus(w, "deleted")
}
