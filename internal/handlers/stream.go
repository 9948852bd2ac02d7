package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"homeserver/internal/database"
	"homeserver/internal/logging"
	"homeserver/internal/mediatypes"

	"github.com/gorilla/mux"
)

// StreamMedia serves the media file inline with byte-range support.
// The content type comes from the stored file's extension, falling back
// to the record's kind when the extension is unrecognized.
func (h *Handlers) StreamMedia(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}

	contentType := mediatypes.ContentTypeFor(rec.Path, rec.Kind)
	h.streamer.ServeFile(w, r, rec.Path, contentType)
}

// DownloadMedia serves the media file as an attachment under its
// original upload name. Range requests still work so interrupted
// downloads can resume.
func (h *Handlers) DownloadMedia(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Name))
	h.streamer.ServeFile(w, r, rec.Path, "application/octet-stream")
}

func (h *Handlers) loadRecord(w http.ResponseWriter, r *http.Request) (*database.MediaRecord, bool) {
	vars := mux.Vars(r)

	rec, err := h.db.GetMediaByID(r.Context(), vars["id"])
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "media not found", http.StatusNotFound)
			return nil, false
		}
		logging.Error("Failed to load media %s: %v", vars["id"], err)
		writeJSONError(w, "failed to load media", http.StatusInternalServerError)
		return nil, false
	}
	return rec, true
}
