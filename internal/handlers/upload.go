package handlers

import (
	"errors"
	"net/http"

	"homeserver/internal/ingest"
	"homeserver/internal/logging"
)

// Upload accepts a multipart form with a "file" part and an optional
// "category" field, runs the ingestion pipeline, and returns the
// committed catalog record with 201.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				logging.Warn("Failed to clean multipart temp files: %v", err)
			}
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	category := r.FormValue("category")
	contentType := header.Header.Get("Content-Type")

	rec, err := h.pipeline.Ingest(r.Context(), category, header.Filename, contentType, file)
	if err != nil {
		if errors.Is(err, ingest.ErrUnknownCategory) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logging.Error("Upload of %s failed: %v", header.Filename, err)
		writeJSONError(w, "upload failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/media/"+rec.ID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, rec)
}
