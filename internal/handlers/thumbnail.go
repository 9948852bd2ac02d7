package handlers

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"homeserver/internal/logging"
)

// thumbnailCacheControl allows aggressive caching: thumbnail references
// are unique per generation and never reused, so a cached copy can
// never go stale.
const thumbnailCacheControl = "public, max-age=31536000, immutable"

// GetThumbnail serves the preview image for a media item. Items without
// a preview, and previews whose file has gone missing, both yield 404.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}

	if rec.Thumbnail == "" {
		writeJSONError(w, "no thumbnail for this media", http.StatusNotFound)
		return
	}

	h.serveThumbnail(w, r, rec.Thumbnail)
}

// GetThumbnailByRef serves a preview by its artifact name without a
// catalog lookup, for clients that already hold the reference from a
// listing response.
func (h *Handlers) GetThumbnailByRef(w http.ResponseWriter, r *http.Request) {
	h.serveThumbnail(w, r, mux.Vars(r)["ref"])
}

func (h *Handlers) serveThumbnail(w http.ResponseWriter, r *http.Request, ref string) {
	path, err := h.store.ThumbnailPath(ref)
	if err != nil {
		// Refs with separators or traversal never resolve; treat the
		// same as an unknown artifact.
		logging.Warn("Rejected thumbnail reference %q: %v", ref, err)
		writeJSONError(w, "thumbnail not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSONError(w, "thumbnail not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to open thumbnail %s: %v", path, err)
		writeJSONError(w, "failed to open thumbnail", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logging.Error("Failed to stat thumbnail %s: %v", path, err)
		writeJSONError(w, "failed to read thumbnail", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", thumbnailCacheControl)
	http.ServeContent(w, r, ref, info.ModTime(), f)
}
