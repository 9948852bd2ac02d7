package handlers

import (
	"time"

	"homeserver/internal/database"
	"homeserver/internal/ingest"
	"homeserver/internal/store"
	"homeserver/internal/streaming"

	"github.com/gorilla/mux"
)

// maxUploadMemory bounds how much of a multipart body is buffered in
// memory before spilling to temp files.
const maxUploadMemory = 32 << 20

type Handlers struct {
	db        *database.Database
	store     *store.Store
	pipeline  *ingest.Pipeline
	streamer  *streaming.Streamer
	startTime time.Time
}

func New(db *database.Database, st *store.Store, pipeline *ingest.Pipeline, streamer *streaming.Streamer) *Handlers {
	return &Handlers{
		db:        db,
		store:     st,
		pipeline:  pipeline,
		streamer:  streamer,
		startTime: time.Now(),
	}
}

// Register attaches all API routes to the router.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/media", h.Upload).Methods("POST")
	api.HandleFunc("/media", h.ListMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.GetMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.DeleteMedia).Methods("DELETE")
	api.HandleFunc("/media/{id}/stream", h.StreamMedia).Methods("GET", "HEAD")
	api.HandleFunc("/media/{id}/download", h.DownloadMedia).Methods("GET")
	api.HandleFunc("/media/{id}/thumbnail", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/thumbnails/{ref}", h.GetThumbnailByRef).Methods("GET")
	api.HandleFunc("/categories", h.ListCategories).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
}
