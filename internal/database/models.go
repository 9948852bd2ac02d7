package database

import (
	"time"

	"homeserver/internal/mediatypes"
)

// MediaRecord is the durable catalog entry for one uploaded item.
//
// Path is owned by the content store and never serialized; clients address
// media exclusively by ID and, for previews, by the thumbnail reference.
type MediaRecord struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Kind       mediatypes.Kind `json:"kind"`
	Path       string          `json:"-"`
	Thumbnail  string          `json:"thumbnailRef,omitempty"`
	Size       int64           `json:"sizeBytes"`
	Category   string          `json:"category"`
	UploadedAt time.Time       `json:"uploadedAt"`
}

// CatalogStats summarizes the catalog for health reporting.
type CatalogStats struct {
	TotalItems  int `json:"totalItems"`
	TotalImages int `json:"totalImages"`
	TotalVideos int `json:"totalVideos"`
}
