package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind represents the classification of a media item.
type Kind string

const (
	// KindImage represents a still image.
	KindImage Kind = "image"
	// KindVideo represents a generic video file.
	KindVideo Kind = "video"
	// KindMovie represents a video stored in the movies category.
	KindMovie Kind = "movie"
	// KindSeries represents a video stored in the series category.
	KindSeries Kind = "series"
	// KindUnknown represents a file outside the image/video families.
	// Unknown files are accepted and stored but never thumbnailed.
	KindUnknown Kind = "unknown"
)

// ClassifyMIME derives the media kind from a declared MIME type.
// Only the top-level type is inspected; parameters are ignored.
func ClassifyMIME(mimeType string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	case strings.HasPrefix(mt, "video/"):
		return KindVideo
	default:
		return KindUnknown
	}
}

// Refine specializes a generic video kind by its storage category, so
// catalog entries distinguish movies and series episodes from loose
// clips. Non-video kinds pass through unchanged.
func Refine(kind Kind, category string) Kind {
	if kind != KindVideo {
		return kind
	}
	switch category {
	case "movies":
		return KindMovie
	case "series":
		return KindSeries
	default:
		return KindVideo
	}
}

// IsVideo reports whether the kind plays in a video player.
func (k Kind) IsVideo() bool {
	return k == KindVideo || k == KindMovie || k == KindSeries
}

// contentTypes maps file extensions to their HTTP content types.
// This table is authoritative; the kind-based fallback applies only
// when the extension is absent or unrecognized.
var contentTypes = map[string]string{
	// Videos
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
	".ogv":  "video/ogg",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",

	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// FallbackContentType returns the coarse default content type for a kind,
// used when a file's extension is absent or unrecognized.
func FallbackContentType(kind Kind) string {
	switch {
	case kind.IsVideo():
		return "video/mp4"
	case kind == KindImage:
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// ContentTypeFor resolves the content type for a stored file, preferring
// the extension table and falling back to the kind default.
func ContentTypeFor(path string, kind Kind) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return FallbackContentType(kind)
}
