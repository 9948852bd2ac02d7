package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"homeserver/internal/database"
	"homeserver/internal/logging"
	"homeserver/internal/mediatypes"
	"homeserver/internal/metrics"
	"homeserver/internal/store"
)

// DefaultCategory receives uploads that do not name a category.
const DefaultCategory = "images-videos"

// ErrUnknownCategory is returned when an upload names a category the
// server was not configured with.
var ErrUnknownCategory = errors.New("unknown category")

// Catalog is the slice of the database the pipeline commits records to.
type Catalog interface {
	CreateMedia(ctx context.Context, rec *database.MediaRecord) error
}

// Thumbnailer produces a preview for a stored file and returns its
// logical reference.
type Thumbnailer interface {
	Generate(ctx context.Context, srcPath string, kind mediatypes.Kind) (string, error)
}

type Pipeline struct {
	store      *store.Store
	thumbs     Thumbnailer
	catalog    Catalog
	categories map[string]bool
}

// NewPipeline wires the upload pipeline. categories is the closed set of
// category names uploads may target; DefaultCategory is always included.
func NewPipeline(st *store.Store, thumbs Thumbnailer, catalog Catalog, categories []string) *Pipeline {
	allowed := map[string]bool{DefaultCategory: true}
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c != "" {
			allowed[c] = true
		}
	}
	return &Pipeline{
		store:      st,
		thumbs:     thumbs,
		catalog:    catalog,
		categories: allowed,
	}
}

// Categories returns the configured category names.
func (p *Pipeline) Categories() []string {
	out := make([]string, 0, len(p.categories))
	for c := range p.categories {
		out = append(out, c)
	}
	return out
}

// Ingest stores the upload and returns its committed catalog record.
//
// An empty category falls back to DefaultCategory. A preview failure is
// logged and the record is committed without a thumbnail reference. If
// the commit itself fails, the stored file and any preview are removed
// before the error is returned.
func (p *Pipeline) Ingest(ctx context.Context, category, clientName, contentType string, r io.Reader) (*database.MediaRecord, error) {
	rec, err := p.ingest(ctx, category, clientName, contentType, r)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.UploadsTotal.WithLabelValues("success").Inc()
	metrics.UploadBytesTotal.Add(float64(rec.Size))
	return rec, nil
}

func (p *Pipeline) ingest(ctx context.Context, category, clientName, contentType string, r io.Reader) (*database.MediaRecord, error) {
	if category == "" {
		category = DefaultCategory
	}
	if !p.categories[category] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	name := filepath.Base(strings.TrimSpace(clientName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}

	kind := mediatypes.Refine(mediatypes.ClassifyMIME(contentType), category)

	path, size, err := p.store.Save(category, name, r)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	var thumbRef string
	if kind != mediatypes.KindUnknown {
		thumbRef, err = p.thumbs.Generate(ctx, path, kind)
		if err != nil {
			logging.Warn("Preview generation failed for %s: %v", name, err)
			thumbRef = ""
		}
	}

	rec := &database.MediaRecord{
		Name:      name,
		Kind:      kind,
		Path:      path,
		Thumbnail: thumbRef,
		Size:      size,
		Category:  category,
	}

	if err := p.catalog.CreateMedia(ctx, rec); err != nil {
		// The record never landed, so the artifacts must not survive.
		if rmErr := p.store.Remove(path); rmErr != nil {
			logging.Error("Rollback failed to remove %s: %v", path, rmErr)
		}
		if thumbRef != "" {
			if rmErr := p.store.RemoveThumbnail(thumbRef); rmErr != nil {
				logging.Error("Rollback failed to remove thumbnail %s: %v", thumbRef, rmErr)
			}
		}
		return nil, fmt.Errorf("commit media record: %w", err)
	}

	logging.Info("Ingested %s (%s, %d bytes) into %s as %s", name, kind, size, category, rec.ID)
	return rec, nil
}
