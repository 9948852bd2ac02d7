package thumbnail

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"homeserver/internal/logging"
	"homeserver/internal/mediatypes"
	"homeserver/internal/metrics"
	"homeserver/internal/store"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	// Preview dimensions. Sources are scaled to cover the full frame and
	// center cropped, so previews always come out exactly this size.
	Width  = 400
	Height = 300

	jpegQuality = 80
)

// CodecError marks a failure to decode or probe the source media itself,
// as opposed to an I/O or environment failure. Callers treat it as a
// property of the uploaded file rather than of the server.
type CodecError struct {
	Path string
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("cannot decode %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// Generator produces preview images into a store's thumbnail directory.
type Generator struct {
	store *store.Store
}

func NewGenerator(st *store.Store) (*Generator, error) {
	if _, err := st.EnsureThumbnailDir(); err != nil {
		return nil, fmt.Errorf("thumbnail dir: %w", err)
	}
	return &Generator{store: st}, nil
}

// Generate creates a preview for the media at srcPath and returns the
// logical reference under which it was stored. The reference is a bare
// filename; resolving it to a path goes through the store.
func (g *Generator) Generate(ctx context.Context, srcPath string, kind mediatypes.Kind) (string, error) {
	start := time.Now()
	ref, err := g.generate(ctx, srcPath, kind)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ThumbnailsGenerated.WithLabelValues(string(kind), status).Inc()
	metrics.ThumbnailDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	return ref, err
}

func (g *Generator) generate(ctx context.Context, srcPath string, kind mediatypes.Kind) (string, error) {
	if _, err := os.Stat(srcPath); err != nil {
		return "", fmt.Errorf("source not accessible: %w", err)
	}

	var img image.Image
	var err error

	if kind.IsVideo() {
		img, err = extractVideoFrame(ctx, srcPath)
	} else {
		img, err = decodeImage(srcPath)
	}
	if err != nil {
		return "", err
	}

	thumb := imaging.Fill(img, Width, Height, imaging.Center, imaging.Lanczos)

	ref := store.NewThumbnailRef()
	dest, err := g.store.ThumbnailPath(ref)
	if err != nil {
		return "", err
	}
	if err := writeJPEG(dest, thumb); err != nil {
		return "", err
	}

	logging.Debug("Thumbnail generated: %s -> %s", filepath.Base(srcPath), ref)
	return ref, nil
}

// decodeImage tries libvips first for decode-time shrinking, then the
// pure-Go decoders registered via image init.
func decodeImage(path string) (image.Image, error) {
	if IsVipsAvailable() {
		img, err := loadImageWithVips(path, Width, Height)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips decode failed for %s: %v, falling back", filepath.Base(path), err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &CodecError{Path: path, Err: err}
	}
	return img, nil
}

// writeJPEG encodes img to a temp file in the destination directory and
// renames it into place so partially written previews are never visible.
func writeJPEG(dest string, img image.Image) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp thumbnail: %w", err)
	}
	tmpName := tmp.Name()

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close thumbnail: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("finalize thumbnail: %w", err)
	}
	return nil
}
