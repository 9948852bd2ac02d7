package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"homeserver/internal/logging"

	"github.com/google/uuid"
)

// ThumbnailDirName is the directory under the media root holding thumbnail
// artifacts for all categories.
const ThumbnailDirName = "thumbnails"

// Sentinel errors for content store operations.
var (
	// ErrInvalidCategory indicates a category name unusable as a directory name.
	ErrInvalidCategory = errors.New("invalid category name")

	// ErrInvalidRef indicates a thumbnail reference that does not resolve to a
	// name directly inside the thumbnails directory.
	ErrInvalidRef = errors.New("invalid thumbnail reference")

	// ErrOutsideRoot indicates a path outside the media root.
	ErrOutsideRoot = errors.New("path outside media root")
)

var safeExt = regexp.MustCompile(`^\.[A-Za-z0-9]{1,10}$`)

// Store manages original files and thumbnail artifacts under a media root.
type Store struct {
	root string
}

// New creates a content store rooted at the given directory. The root is
// resolved to an absolute path so containment checks are stable.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute media root directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureCategory creates the category directory if absent and returns its
// absolute path. MkdirAll makes concurrent first use safe: losing the race
// to another upload is not an error.
func (s *Store) EnsureCategory(category string) (string, error) {
	if !validCategoryName(category) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create category directory: %w", err)
	}
	return dir, nil
}

// EnsureThumbnailDir creates the thumbnails directory if absent.
func (s *Store) EnsureThumbnailDir() (string, error) {
	dir := filepath.Join(s.root, ThumbnailDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create thumbnails directory: %w", err)
	}
	return dir, nil
}

// Save writes the payload into the category directory under a generated
// collision-free name and returns the absolute path and byte count. The
// extension is taken from the client filename but validated; anything
// suspicious is dropped rather than trusted. The payload lands in a
// temporary file first and is renamed into place once fully written and
// synced, so readers never observe a partial original.
func (s *Store) Save(category, clientName string, r io.Reader) (string, int64, error) {
	dir, err := s.EnsureCategory(category)
	if err != nil {
		return "", 0, err
	}

	name := uuid.New().String() + SafeExt(clientName)
	finalPath := filepath.Join(dir, name)
	tmpPath := finalPath + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpPath, finalPath)
	}
	if err != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.Warn("failed to clean up temp file %s: %v", tmpPath, rmErr)
		}
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	logging.Debug("Stored %d bytes at %s", size, finalPath)
	return finalPath, size, nil
}

// Remove deletes an original file. A file that is already gone is treated
// as success: the goal state (no file) holds either way. Paths outside the
// media root are rejected.
func (s *Store) Remove(path string) error {
	if !s.contains(path) {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// NewThumbnailRef returns a fresh logical thumbnail artifact name. Thumbnail
// names are independent of the original's name so collisions across
// categories cannot occur.
func NewThumbnailRef() string {
	return uuid.New().String() + ".jpg"
}

// ThumbnailPath resolves a logical thumbnail reference to its physical path.
// Only plain filenames directly inside the thumbnails directory are valid;
// separators and dot-dot segments are rejected.
func (s *Store) ThumbnailPath(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.ContainsAny(ref, `/\`) || ref == "." || ref == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return filepath.Join(s.root, ThumbnailDirName, ref), nil
}

// RemoveThumbnail deletes a thumbnail artifact by its logical reference.
// A missing artifact is success, same as Remove.
func (s *Store) RemoveThumbnail(ref string) error {
	path, err := s.ThumbnailPath(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove thumbnail: %w", err)
	}
	return nil
}

// CategoryFromPath derives the category of a stored file from its parent
// directory name. Files not under the root report an empty category.
func (s *Store) CategoryFromPath(path string) string {
	if !s.contains(path) {
		return ""
	}
	return filepath.Base(filepath.Dir(path))
}

// SafeExt extracts the extension from a client-supplied filename, accepting
// only short alphanumeric extensions. Everything else becomes no extension,
// which the content-type fallback handles downstream.
func SafeExt(clientName string) string {
	ext := strings.ToLower(filepath.Ext(clientName))
	if !safeExt.MatchString(ext) {
		return ""
	}
	return ext
}

func (s *Store) contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func validCategoryName(name string) bool {
	if name == "" || name == "." || name == ".." || name == ThumbnailDirName {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
