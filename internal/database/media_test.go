package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"homeserver/internal/mediatypes"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "media.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

func testRecord(category string) *MediaRecord {
	return &MediaRecord{
		Name:     "clip.mp4",
		Kind:     mediatypes.KindVideo,
		Path:     "/media/" + category + "/" + category + "-clip.mp4",
		Size:     1024,
		Category: category,
	}
}

func TestCreateAndGetMedia(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	rec := testRecord("images-videos")
	rec.Thumbnail = "abc.jpg"
	if err := db.CreateMedia(ctx, rec); err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("CreateMedia must assign an id")
	}
	if rec.UploadedAt.IsZero() {
		t.Fatal("CreateMedia must assign the upload timestamp")
	}

	got, err := db.GetMediaByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetMediaByID: %v", err)
	}
	if got.Name != rec.Name || got.Kind != rec.Kind || got.Path != rec.Path ||
		got.Thumbnail != rec.Thumbnail || got.Size != rec.Size || got.Category != rec.Category {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, rec)
	}
	if !got.UploadedAt.Equal(rec.UploadedAt) {
		t.Errorf("uploadedAt = %v, want %v", got.UploadedAt, rec.UploadedAt)
	}
}

func TestCreateMediaWithoutThumbnail(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	rec := testRecord("movies")
	if err := db.CreateMedia(ctx, rec); err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}

	got, err := db.GetMediaByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetMediaByID: %v", err)
	}
	if got.Thumbnail != "" {
		t.Errorf("thumbnail = %q, want empty", got.Thumbnail)
	}
}

func TestGetMediaByIDNotFound(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	if _, err := db.GetMediaByID(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListMediaFilters(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	names := map[string]string{
		"movies":        "heat.mp4",
		"series":        "pilot.mkv",
		"images-videos": "beach.jpg",
	}
	for category, name := range names {
		rec := testRecord(category)
		rec.Name = name
		if category == "images-videos" {
			rec.Kind = mediatypes.KindImage
		}
		if err := db.CreateMedia(ctx, rec); err != nil {
			t.Fatalf("CreateMedia(%s): %v", category, err)
		}
	}

	all, err := db.ListMedia(ctx, "", "")
	if err != nil {
		t.Fatalf("ListMedia: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}

	movies, err := db.ListMedia(ctx, "movies", "")
	if err != nil {
		t.Fatalf("ListMedia(movies): %v", err)
	}
	if len(movies) != 1 || movies[0].Name != "heat.mp4" {
		t.Errorf("category filter returned %+v", movies)
	}

	found, err := db.ListMedia(ctx, "", "PILOT")
	if err != nil {
		t.Fatalf("ListMedia(search): %v", err)
	}
	if len(found) != 1 || found[0].Name != "pilot.mkv" {
		t.Errorf("case-insensitive search returned %+v", found)
	}

	none, err := db.ListMedia(ctx, "movies", "pilot")
	if err != nil {
		t.Fatalf("ListMedia(combined): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("combined filter returned %+v, want none", none)
	}
}

func TestListMediaSearchWildcardsAreLiteral(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	rec := testRecord("images-videos")
	rec.Name = "plain.jpg"
	if err := db.CreateMedia(ctx, rec); err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}

	// A bare % would match everything if passed through unescaped.
	got, err := db.ListMedia(ctx, "", "%")
	if err != nil {
		t.Fatalf("ListMedia: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("wildcard search matched %d records, want 0", len(got))
	}
}

func TestDeleteMedia(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	rec := testRecord("movies")
	if err := db.CreateMedia(ctx, rec); err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}

	if err := db.DeleteMedia(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteMedia: %v", err)
	}
	if _, err := db.GetMediaByID(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Error("record still readable after delete")
	}

	// Second delete reports not-found, never a crash.
	if err := db.DeleteMedia(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	img := testRecord("images-videos")
	img.Kind = mediatypes.KindImage
	img.Path = "/media/images-videos/i.jpg"
	vid := testRecord("images-videos")

	for _, rec := range []*MediaRecord{img, vid} {
		if err := db.CreateMedia(ctx, rec); err != nil {
			t.Fatalf("CreateMedia: %v", err)
		}
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalItems != 2 || stats.TotalImages != 1 || stats.TotalVideos != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
