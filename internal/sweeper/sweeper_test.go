package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"homeserver/internal/database"
	"homeserver/internal/mediatypes"
	"homeserver/internal/store"
)

func newTestEnv(t *testing.T) (*store.Store, *database.Database) {
	t.Helper()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	if _, err := st.EnsureThumbnailDir(); err != nil {
		t.Fatalf("EnsureThumbnailDir: %v", err)
	}

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return st, db
}

func storeFile(t *testing.T, st *store.Store, category, name, content string) string {
	t.Helper()
	path, _, err := st.Save(category, name, strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func storeThumbnail(t *testing.T, st *store.Store) string {
	t.Helper()
	ref := store.NewThumbnailRef()
	path, err := st.ThumbnailPath(ref)
	if err != nil {
		t.Fatalf("ThumbnailPath: %v", err)
	}
	if err := os.WriteFile(path, []byte("jpeg"), 0644); err != nil {
		t.Fatalf("write thumbnail: %v", err)
	}
	return ref
}

func createRecord(t *testing.T, db *database.Database, path, thumbnail string) *database.MediaRecord {
	t.Helper()
	rec := &database.MediaRecord{
		Name:      filepath.Base(path),
		Kind:      mediatypes.KindImage,
		Path:      path,
		Thumbnail: thumbnail,
		Size:      4,
		Category:  "images-videos",
	}
	if err := db.CreateMedia(context.Background(), rec); err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}
	return rec
}

func TestRunOnceRemovesOrphanFiles(t *testing.T) {
	st, db := newTestEnv(t)
	ctx := context.Background()

	keptPath := storeFile(t, st, "images-videos", "kept.png", "keep")
	keptThumb := storeThumbnail(t, st)
	createRecord(t, db, keptPath, keptThumb)

	orphanPath := storeFile(t, st, "images-videos", "orphan.png", "lost")
	orphanThumb := storeThumbnail(t, st)
	orphanThumbPath, _ := st.ThumbnailPath(orphanThumb)

	s := New(db, st, time.Hour, 0)
	report, err := s.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if report.OrphanFiles != 1 {
		t.Errorf("OrphanFiles = %d, want 1", report.OrphanFiles)
	}
	if report.OrphanThumbnails != 1 {
		t.Errorf("OrphanThumbnails = %d, want 1", report.OrphanThumbnails)
	}
	if report.DanglingRecords != 0 {
		t.Errorf("DanglingRecords = %d, want 0", report.DanglingRecords)
	}

	if _, err := os.Stat(orphanPath); !os.IsNotExist(err) {
		t.Error("orphan file survived sweep")
	}
	if _, err := os.Stat(orphanThumbPath); !os.IsNotExist(err) {
		t.Error("orphan thumbnail survived sweep")
	}
	if _, err := os.Stat(keptPath); err != nil {
		t.Error("referenced file was swept")
	}
	keptThumbPath, _ := st.ThumbnailPath(keptThumb)
	if _, err := os.Stat(keptThumbPath); err != nil {
		t.Error("referenced thumbnail was swept")
	}
}

func TestRunOnceRemovesDanglingRecords(t *testing.T) {
	st, db := newTestEnv(t)
	ctx := context.Background()

	goneThumb := storeThumbnail(t, st)
	goneThumbPath, _ := st.ThumbnailPath(goneThumb)
	rec := createRecord(t, db, filepath.Join(st.Root(), "images-videos", "vanished.png"), goneThumb)

	s := New(db, st, time.Hour, 0)
	report, err := s.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if report.DanglingRecords != 1 {
		t.Errorf("DanglingRecords = %d, want 1", report.DanglingRecords)
	}
	if _, err := db.GetMediaByID(ctx, rec.ID); err == nil {
		t.Error("dangling record survived sweep")
	}
	if _, err := os.Stat(goneThumbPath); !os.IsNotExist(err) {
		t.Error("dangling record's thumbnail survived sweep")
	}
}

func TestRunOnceRespectsGraceWindow(t *testing.T) {
	st, db := newTestEnv(t)
	ctx := context.Background()

	// A fresh unreferenced file may be an upload mid-commit.
	freshPath := storeFile(t, st, "images-videos", "inflight.png", "new")

	s := New(db, st, time.Hour, time.Hour)
	report, err := s.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if report.OrphanFiles != 0 {
		t.Errorf("OrphanFiles = %d, want 0 inside grace window", report.OrphanFiles)
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Error("fresh file was swept inside grace window")
	}
}

func TestRunOnceEmptyStore(t *testing.T) {
	st, db := newTestEnv(t)

	s := New(db, st, time.Hour, 0)
	report, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if report != (Report{}) {
		t.Errorf("report = %+v, want zero", report)
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	st, db := newTestEnv(t)

	s := New(db, st, 10*time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after context cancel")
	}
}
