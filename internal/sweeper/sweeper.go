package sweeper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"homeserver/internal/database"
	"homeserver/internal/logging"
	"homeserver/internal/metrics"
	"homeserver/internal/store"
	"homeserver/internal/workers"
)

// maxSweepWorkers caps concurrent file removals during a sweep.
const maxSweepWorkers = 8

// Report summarizes one reconciliation pass.
type Report struct {
	OrphanFiles      int
	OrphanThumbnails int
	DanglingRecords  int
}

type Sweeper struct {
	db       *database.Database
	store    *store.Store
	interval time.Duration
	grace    time.Duration
}

// New builds a sweeper. grace is the minimum age a file must reach
// before it can be considered orphaned; it must comfortably exceed the
// longest plausible upload.
func New(db *database.Database, st *store.Store, interval, grace time.Duration) *Sweeper {
	return &Sweeper{
		db:       db,
		store:    st,
		interval: interval,
		grace:    grace,
	}
}

// Start runs sweeps on the configured interval until ctx is canceled.
// The first sweep happens after one full interval so startup traffic
// settles first.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			report, err := s.RunOnce(ctx)
			if err != nil {
				logging.Error("Sweep failed: %v", err)
				continue
			}
			if report.OrphanFiles > 0 || report.OrphanThumbnails > 0 || report.DanglingRecords > 0 {
				logging.Info("Sweep removed %d orphan files, %d orphan thumbnails, %d dangling records",
					report.OrphanFiles, report.OrphanThumbnails, report.DanglingRecords)
			} else {
				logging.Debug("Sweep found nothing to reconcile")
			}
		case <-ctx.Done():
			logging.Debug("Sweeper stopping: %v", ctx.Err())
			return
		}
	}
}

// RunOnce performs a single reconciliation pass.
func (s *Sweeper) RunOnce(ctx context.Context) (Report, error) {
	start := time.Now()
	metrics.SweeperRunsTotal.Inc()
	defer func() {
		metrics.SweeperLastRunTimestamp.SetToCurrentTime()
		metrics.SweeperLastRunDuration.Set(time.Since(start).Seconds())
	}()

	records, err := s.db.ListMedia(ctx, "", "")
	if err != nil {
		return Report{}, fmt.Errorf("list catalog: %w", err)
	}

	knownPaths := make(map[string]bool, len(records))
	knownThumbs := make(map[string]bool, len(records))
	for _, rec := range records {
		knownPaths[rec.Path] = true
		if rec.Thumbnail != "" {
			knownThumbs[rec.Thumbnail] = true
		}
	}

	var report Report

	orphans, err := s.findOrphanFiles(knownPaths)
	if err != nil {
		return report, err
	}
	report.OrphanFiles = s.removeFiles(ctx, orphans)
	metrics.SweeperOrphanFilesRemoved.Add(float64(report.OrphanFiles))

	thumbOrphans, err := s.findOrphanThumbnails(knownThumbs)
	if err != nil {
		return report, err
	}
	report.OrphanThumbnails = s.removeFiles(ctx, thumbOrphans)
	metrics.SweeperOrphanFilesRemoved.Add(float64(report.OrphanThumbnails))

	dangling, err := s.removeDanglingRecords(ctx, records)
	if err != nil {
		return report, err
	}
	report.DanglingRecords = dangling
	metrics.SweeperDanglingRecordsRemoved.Add(float64(dangling))

	return report, nil
}

// findOrphanFiles collects files under category directories that no
// catalog record references and that are older than the grace window.
func (s *Sweeper) findOrphanFiles(known map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(s.store.Root())
	if err != nil {
		return nil, fmt.Errorf("read store root: %w", err)
	}

	cutoff := time.Now().Add(-s.grace)
	var orphans []string

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == store.ThumbnailDirName {
			continue
		}
		dir := filepath.Join(s.store.Root(), entry.Name())

		files, err := os.ReadDir(dir)
		if err != nil {
			logging.Warn("Sweep cannot read %s: %v", dir, err)
			continue
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			path := filepath.Join(dir, f.Name())
			if known[path] {
				continue
			}
			info, err := f.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			orphans = append(orphans, path)
		}
	}

	return orphans, nil
}

func (s *Sweeper) findOrphanThumbnails(known map[string]bool) ([]string, error) {
	dir := filepath.Join(s.store.Root(), store.ThumbnailDirName)
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read thumbnail dir: %w", err)
	}

	cutoff := time.Now().Add(-s.grace)
	var orphans []string

	for _, f := range files {
		if f.IsDir() || known[f.Name()] {
			continue
		}
		info, err := f.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		orphans = append(orphans, filepath.Join(dir, f.Name()))
	}

	return orphans, nil
}

// removeFiles deletes the given paths with a bounded worker pool and
// returns how many removals succeeded.
func (s *Sweeper) removeFiles(ctx context.Context, paths []string) int {
	if len(paths) == 0 {
		return 0
	}

	workerCount := workers.ForIO(maxSweepWorkers)
	sem := make(chan struct{}, workerCount)

	var wg sync.WaitGroup
	var mu sync.Mutex
	removed := 0

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(p string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.store.Remove(p); err != nil {
				logging.Warn("Sweep failed to remove %s: %v", p, err)
				return
			}
			logging.Debug("Sweep removed orphan %s", p)

			mu.Lock()
			removed++
			mu.Unlock()
		}(path)
	}

	wg.Wait()
	return removed
}

// removeDanglingRecords deletes catalog entries whose file is gone and
// cleans up any thumbnail they left behind.
func (s *Sweeper) removeDanglingRecords(ctx context.Context, records []database.MediaRecord) (int, error) {
	removed := 0

	for _, rec := range records {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}

		if _, err := os.Stat(rec.Path); !os.IsNotExist(err) {
			continue
		}

		if rec.Thumbnail != "" {
			if err := s.store.RemoveThumbnail(rec.Thumbnail); err != nil {
				logging.Warn("Sweep failed to remove thumbnail of %s: %v", rec.ID, err)
			}
		}

		if err := s.db.DeleteMedia(ctx, rec.ID); err != nil {
			logging.Warn("Sweep failed to delete dangling record %s: %v", rec.ID, err)
			continue
		}
		logging.Debug("Sweep deleted dangling record %s (%s)", rec.ID, rec.Name)
		removed++
	}

	return removed, nil
}
