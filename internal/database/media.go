package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const mediaColumns = "id, name, kind, path, thumbnail, size, category, uploaded_at"

// CreateMedia inserts a new catalog row. The record's ID and UploadedAt are
// assigned here: ids are random UUIDs and are never reused, the timestamp is
// the store's clock at commit time. The passed record is updated in place.
func (d *Database) CreateMedia(ctx context.Context, rec *MediaRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_media", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rec.ID = uuid.New().String()
	rec.UploadedAt = time.Now().UTC().Truncate(time.Second)

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO media (id, name, kind, path, thumbnail, size, category, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, rec.Kind, rec.Path, nullable(rec.Thumbnail), rec.Size, rec.Category, rec.UploadedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert media record: %w", err)
	}
	return nil
}

// GetMediaByID retrieves a single catalog row.
func (d *Database) GetMediaByID(ctx context.Context, id string) (*MediaRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_media", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, "SELECT "+mediaColumns+" FROM media WHERE id = ?", id)
	rec, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query media record: %w", err)
	}
	return rec, nil
}

// ListMedia returns catalog rows newest first. Both filters are optional:
// category restricts to one storage partition, search matches a name
// substring case-insensitively.
func (d *Database) ListMedia(ctx context.Context, category, search string) ([]MediaRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_media", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := "SELECT " + mediaColumns + " FROM media"
	var args []interface{}
	var where []string

	if category != "" {
		where = append(where, "category = ?")
		args = append(args, category)
	}
	if search != "" {
		where = append(where, `name LIKE ? ESCAPE '\' COLLATE NOCASE`)
		args = append(args, "%"+escapeLike(search)+"%")
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY uploaded_at DESC, id"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list media records: %w", err)
	}
	defer rows.Close()

	records := []MediaRecord{}
	for rows.Next() {
		rec, scanErr := scanMedia(rows)
		if scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("failed to scan media record: %w", err)
		}
		records = append(records, *rec)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate media records: %w", err)
	}
	return records, nil
}

// DeleteMedia removes a catalog row. Deleting an id that no longer exists
// reports ErrNotFound so a repeated delete surfaces as a 404, not success.
func (d *Database) DeleteMedia(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_media", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx, "DELETE FROM media WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}

// Stats returns catalog counts for health reporting.
func (d *Database) Stats(ctx context.Context) (CatalogStats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var stats CatalogStats
	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN kind = 'image' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN kind IN ('video', 'movie', 'series') THEN 1 ELSE 0 END), 0)
		FROM media
	`).Scan(&stats.TotalItems, &stats.TotalImages, &stats.TotalVideos)
	if err != nil {
		return CatalogStats{}, fmt.Errorf("failed to query catalog stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMedia(row rowScanner) (*MediaRecord, error) {
	var rec MediaRecord
	var thumbnail sql.NullString
	var uploadedAt int64

	err := row.Scan(&rec.ID, &rec.Name, &rec.Kind, &rec.Path, &thumbnail, &rec.Size, &rec.Category, &uploadedAt)
	if err != nil {
		return nil, err
	}

	rec.Thumbnail = thumbnail.String
	rec.UploadedAt = time.Unix(uploadedAt, 0).UTC()
	return &rec, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// escapeLike escapes LIKE wildcards in user-supplied search terms so they
// match literally under ESCAPE '\'.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\\' || r == '%' || r == '_' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
