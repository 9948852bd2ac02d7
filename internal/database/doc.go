// Package database manages the media catalog in SQLite.
//
// The catalog holds one row per uploaded item. Rows are created by the
// ingestion pipeline after the original file is durably on disk, never
// mutated, and removed only by the deletion flow. The stored filesystem
// path is internal state and is excluded from JSON projections.
package database
