// Package ingest runs the upload pipeline: persist the file into a
// category directory, generate a preview, and commit a catalog record.
// The file write is the only fatal step; a failed preview leaves the
// record without a thumbnail, and a failed commit rolls back the stored
// artifacts so nothing is left on disk without a record pointing at it.
package ingest
