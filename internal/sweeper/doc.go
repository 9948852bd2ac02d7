// Package sweeper periodically reconciles the content store with the
// catalog. It removes files on disk that no record points at, deletes
// records whose file has disappeared, and clears thumbnail images that
// no record references. Recently written files are left alone so a
// sweep never races an in-flight upload.
package sweeper
