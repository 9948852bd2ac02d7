// Package handlers implements the HTTP API: media upload, catalog
// listing, range-aware streaming, thumbnail serving, and deletion.
package handlers
