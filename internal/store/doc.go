// Package store implements the on-disk content store for uploaded media.
//
// Layout under the configured media root:
//
//	<root>/<category>/<uuid><ext>   original files, one directory per category
//	<root>/thumbnails/<uuid>.jpg    derived thumbnail artifacts, flat
//
// Storage names are generated, never derived from client filenames, so two
// uploads can never collide and a client name can never traverse out of the
// root. Files are written to a temporary path and renamed into place, so a
// partially written original is never visible under its final name.
package store
