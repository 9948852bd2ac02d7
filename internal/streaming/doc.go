// Package streaming serves stored media over HTTP with byte-range
// support and slow-client protection.
//
// Range handling follows RFC 7233 for single byte ranges: a valid range
// yields 206 with a Content-Range header, an absent header yields a
// plain 200, and anything unsatisfiable (including multi-range and
// non-bytes units, which this server does not serve) yields 416 with
// "Content-Range: bytes */<size>".
//
// Writes go through a TimeoutWriter that bounds individual write time,
// aborts idle connections, and distinguishes client disconnects from
// server-side failures via sentinel errors.
package streaming
