// Package mediatypes classifies uploaded media and resolves HTTP content
// types for stored files.
//
// Classification happens once, at ingestion time, from the client-declared
// MIME type. Everything downstream switches on the resulting Kind instead
// of re-inspecting MIME strings.
package mediatypes
