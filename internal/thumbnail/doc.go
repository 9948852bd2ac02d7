// Package thumbnail generates JPEG preview images for stored media.
//
// Images are decoded with libvips when available (falling back to pure-Go
// decoders), videos have a representative frame extracted with ffmpeg, and
// every preview is resized to 400x300 with a center crop and encoded as
// JPEG quality 80. Previews are written atomically into the store's
// thumbnail directory and referenced by a logical filename.
package thumbnail
