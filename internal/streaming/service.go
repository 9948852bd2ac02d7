package streaming

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"homeserver/internal/logging"
	"homeserver/internal/metrics"
)

// Streamer serves files from disk with range semantics and timeout
// protection. A single Streamer is shared by all requests.
type Streamer struct {
	config TimeoutWriterConfig
}

func NewStreamer(config TimeoutWriterConfig) *Streamer {
	return &Streamer{config: config}
}

// ServeFile writes the file at path to the response, honoring a single
// byte range if the request carries one. It writes its own error
// responses: 404 when the file is missing from disk and 416 with
// "Content-Range: bytes */<size>" when the range cannot be satisfied.
func (s *Streamer) ServeFile(w http.ResponseWriter, r *http.Request, path, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			metrics.StreamsTotal.WithLabelValues("not_found").Inc()
			http.Error(w, "media file not found", http.StatusNotFound)
			return
		}
		metrics.StreamsTotal.WithLabelValues("error").Inc()
		logging.Error("Failed to open %s: %v", path, err)
		http.Error(w, "failed to open media file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		metrics.StreamsTotal.WithLabelValues("error").Inc()
		logging.Error("Failed to stat %s: %v", path, err)
		http.Error(w, "failed to read media file", http.StatusInternalServerError)
		return
	}
	size := info.Size()

	rng, err := ParseRange(r.Header.Get("Range"), size)
	if err != nil {
		metrics.StreamsTotal.WithLabelValues("invalid_range").Inc()
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")

	var reader io.Reader = f
	length := size
	status := http.StatusOK

	if rng != nil {
		if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
			metrics.StreamsTotal.WithLabelValues("error").Inc()
			logging.Error("Failed to seek %s to %d: %v", path, rng.Start, err)
			http.Error(w, "failed to read media file", http.StatusInternalServerError)
			return
		}
		length = rng.Length()
		reader = io.LimitReader(f, length)
		w.Header().Set("Content-Range", rng.ContentRange(size))
		status = http.StatusPartialContent
	}

	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		metrics.StreamsTotal.WithLabelValues("success").Inc()
		return
	}

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	tw := NewTimeoutWriter(r.Context(), w, s.config)
	defer tw.Close()

	_, copyErr := io.Copy(tw, reader)

	bytesWritten, duration := tw.Stats()
	metrics.StreamBytesTotal.Add(float64(bytesWritten))

	switch {
	case copyErr == nil && rng != nil:
		metrics.StreamsTotal.WithLabelValues("partial").Inc()
	case copyErr == nil:
		metrics.StreamsTotal.WithLabelValues("success").Inc()
	case errors.Is(copyErr, ErrClientGone),
		errors.Is(copyErr, ErrWriteTimeout),
		errors.Is(copyErr, ErrStreamCanceled):
		metrics.StreamsTotal.WithLabelValues("aborted").Inc()
		logging.Debug("Stream of %s aborted after %d bytes in %v: %v", path, bytesWritten, duration, copyErr)
	default:
		metrics.StreamsTotal.WithLabelValues("error").Inc()
		logging.Error("Stream of %s failed after %d bytes: %v", path, bytesWritten, copyErr)
	}
}
