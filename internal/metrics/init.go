package metrics

// InitializeMetrics pre-populates the expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"success", "error"} {
		UploadsTotal.WithLabelValues(status)
	}

	for _, kind := range []string{"image", "video", "movie", "series"} {
		ThumbnailsGenerated.WithLabelValues(kind, "success")
		ThumbnailsGenerated.WithLabelValues(kind, "error")
		ThumbnailDuration.WithLabelValues(kind)
	}

	for _, status := range []string{"success", "partial", "not_found", "invalid_range", "aborted", "error"} {
		StreamsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"success", "not_found", "error"} {
		DeletesTotal.WithLabelValues(status)
	}

	for _, op := range []string{"create_media", "get_media", "list_media", "delete_media", "stats"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
