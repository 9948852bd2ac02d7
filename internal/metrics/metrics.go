package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserver_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homeserver_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeserver_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserver_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homeserver_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeserver_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Ingestion metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserver_uploads_total",
			Help: "Total number of upload requests by outcome",
		},
		[]string{"status"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeserver_upload_bytes_total",
			Help: "Total bytes of accepted upload payloads",
		},
	)

	ThumbnailsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserver_thumbnails_generated_total",
			Help: "Total thumbnail generation attempts by media kind and outcome",
		},
		[]string{"kind", "status"},
	)

	ThumbnailDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homeserver_thumbnail_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)
)

// Streaming metrics
var (
	StreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserver_streams_total",
			Help: "Total number of stream/download requests by outcome",
		},
		[]string{"status"},
	)

	StreamBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeserver_stream_bytes_total",
			Help: "Total bytes served by the streaming endpoints",
		},
	)

	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeserver_active_streams",
			Help: "Number of in-flight media streams",
		},
	)
)

// Deletion metrics
var (
	DeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserver_deletes_total",
			Help: "Total number of delete requests by outcome",
		},
		[]string{"status"},
	)
)

// Sweeper metrics
var (
	SweeperRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeserver_sweeper_runs_total",
			Help: "Total number of reconciliation sweeps",
		},
	)

	SweeperOrphanFilesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeserver_sweeper_orphan_files_removed_total",
			Help: "Files removed because no catalog record references them",
		},
	)

	SweeperDanglingRecordsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeserver_sweeper_dangling_records_removed_total",
			Help: "Catalog records removed because their backing file is gone",
		},
	)

	SweeperLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeserver_sweeper_last_run_timestamp",
			Help: "Timestamp of the last reconciliation sweep",
		},
	)

	SweeperLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeserver_sweeper_last_run_duration_seconds",
			Help: "Duration of the last reconciliation sweep in seconds",
		},
	)
)
