// Package metrics defines the Prometheus collectors for the media server.
// All collectors are registered at init via promauto and served by the
// dedicated metrics listener started in main.
package metrics
