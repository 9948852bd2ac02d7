// Package workers calculates worker pool sizes based on available CPU
// resources, respecting container CPU limits via GOMAXPROCS.
package workers
