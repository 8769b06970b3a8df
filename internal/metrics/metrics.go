// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// The Prometheus implementation backs /metrics; the in-memory one backs tests.
type Recorder interface {
	// Identity metrics
	IncUserSynced()
	IncIdentityCacheHit()
	IncIdentityCacheMiss()

	// Entry metrics
	IncEntryCreated()
	IncEntryUpdated()

	// HTTP metrics
	IncRateLimited()
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
