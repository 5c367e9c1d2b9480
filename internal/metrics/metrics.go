// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels shared by recorders.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusQuota   = "quota"
	StatusParse   = "parse_error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Key management metrics
	IncKeyGenerated()
	IncKeyRenamed()
	IncKeyRevoked()

	// Validation metrics
	IncKeyValidation(valid bool)
	IncValidationCacheHit()
	IncValidationCacheMiss()

	// Summarizer metrics
	ObserveReadmeFetch(status string, duration time.Duration)
	ObserveSummarize(provider, status string, duration time.Duration)

	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
