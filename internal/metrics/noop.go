package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncKeyGenerated is a no-op.
func (n *NoopRecorder) IncKeyGenerated() {}

// IncKeyRenamed is a no-op.
func (n *NoopRecorder) IncKeyRenamed() {}

// IncKeyRevoked is a no-op.
func (n *NoopRecorder) IncKeyRevoked() {}

// IncKeyValidation is a no-op.
func (n *NoopRecorder) IncKeyValidation(valid bool) {}

// IncValidationCacheHit is a no-op.
func (n *NoopRecorder) IncValidationCacheHit() {}

// IncValidationCacheMiss is a no-op.
func (n *NoopRecorder) IncValidationCacheMiss() {}

// ObserveReadmeFetch is a no-op.
func (n *NoopRecorder) ObserveReadmeFetch(status string, duration time.Duration) {}

// ObserveSummarize is a no-op.
func (n *NoopRecorder) ObserveSummarize(provider, status string, duration time.Duration) {}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}
