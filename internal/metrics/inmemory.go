package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	KeysGenerated       uint64
	KeysRenamed         uint64
	KeysRevoked         uint64
	ValidationsValid    uint64
	ValidationsInvalid  uint64
	ValidationCacheHits uint64
	ValidationCacheMiss uint64
	ReadmeFetches       map[string]uint64
	Summaries           map[string]uint64
	HTTPRequests        uint64
	HTTPDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	keysGenerated       uint64
	keysRenamed         uint64
	keysRevoked         uint64
	validationsValid    uint64
	validationsInvalid  uint64
	validationCacheHits uint64
	validationCacheMiss uint64
	httpRequests        uint64
	httpDurationTotalNs int64

	mu            sync.Mutex
	readmeFetches map[string]uint64
	summaries     map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		readmeFetches: make(map[string]uint64),
		summaries:     make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	fetches := make(map[string]uint64, len(m.readmeFetches))
	for k, v := range m.readmeFetches {
		fetches[k] = v
	}
	summaries := make(map[string]uint64, len(m.summaries))
	for k, v := range m.summaries {
		summaries[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		KeysGenerated:       atomic.LoadUint64(&m.keysGenerated),
		KeysRenamed:         atomic.LoadUint64(&m.keysRenamed),
		KeysRevoked:         atomic.LoadUint64(&m.keysRevoked),
		ValidationsValid:    atomic.LoadUint64(&m.validationsValid),
		ValidationsInvalid:  atomic.LoadUint64(&m.validationsInvalid),
		ValidationCacheHits: atomic.LoadUint64(&m.validationCacheHits),
		ValidationCacheMiss: atomic.LoadUint64(&m.validationCacheMiss),
		ReadmeFetches:       fetches,
		Summaries:           summaries,
		HTTPRequests:        atomic.LoadUint64(&m.httpRequests),
		HTTPDurationTotalNs: atomic.LoadInt64(&m.httpDurationTotalNs),
	}
}

// IncKeyGenerated increments the generated key counter.
func (m *InMemoryRecorder) IncKeyGenerated() {
	atomic.AddUint64(&m.keysGenerated, 1)
}

// IncKeyRenamed increments the renamed key counter.
func (m *InMemoryRecorder) IncKeyRenamed() {
	atomic.AddUint64(&m.keysRenamed, 1)
}

// IncKeyRevoked increments the revoked key counter.
func (m *InMemoryRecorder) IncKeyRevoked() {
	atomic.AddUint64(&m.keysRevoked, 1)
}

// IncKeyValidation counts a validation outcome.
func (m *InMemoryRecorder) IncKeyValidation(valid bool) {
	if valid {
		atomic.AddUint64(&m.validationsValid, 1)
		return
	}
	atomic.AddUint64(&m.validationsInvalid, 1)
}

// IncValidationCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncValidationCacheHit() {
	atomic.AddUint64(&m.validationCacheHits, 1)
}

// IncValidationCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncValidationCacheMiss() {
	atomic.AddUint64(&m.validationCacheMiss, 1)
}

// ObserveReadmeFetch counts a README fetch by status.
func (m *InMemoryRecorder) ObserveReadmeFetch(status string, _ time.Duration) {
	m.mu.Lock()
	m.readmeFetches[status]++
	m.mu.Unlock()
}

// ObserveSummarize counts a model call by provider and status, keyed "provider/status".
func (m *InMemoryRecorder) ObserveSummarize(provider, status string, _ time.Duration) {
	m.mu.Lock()
	m.summaries[provider+"/"+status]++
	m.mu.Unlock()
}

// ObserveHTTPRequest records request count and duration.
func (m *InMemoryRecorder) ObserveHTTPRequest(_, _ string, _ int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
	atomic.AddInt64(&m.httpDurationTotalNs, duration.Nanoseconds())
}
