package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersSynced         uint64
	IdentityCacheHits   uint64
	IdentityCacheMisses uint64
	EntriesCreated      uint64
	EntriesUpdated      uint64
	RateLimited         uint64
	HTTPRequests        uint64
	HTTPServerErrors    uint64
	HTTPDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersSynced         uint64
	identityCacheHits   uint64
	identityCacheMisses uint64
	entriesCreated      uint64
	entriesUpdated      uint64
	rateLimited         uint64
	httpRequests        uint64
	httpServerErrors    uint64
	httpDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersSynced:         atomic.LoadUint64(&m.usersSynced),
		IdentityCacheHits:   atomic.LoadUint64(&m.identityCacheHits),
		IdentityCacheMisses: atomic.LoadUint64(&m.identityCacheMisses),
		EntriesCreated:      atomic.LoadUint64(&m.entriesCreated),
		EntriesUpdated:      atomic.LoadUint64(&m.entriesUpdated),
		RateLimited:         atomic.LoadUint64(&m.rateLimited),
		HTTPRequests:        atomic.LoadUint64(&m.httpRequests),
		HTTPServerErrors:    atomic.LoadUint64(&m.httpServerErrors),
		HTTPDurationTotalNs: atomic.LoadInt64(&m.httpDurationTotalNs),
	}
}

// IncUserSynced increments the synced user counter.
func (m *InMemoryRecorder) IncUserSynced() {
	atomic.AddUint64(&m.usersSynced, 1)
}

// IncIdentityCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncIdentityCacheHit() {
	atomic.AddUint64(&m.identityCacheHits, 1)
}

// IncIdentityCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncIdentityCacheMiss() {
	atomic.AddUint64(&m.identityCacheMisses, 1)
}

// IncEntryCreated increments entry created counter.
func (m *InMemoryRecorder) IncEntryCreated() {
	atomic.AddUint64(&m.entriesCreated, 1)
}

// IncEntryUpdated increments entry updated counter.
func (m *InMemoryRecorder) IncEntryUpdated() {
	atomic.AddUint64(&m.entriesUpdated, 1)
}

// IncRateLimited increments the rejected request counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// ObserveHTTPRequest records one served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&m.httpServerErrors, 1)
	}
	atomic.AddInt64(&m.httpDurationTotalNs, duration.Nanoseconds())
}
