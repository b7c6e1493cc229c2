package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64

	renewAttempts    int64
	renewSuccesses   int64
	renewFailures    int64
	renewSharedWaits int64
	lastRenewAt      time.Time
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordRenewAttempt counts a renewal network call actually issued.
func (m *Metrics) RecordRenewAttempt() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renewAttempts++
	m.lastRenewAt = time.Now()
}

// RecordRenewOutcome counts how a renewal network call ended.
func (m *Metrics) RecordRenewOutcome(success bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.renewSuccesses++
	} else {
		m.renewFailures++
	}
}

// RecordRenewSharedWait counts a caller that joined an in-flight renewal
// instead of issuing its own.
func (m *Metrics) RecordRenewSharedWait() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renewSharedWaits++
}

// RenewStats returns renewal counters for introspection.
func (m *Metrics) RenewStats() (attempts, successes, failures, sharedWaits int64) {
	if m == nil {
		return 0, 0, 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renewAttempts, m.renewSuccesses, m.renewFailures, m.renewSharedWaits
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
