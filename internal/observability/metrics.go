package observability

import "sync"

// Metrics provides basic in-memory counters for a pipeline run.
type Metrics struct {
	mu              sync.Mutex
	ticketsIn       int64
	transformed     int64
	transformErrors int64
	deliveries      map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		deliveries: make(map[string]int64),
	}
}

// RecordTicketsIn adds to the count of tickets entering the pipeline.
func (m *Metrics) RecordTicketsIn(n int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticketsIn += int64(n)
}

// RecordTransform counts one normalization attempt.
func (m *Metrics) RecordTransform(ok bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.transformed++
	} else {
		m.transformErrors++
	}
}

// RecordDelivery counts one delivery outcome by status.
func (m *Metrics) RecordDelivery(status string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[status]++
}

// Snapshot returns current counter values.
func (m *Metrics) Snapshot() (ticketsIn, transformed, transformErrors int64, deliveries map[string]int64) {
	if m == nil {
		return 0, 0, 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.deliveries))
	for k, v := range m.deliveries {
		out[k] = v
	}
	return m.ticketsIn, m.transformed, m.transformErrors, out
}
