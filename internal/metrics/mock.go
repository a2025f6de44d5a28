package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	resultsProcessed int
	deltasApplied    int
	deltasSuppressed int
	updateDurations  []float64
	importRuns       int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		updateDurations: make([]float64, 0),
	}
}

func (m *Mock) IncResultsProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsProcessed++
}

func (m *Mock) IncDeltasApplied() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deltasApplied++
}

func (m *Mock) IncDeltasSuppressed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deltasSuppressed++
}

func (m *Mock) ObserveUpdateDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateDurations = append(m.updateDurations, duration)
}

func (m *Mock) IncImportRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importRuns++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ResultsProcessed returns the recorded counter value.
func (m *Mock) ResultsProcessed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsProcessed
}

// DeltasApplied returns the recorded counter value.
func (m *Mock) DeltasApplied() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deltasApplied
}

// DeltasSuppressed returns the recorded counter value.
func (m *Mock) DeltasSuppressed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deltasSuppressed
}

// ImportRuns returns the recorded counter value.
func (m *Mock) ImportRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.importRuns
}

// MockStore is an in-memory MetricsStore for testing.
type MockStore struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewMockStore creates a new in-memory MetricsStore.
func NewMockStore() *MockStore {
	return &MockStore{counters: make(map[string]int)}
}

func (m *MockStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
}

func (m *MockStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out, nil
}
