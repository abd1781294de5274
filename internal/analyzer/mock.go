package analyzer

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the analysis results.
type MockDetector struct {
	mu      sync.Mutex
	results []*Result
	err     error
	calls   int
	closed  bool
}

// NewMockDetector creates a new MockDetector that reports no object.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult makes every call to Analyze return r.
func (m *MockDetector) SetResult(r *Result) {
	m.SetResults(r)
}

// SetResults queues results returned one per call; the last one repeats.
func (m *MockDetector) SetResults(results ...*Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = results
}

// SetError sets the error that will be returned by Analyze.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Analyze returns the next pre-configured result or error.
func (m *MockDetector) Analyze(frame *gocv.Mat) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.results) == 0 {
		return &Result{}, nil
	}

	r := m.results[0]
	if len(m.results) > 1 {
		m.results = m.results[1:]
	}
	return r, nil
}

// Calls returns how many times Analyze was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the mock closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
