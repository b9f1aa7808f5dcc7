package metrics

import (
	"fmt"
	"sync"
)

// Recorder is the minimal metrics surface components depend on.
type Recorder interface {
	// RecordOperation counts an operation with its outcome (success, error).
	RecordOperation(operation, status string)

	// RecordDuration observes how long an operation took, in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError counts a failure by category.
	RecordError(operation, errorType string)
}

// ResponseRecorder is implemented by recorders that also count raw HTTP
// responses by status code.
type ResponseRecorder interface {
	RecordResponse(method string, statusCode int)
}

// NoopRecorder discards everything. Used when metrics are disabled.
type NoopRecorder struct{}

func (NoopRecorder) RecordOperation(string, string) {}
func (NoopRecorder) RecordDuration(string, float64) {}
func (NoopRecorder) RecordError(string, string) {}

// TestRecorder captures recorded values for assertions in tests.
type TestRecorder struct {
	mu         sync.RWMutex
	operations map[string]map[string]int // operation -> status -> count
	durations  map[string][]float64
	errors     map[string]map[string]int // operation -> errorType -> count
	responses  map[string]int            // "METHOD code" -> count
}

// NewTestRecorder creates an empty TestRecorder.
func NewTestRecorder() *TestRecorder {
	return &TestRecorder{
		operations: make(map[string]map[string]int),
		durations:  make(map[string][]float64),
		errors:     make(map[string]map[string]int),
		responses:  make(map[string]int),
	}
}

func (r *TestRecorder) RecordOperation(operation, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.operations[operation] == nil {
		r.operations[operation] = make(map[string]int)
	}
	r.operations[operation][status]++
}

func (r *TestRecorder) RecordDuration(operation string, seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[operation] = append(r.durations[operation], seconds)
}

func (r *TestRecorder) RecordError(operation, errorType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errors[operation] == nil {
		r.errors[operation] = make(map[string]int)
	}
	r.errors[operation][errorType]++
}

// OperationCount returns how often operation finished with status.
func (r *TestRecorder) OperationCount(operation, status string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.operations[operation][status]
}

// DurationCount returns how many durations were observed for operation.
func (r *TestRecorder) DurationCount(operation string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.durations[operation])
}

// ErrorCount returns how often operation failed with errorType.
func (r *TestRecorder) ErrorCount(operation, errorType string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.errors[operation][errorType]
}

func (r *TestRecorder) RecordResponse(method string, statusCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[fmt.Sprintf("%s %d", method, statusCode)]++
}

// ResponseCount returns how many responses were recorded for method and code.
func (r *TestRecorder) ResponseCount(method string, statusCode int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.responses[fmt.Sprintf("%s %d", method, statusCode)]
}
