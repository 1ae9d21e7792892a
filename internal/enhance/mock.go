package enhance

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockEnhancer is an Enhancer for testing.
type MockEnhancer struct {
	Latency    time.Duration
	FailOn     string // image path that should fail (empty = never)
	ShouldFail bool

	mu    sync.Mutex
	calls []string
}

// NewMockEnhancer creates a mock enhancer.
func NewMockEnhancer() *MockEnhancer {
	return &MockEnhancer{}
}

// Name returns the enhancer identifier.
func (m *MockEnhancer) Name() string {
	return "mock-enhance"
}

// Enhance records the call and returns a derived path.
func (m *MockEnhancer) Enhance(ctx context.Context, imagePath string, task Task) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, imagePath)
	m.mu.Unlock()

	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.ShouldFail || (m.FailOn != "" && m.FailOn == imagePath) {
		return "", &Error{ImagePath: imagePath, Task: task, Err: fmt.Errorf("mock enhancer configured to fail")}
	}

	return imagePath + ".enhanced", nil
}

// Calls returns the image paths seen so far.
func (m *MockEnhancer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Verify interface
var _ Enhancer = (*MockEnhancer)(nil)
