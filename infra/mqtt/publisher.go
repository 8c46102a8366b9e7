package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/pvsim/core/engine"
)

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Reports  map[string]engine.DayReport
	FailDays map[string]bool
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Reports:  make(map[string]engine.DayReport),
		FailDays: make(map[string]bool),
	}
}

// PublishDay records the report or returns an error if configured to fail.
func (m *MockPublisher) PublishDay(_ context.Context, runID string, rep engine.DayReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDays[rep.Day] {
		return fmt.Errorf("publish failed")
	}
	m.Reports[runID+"/"+rep.Day] = rep
	return nil
}

// Count returns the number of recorded reports.
func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Reports)
}
