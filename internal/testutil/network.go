package testutil

import (
	"context"
	"sync"

	"reportsync/internal/report"
)

// StubMonitor is a ConnectivityMonitor whose state is set by the test.
type StubMonitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)
}

// NewStubMonitor creates a monitor in the given initial state.
func NewStubMonitor(online bool) *StubMonitor {
	return &StubMonitor{
		online: online,
		subs:   make(map[int]func(online bool)),
	}
}

func (m *StubMonitor) IsOnline(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline changes the state and notifies subscribers on a transition.
func (m *StubMonitor) SetOnline(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	var fns []func(bool)
	if changed {
		for _, fn := range m.subs {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

func (m *StubMonitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

var _ report.ConnectivityMonitor = (*StubMonitor)(nil)
