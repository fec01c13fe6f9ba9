// Package netmon answers "is the network currently usable" by probing a
// well-known endpoint, and turns probe results into a subscription-based
// change signal.
package netmon

import (
	"context"
	"net/http"
	"sync"
	"time"

	"reportsync/internal/report"
)

// Checker reports current connectivity.
type Checker interface {
	IsOnline(ctx context.Context) bool
}

// ProbeChecker answers by issuing a HEAD request against a probe URL.
// Any HTTP response counts as online, whatever the status: a reachable
// endpoint that answers oddly still means the network is usable, and
// treating undetermined reachability as offline causes false negatives.
type ProbeChecker struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewProbeChecker creates a checker probing url with the given per-probe
// timeout. client may be nil for http.DefaultClient.
func NewProbeChecker(url string, timeout time.Duration, client *http.Client) *ProbeChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ProbeChecker{url: url, timeout: timeout, client: client}
}

func (c *ProbeChecker) IsOnline(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url, nil)
	if err != nil {
		return false
	}
	res, err := c.client.Do(req)
	if err != nil {
		return false
	}
	res.Body.Close()
	return true
}

// Monitor wraps a Checker into the report.ConnectivityMonitor contract:
// point-in-time checks plus change subscriptions fed by a polling loop.
type Monitor struct {
	checker  Checker
	interval time.Duration

	mu     sync.Mutex
	subs   map[int]func(online bool)
	nextID int
	online bool
	stop   chan struct{}
	done   chan struct{}
}

var _ report.ConnectivityMonitor = (*Monitor)(nil)

// NewMonitor creates a monitor polling the checker at the given interval.
// The polling loop starts with Start and only drives subscriptions;
// IsOnline always probes live.
func NewMonitor(checker Checker, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{
		checker:  checker,
		interval: interval,
		subs:     make(map[int]func(bool)),
	}
}

func (m *Monitor) IsOnline(ctx context.Context) bool {
	return m.checker.IsOnline(ctx)
}

// Subscribe registers fn for connectivity transitions. The returned
// function cancels the subscription. Callbacks fire from the polling
// goroutine; keep them short.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
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

// Start launches the polling loop. It runs until Stop is called or ctx is
// cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.online = m.checker.IsOnline(ctx)
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				m.poll(ctx)
			}
		}
	}()
}

// Stop terminates the polling loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// poll performs one check and notifies subscribers on transition.
func (m *Monitor) poll(ctx context.Context) {
	online := m.checker.IsOnline(ctx)

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	var fns []func(bool)
	if changed {
		fns = make([]func(bool), 0, len(m.subs))
		for _, fn := range m.subs {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}
