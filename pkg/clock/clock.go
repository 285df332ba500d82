// Package clock samples wall-clock time in a fixed display timezone and
// publishes the samples on a fixed cadence.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts time so timers and tickers can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	NewTicker(d time.Duration) Ticker
}

// Timer is a cancellable scheduled call.
type Timer interface {
	// Stop cancels the call. It reports whether the call was still pending.
	Stop() bool
}

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real uses the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

func (Real) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Mock is a manually advanced Clock. Timers scheduled through it fire
// synchronously inside Advance, in deadline order.
type Mock struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	timers  []*mockTimer
	tickers []*mockTicker
}

// NewMock creates a mock clock starting at start.
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &mockTimer{mock: m, at: m.now.Add(d), seq: m.seq, fn: f}
	m.timers = append(m.timers, t)
	return t
}

func (m *Mock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTicker{mock: m, every: d, next: m.now.Add(d), ch: make(chan time.Time, 1)}
	m.tickers = append(m.tickers, t)
	return t
}

// Pending returns the number of timers that have not fired or been stopped.
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, firing due timers and tickers.
// Tick delivery is non-blocking: a slow reader sees at most one buffered tick.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		due := m.nextDueLocked(target)
		if due == nil {
			m.now = target
			m.fireTickersLocked()
			m.mu.Unlock()
			return
		}
		m.now = due.at
		m.fireTickersLocked()
		m.removeLocked(due)
		m.mu.Unlock()

		due.fn()
	}
}

func (m *Mock) nextDueLocked(target time.Time) *mockTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	if m.timers[0].at.After(target) {
		return nil
	}
	return m.timers[0]
}

func (m *Mock) fireTickersLocked() {
	for _, t := range m.tickers {
		for !t.next.After(m.now) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.every)
		}
	}
}

func (m *Mock) removeLocked(t *mockTimer) bool {
	for i, candidate := range m.timers {
		if candidate == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}

type mockTimer struct {
	mock *Mock
	at   time.Time
	seq  int
	fn   func()
}

func (t *mockTimer) Stop() bool {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()
	return t.mock.removeLocked(t)
}

type mockTicker struct {
	mock  *Mock
	every time.Duration
	next  time.Time
	ch    chan time.Time
}

func (t *mockTicker) C() <-chan time.Time { return t.ch }

func (t *mockTicker) Stop() {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()
	for i, candidate := range t.mock.tickers {
		if candidate == t {
			t.mock.tickers = append(t.mock.tickers[:i], t.mock.tickers[i+1:]...)
			return
		}
	}
}
