// Package score keeps the encounter score.
package score

import (
	"log/slog"
	"sync"
)

// Listener is notified after every change with the new total and the applied delta.
// The applied delta may differ from the requested one when the total is clamped at zero.
type Listener func(total, delta int)

// Ledger is the score counter shared by every ship of an encounter.
// All mutation is serialized, so concurrent AddScore calls sum exactly.
type Ledger struct {
	mu        sync.Mutex
	total     int
	listeners []Listener
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// AddScore adds delta and returns the new total. The total never goes below zero.
func (l *Ledger) AddScore(delta int) int {
	l.mu.Lock()
	prev := l.total
	l.total = max(prev+delta, 0)
	total := l.total
	listeners := l.listeners
	l.mu.Unlock()

	applied := total - prev
	if applied != 0 {
		notify(listeners, total, applied)
	}
	return total
}

// Set overwrites the total (clamped at zero). Used when restoring a save.
func (l *Ledger) Set(total int) {
	l.mu.Lock()
	prev := l.total
	l.total = max(total, 0)
	total = l.total
	listeners := l.listeners
	l.mu.Unlock()

	if total != prev {
		notify(listeners, total, total-prev)
	}
}

// Reset zeroes the total.
func (l *Ledger) Reset() {
	l.Set(0)
}

// Total returns current score
func (l *Ledger) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// OnChange registers a listener. Listeners run outside the lock, in registration order.
func (l *Ledger) OnChange(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Copy-on-write so notify can iterate a snapshot without holding the lock.
	next := make([]Listener, len(l.listeners), len(l.listeners)+1)
	copy(next, l.listeners)
	l.listeners = append(next, fn)
}

func notify(listeners []Listener, total, delta int) {
	for _, fn := range listeners {
		fn(total, delta)
	}
	slog.Debug("score changed", "total", total, "delta", delta)
}
