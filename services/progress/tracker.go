// Package progress counts operations that should show a busy indicator.
package progress

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Tracker is an explicit replacement for a shared global progress bar.
// The zero value is ready to use.
type Tracker struct {
	mu     sync.Mutex
	active int
	gauge  prometheus.Gauge
}

// NewTracker returns a tracker mirroring its count into gauge, which may be nil.
func NewTracker(gauge prometheus.Gauge) *Tracker {
	return &Tracker{gauge: gauge}
}

func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active++
	t.publish()
}

// Done ends one operation. Unbalanced calls never drive the count below zero.
func (t *Tracker) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == 0 {
		return
	}
	t.active--
	t.publish()
}

func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tracker) Busy() bool {
	return t.Active() > 0
}

func (t *Tracker) publish() {
	if t.gauge != nil {
		t.gauge.Set(float64(t.active))
	}
}
