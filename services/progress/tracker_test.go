package progress

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerCounts(t *testing.T) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_in_progress"})
	tr := NewTracker(g)

	tr.Start()
	tr.Start()
	assert.Equal(t, 2, tr.Active())
	assert.Equal(t, 2.0, testutil.ToFloat64(g))

	tr.Done()
	tr.Done()
	tr.Done()
	assert.False(t, tr.Busy())
	assert.Equal(t, 0.0, testutil.ToFloat64(g))
}

func TestTrackerConcurrent(t *testing.T) {
	var tr Tracker
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Start()
			tr.Done()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, tr.Active())
}
