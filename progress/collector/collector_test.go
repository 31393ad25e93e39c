package collector

import (
	"sync"
	"testing"
	"time"

	"github.com/kornysietsma/progress-logger/progress"
	"github.com/kornysietsma/progress-logger/progress/progresstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_UniqueIDs(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		c := New()
		assert.False(t, seen[c.ID()], "duplicate id %d", c.ID())
		seen[c.ID()] = true
	}
}

func TestCollector_ForwardsInOrder(t *testing.T) {
	c := New()
	for i := 1; i <= 10; i++ {
		c.Report(progress.Event{Count: int64(i)})
	}
	for i := 1; i <= 10; i++ {
		select {
		case e := <-c.CollectChannel():
			assert.Equal(t, int64(i), e.Count)
		default:
			t.Fatalf("expected event %d", i)
		}
	}
	assert.Zero(t, c.Dropped())
}

func TestCollector_DropsWhenFull(t *testing.T) {
	c := NewWithBuffer(5)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			c.Report(progress.Event{Count: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Report blocked on a full buffer")
	}
	assert.Len(t, c.CollectChannel(), 5)
	assert.Equal(t, uint64(15), c.Dropped())
}

func TestNewWithBuffer_MinimumSize(t *testing.T) {
	c := NewWithBuffer(0)
	c.Report(progress.Event{Count: 1})
	c.Report(progress.Event{Count: 2})
	assert.Equal(t, 1, cap(c.CollectChannel()))
	assert.Equal(t, uint64(1), c.Dropped())
}

type recordingReporter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recordingReporter) Report(event progress.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func TestCollector_WithProgressAndLogger(t *testing.T) {
	col := New()
	rec := &recordingReporter{}
	prog, err := progress.NewProgress(
		progress.WithCollectors(col),
		progress.WithReporters(rec),
	)
	require.NoError(t, err)

	clock := progresstest.NewClock()
	l, err := progress.New(progress.ReportTo(col), progress.WithSeconds(10), progress.WithClock(clock))
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		clock.AdvanceSeconds(1)
		require.NoError(t, l.Trigger())
	}
	prog.Close()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	// first trigger at t=1, then firings at t=12, 23, 34, 45, 56
	require.Len(t, rec.events, 5)
	for _, e := range rec.events {
		assert.Equal(t, "interval", e.Reason)
		assert.InDelta(t, 11.0, e.TimeDelta, 1e-9)
	}
}
