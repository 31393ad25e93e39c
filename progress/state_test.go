package progress

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func int64Ptr(n int64) *int64 { return &n }

func TestState_Deltas(t *testing.T) {
	s := &State{
		count:          250,
		startCount:     50,
		now:            t0.Add(90 * time.Second),
		startedAt:      t0,
		lastFiredAt:    t0.Add(60 * time.Second),
		lastFiredCount: 200,
	}

	assert.Equal(t, int64(50), s.CountDelta())
	assert.Equal(t, 90*time.Second, s.TimeTotal())
	assert.Equal(t, 30*time.Second, s.TimeDelta())

	rate, ok := s.ShortRate()
	require.True(t, ok)
	assert.InDelta(t, 50.0/30, rate, 1e-9)

	rate, ok = s.LongRate()
	require.True(t, ok)
	assert.InDelta(t, 200.0/90, rate, 1e-9)

	_, ok = s.Max()
	assert.False(t, ok)
}

func TestState_ETA(t *testing.T) {
	s := &State{
		count:          40,
		now:            t0.Add(40 * time.Second),
		startedAt:      t0,
		lastFiredAt:    t0.Add(30 * time.Second),
		lastFiredCount: 20,
		max:            int64Ptr(100),
	}

	// short: 20 in 10s = 2/s, 60 left
	eta, ok, err := s.ShortETA()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, eta)

	// long: 40 in 40s = 1/s, 60 left
	eta, ok, err = s.LongETA()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 60*time.Second, eta)
}

func TestState_ETAPastMaxIsNegative(t *testing.T) {
	s := &State{
		count:       120,
		now:         t0.Add(120 * time.Second),
		startedAt:   t0,
		lastFiredAt: t0,
		max:         int64Ptr(100),
	}
	eta, ok, err := s.LongETA()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, -20*time.Second, eta)
}

func TestState_ETAWithoutMaxFailsEvenWhenUndefined(t *testing.T) {
	s := &State{count: 1, now: t0, startedAt: t0, lastFiredAt: t0}

	_, ok, err := s.ShortETA()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoMax)

	_, ok, err = s.LongETA()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoMax)
}

func TestState_UndefinedShortRateOnly(t *testing.T) {
	s := &State{
		count:          2,
		now:            t0.Add(time.Second),
		startedAt:      t0,
		lastFiredAt:    t0.Add(time.Second),
		lastFiredCount: 1,
		max:            int64Ptr(10),
	}
	_, ok := s.ShortRate()
	assert.False(t, ok)
	_, ok, err := s.ShortETA()
	assert.NoError(t, err)
	assert.False(t, ok)

	rate, ok := s.LongRate()
	assert.True(t, ok)
	assert.InDelta(t, 2.0, rate, 1e-9)
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "none", Reason(0).String())
	assert.Equal(t, "step", ReasonStep.String())
	assert.Equal(t, "interval", ReasonInterval.String())
	assert.Equal(t, "step+interval", (ReasonStep | ReasonInterval).String())
}

func TestSecondsToDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, secondsToDuration(1.5))
	assert.Equal(t, 300*time.Millisecond, secondsToDuration(0.3))
	assert.Equal(t, time.Duration(math.MaxInt64), secondsToDuration(1e10))
	assert.Equal(t, time.Duration(math.MaxInt64), secondsToDuration(math.Inf(1)))
	assert.Equal(t, time.Duration(math.MinInt64), secondsToDuration(math.Inf(-1)))
	assert.Equal(t, time.Duration(0), secondsToDuration(math.NaN()))
	assert.Equal(t, 2*time.Second, Duration(2))
}

func TestNewEvent(t *testing.T) {
	s := &State{
		count:          20,
		now:            t0.Add(119 * time.Second),
		startedAt:      t0,
		lastFiredAt:    t0.Add(109 * time.Second),
		lastFiredCount: 10,
		max:            int64Ptr(100),
		reason:         ReasonStep,
	}
	e := NewEvent(s)

	assert.Equal(t, s.Now(), e.Timestamp)
	assert.Equal(t, "step", e.Reason)
	assert.Equal(t, int64(20), e.Count)
	assert.Equal(t, int64(10), e.CountDelta)
	assert.Equal(t, int64(100), e.Max)
	assert.InDelta(t, 20.0, e.Percent, 1e-9)
	assert.InDelta(t, 119.0, e.TimeTotal, 1e-9)
	assert.InDelta(t, 10.0, e.TimeDelta, 1e-9)
	require.NotNil(t, e.ShortRate)
	assert.InDelta(t, 1.0, *e.ShortRate, 1e-9)
	require.NotNil(t, e.LongRate)
	assert.InDelta(t, 20.0/119, *e.LongRate, 1e-9)
	require.NotNil(t, e.ShortETA)
	assert.InDelta(t, 80.0, *e.ShortETA, 1e-6)
	require.NotNil(t, e.LongETA)
	assert.InDelta(t, 476.0, *e.LongETA, 1e-6)
}

func TestNewEvent_OmitsUndefinedValues(t *testing.T) {
	s := &State{count: 1, now: t0, startedAt: t0, lastFiredAt: t0, reason: ReasonStep}
	e := NewEvent(s)

	assert.Nil(t, e.ShortRate)
	assert.Nil(t, e.LongRate)
	assert.Nil(t, e.ShortETA)
	assert.Nil(t, e.LongETA)
	assert.Zero(t, e.Max)

	data, err := json.Marshal(e)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"shortRate", "longRate", "shortEta", "longEta", "max", "percent", "final", "name"} {
		assert.NotContains(t, raw, key)
	}
	assert.Equal(t, "step", raw["reason"])
	assert.Equal(t, float64(1), raw["count"])
}

type captureReporter struct {
	events []Event
}

func (c *captureReporter) Report(event Event) {
	c.events = append(c.events, event)
}

func TestReportTo(t *testing.T) {
	a, b := &captureReporter{}, &captureReporter{}
	action := ReportNamed("rows", a, b)

	s := &State{count: 5, now: t0, startedAt: t0, lastFiredAt: t0, reason: ReasonInterval}
	require.NoError(t, action(s))

	for _, r := range []*captureReporter{a, b} {
		require.Len(t, r.events, 1)
		assert.Equal(t, "rows", r.events[0].Name)
		assert.Equal(t, "interval", r.events[0].Reason)
		assert.Equal(t, int64(5), r.events[0].Count)
	}

	require.NoError(t, ReportTo(a)(s))
	assert.Equal(t, "", a.events[1].Name)
}
