package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler_FiresInOrder(t *testing.T) {
	start := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	m := NewManualScheduler(start)

	var log []string
	m.Every(10*time.Millisecond, func(time.Time) { log = append(log, "a") })
	m.Every(25*time.Millisecond, func(time.Time) { log = append(log, "b") })

	m.Advance(30 * time.Millisecond)

	assert.Equal(t, []string{"a", "a", "b", "a"}, log)
	assert.Equal(t, start.Add(30*time.Millisecond), m.Now())
	assert.Equal(t, 4, m.Fired())
}

func TestManualScheduler_StopInsideCallback(t *testing.T) {
	m := NewManualScheduler(time.Time{})

	calls := 0
	var stop func()
	stop = m.Every(time.Millisecond, func(time.Time) {
		calls++
		if calls == 3 {
			stop()
		}
	})

	m.Advance(time.Second)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, m.Active())
	assert.False(t, m.Step())
}

func TestManualScheduler_Step(t *testing.T) {
	start := time.Time{}
	m := NewManualScheduler(start)

	var seen []time.Time
	m.Every(20*time.Millisecond, func(now time.Time) { seen = append(seen, now) })

	assert.True(t, m.Step())
	assert.True(t, m.Step())
	assert.Equal(t, []time.Time{start.Add(20 * time.Millisecond), start.Add(40 * time.Millisecond)}, seen)
}
