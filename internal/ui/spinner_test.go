package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_PlainPrintsOnlyFinalLine(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Fetching communities", false)
	assert.Equal(t, SpinnerPending, s.State())

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	assert.Empty(t, buf.String())

	s.Success()
	assert.Equal(t, SpinnerSuccess, s.State())
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, SymbolSuccess+" Fetching communities "))
	assert.True(t, strings.HasSuffix(out, "s\n"))
}

func TestSpinner_AnimatedRedrawsThenFinishes(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Fetching", true)

	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.SetLabel("Fetching again")
	s.Fail()

	out := buf.String()
	assert.GreaterOrEqual(t, strings.Count(out, "\r"), 2)
	assert.Contains(t, out, "Fetching...")
	assert.Contains(t, out, SymbolFail+" Fetching again")
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Equal(t, SpinnerFailed, s.State())
}

func TestSpinner_FinishIsIdempotent(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "x", true)

	s.Success()
	assert.Empty(t, buf.String())

	s.Start()
	s.Start()
	s.Success()
	s.Fail()
	assert.Equal(t, SpinnerSuccess, s.State())
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.05s", formatDuration(50*time.Millisecond))
	assert.Equal(t, "1.2s", formatDuration(1200*time.Millisecond))
}
