package output

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar_Steps(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(ProgressBarConfig{Title: "Importing", Total: 4, Width: 8, NoColor: true, Writer: &buf})

	bar.Step(true)
	assert.Contains(t, buf.String(), "Importing [██░░░░░░] 1/4")

	bar.Step(false)
	bar.Step(true)
	bar.Step(true)
	bar.Step(true)

	out := buf.String()
	assert.Contains(t, out, "4/4")
	assert.Contains(t, out, "(1 failed)")
	assert.NotContains(t, out, "5/4")

	bar.Finish()
	bar.Finish()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestProgressBar_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(ProgressBarConfig{Total: 0, Writer: &buf})

	bar.Step(true)
	assert.Empty(t, buf.String())
}

func TestProgressBar_ConcurrentSteps(t *testing.T) {
	bar := NewProgressBar(ProgressBarConfig{Total: 50, NoColor: true})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bar.Step(true)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, bar.current)
}

func TestSpinner_StartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Loading diff", true)

	s.Start()
	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Update("Still loading")
	s.Stop()
	s.Stop()

	assert.Contains(t, buf.String(), "Loading diff")
	assert.False(t, s.active)
}

func TestSpinner_NilWriter(t *testing.T) {
	s := NewSpinner(nil, "quiet", true)
	s.Start()
	s.Stop()
	assert.False(t, s.active)
}
