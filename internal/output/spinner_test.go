package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf)
	sp.Start("Loading...")
	time.Sleep(200 * time.Millisecond)
	sp.Stop()

	require.Contains(t, buf.String(), "Loading...")
}

func TestSpinnerStopIdempotent(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf)
	sp.Start("test")
	time.Sleep(100 * time.Millisecond)

	sp.Stop()
	sp.Stop()
	sp.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	NewSpinner(&buf).Stop()
	require.Empty(t, buf.String())
}

func TestSpinnerProgress(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf)
	sp.Start("Collecting changes")
	time.Sleep(150 * time.Millisecond)
	sp.Progress(3, 7, "trailing-whitespace")
	time.Sleep(150 * time.Millisecond)
	sp.Stop()

	out := buf.String()
	require.Contains(t, out, "Collecting changes")
	require.Contains(t, out, "Running check 3/7: trailing-whitespace")
}

func TestSpinnerConcurrentUpdate(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf)
	sp.Start("start")

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			sp.Update("msg")
		})
	}
	wg.Wait()
	sp.Stop()
}

func TestSpinnerClearsLine(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf)
	sp.Start("working")
	time.Sleep(100 * time.Millisecond)
	sp.Stop()

	require.True(t, strings.HasSuffix(buf.String(), "\r"), "expected spinner to clear its line")
}
