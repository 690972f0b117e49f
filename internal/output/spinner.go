package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner displays an animated braille spinner on a writer (typically
// stderr) while checks run. Update may be called from any goroutine.
type Spinner struct {
	mu       sync.Mutex
	w        io.Writer
	message  string
	widest   int
	done     chan struct{}
	finished chan struct{}
	running  bool
}

// NewSpinner creates a spinner that writes to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{w: w}
}

// Start begins the spinner animation with the given message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.setMessage(message)
		return
	}
	s.setMessage(message)
	s.done = make(chan struct{})
	s.finished = make(chan struct{})
	s.running = true
	go s.loop(s.done, s.finished)
}

// Update changes the displayed message while the spinner is running.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.setMessage(message)
	s.mu.Unlock()
}

// Progress adapts the spinner to a check runner's progress callback.
func (s *Spinner) Progress(index, total int, name string) {
	s.Update(fmt.Sprintf("Running check %d/%d: %s", index, total, name))
}

// Stop halts the spinner and clears its line. It is idempotent.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	finished := s.finished
	s.mu.Unlock()

	<-finished

	s.mu.Lock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.widest+2))
	s.mu.Unlock()
}

func (s *Spinner) setMessage(message string) {
	s.message = message
	s.widest = max(s.widest, len([]rune(message)))
}

func (s *Spinner) loop(done <-chan struct{}, finished chan<- struct{}) {
	defer close(finished)
	tick := time.NewTicker(80 * time.Millisecond)
	defer tick.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		frame := spinnerFrames[i%len(spinnerFrames)]
		// Pad to overwrite leftovers from a longer previous message.
		fmt.Fprintf(s.w, "\r%c %-*s", frame, s.widest, s.message)
		s.mu.Unlock()

		select {
		case <-done:
			return
		case <-tick.C:
		}
	}
}
