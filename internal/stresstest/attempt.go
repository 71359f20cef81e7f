package stresstest

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Attempt is the outcome of a single request: success with an elapsed
// time, or failure with the error that ended it
type Attempt struct {
	Index      int // 0-based dispatch index
	Start      time.Time
	Elapsed    time.Duration
	StatusCode int // 0 when no response was received
	Err        error
}

// OK reports whether the attempt produced a response
func (a Attempt) OK() bool {
	return a.Err == nil
}

// ElapsedMs returns the elapsed time in fractional milliseconds
func (a Attempt) ElapsedMs() float64 {
	return float64(a.Elapsed) / float64(time.Millisecond)
}

// Observer is notified as each attempt completes. AttemptDone may be
// called from several goroutines at once.
type Observer interface {
	AttemptDone(a Attempt)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(a Attempt)

// AttemptDone calls f(a)
func (f ObserverFunc) AttemptDone(a Attempt) {
	f(a)
}

// ProgressPrinter writes one line per completed attempt
type ProgressPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewProgressPrinter creates a printer writing to out
func NewProgressPrinter(out io.Writer) *ProgressPrinter {
	return &ProgressPrinter{out: out}
}

// AttemptDone prints the request number (1-based) with its latency or error
func (p *ProgressPrinter) AttemptDone(a Attempt) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if a.OK() {
		fmt.Fprintf(p.out, "Request %d: %.2f ms\n", a.Index+1, a.ElapsedMs())
		return
	}
	fmt.Fprintf(p.out, "Error in request %d: %v\n", a.Index+1, a.Err)
}
