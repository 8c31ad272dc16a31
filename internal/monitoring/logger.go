package monitoring

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// AsyncLogger formats diagnostic lines on the caller and writes them from a
// background goroutine. When the buffer is full the line is dropped so that
// the race control loop never waits on the log writer.
type AsyncLogger struct {
	out     *log.Logger
	lines   chan string
	dropped atomic.Uint64
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
}

// NewAsyncLogger starts a writer goroutine feeding out. A buffer below one is
// treated as one.
func NewAsyncLogger(out *log.Logger, buffer int) *AsyncLogger {
	if buffer < 1 {
		buffer = 1
	}
	a := &AsyncLogger{
		out:   out,
		lines: make(chan string, buffer),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncLogger) run() {
	defer close(a.done)
	for line := range a.lines {
		a.out.Print(line)
	}
}

// Logf enqueues a formatted line. It matches the signature of SetLogger.
func (a *AsyncLogger) Logf(format string, v ...interface{}) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.dropped.Add(1)
		return
	}
	select {
	case a.lines <- fmt.Sprintf(format, v...):
	default:
		a.dropped.Add(1)
	}
}

// Dropped reports how many lines were discarded because the buffer was full
// or the logger was closed.
func (a *AsyncLogger) Dropped() uint64 {
	return a.dropped.Load()
}

// Close stops accepting lines and waits for the queued ones to be written.
func (a *AsyncLogger) Close() {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.lines)
		a.mu.Unlock()
		<-a.done
		if n := a.dropped.Load(); n > 0 {
			a.out.Printf("diagnostic log dropped %d lines", n)
		}
	})
}
