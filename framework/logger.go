package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger is the minimal logging interface used by the harness. *log.Logger satisfies it.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

// DebugMessage is one line of a feature's debug output, stamped with the time since the
// feature started.
type DebugMessage struct {
	Elapsed time.Duration
	Message string
}

type DebugOutput []DebugMessage

// CapturingLogger keeps a feature's debug messages in memory until the feature ends, when
// the run's DebugMode decides whether they are shown.
type CapturingLogger struct {
	started  time.Time
	messages []DebugMessage
	lock     sync.Mutex
}

func newCapturingLogger() *CapturingLogger {
	return &CapturingLogger{started: time.Now()}
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.started.IsZero() {
		l.started = time.Now()
	}
	l.messages = append(l.messages, DebugMessage{
		Elapsed: time.Since(l.started),
		Message: fmt.Sprintf(message, args...),
	})
}

func (l *CapturingLogger) Output() DebugOutput {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append(DebugOutput(nil), l.messages...)
}

// Dump writes one line per message, each starting with prefix.
func (output DebugOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[+%s] %s\n", prefix, m.Elapsed.Round(time.Microsecond), m.Message)
	}
}
