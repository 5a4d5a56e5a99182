package framework

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// T is passed to the body of a running feature. It is used like *testing.T: it implements
// require.TestingT, so the assert and require packages can be used with it directly.
//
// A T only exists inside a feature process. Errorf writes the failure to the process's
// diagnostic stream at once, so the message survives even if the feature later crashes.
// FailNow ends the process, running the fixture teardown first.
type T struct {
	id          FeatureID
	context     interface{}
	debugLogger *CapturingLogger
	debug       DebugMode
	failed      bool
	diagnostics io.Writer
	process     *featureProcess
}

func newT(id FeatureID, context interface{}, debug DebugMode, process *featureProcess) *T {
	return &T{
		id:          id,
		context:     context,
		debugLogger: newCapturingLogger(),
		debug:       debug,
		diagnostics: os.Stderr,
		process:     process,
	}
}

// DebugMode says when a feature's debug output is shown.
type DebugMode int

const (
	DebugNone DebugMode = iota
	DebugOnFailure
	DebugAll
)

func (m DebugMode) String() string {
	switch m {
	case DebugOnFailure:
		return "failure"
	case DebugAll:
		return "all"
	default:
		return "none"
	}
}

func parseDebugMode(s string) DebugMode {
	switch s {
	case "failure":
		return DebugOnFailure
	case "all":
		return DebugAll
	default:
		return DebugNone
	}
}

func (m DebugMode) shows(failed bool) bool {
	return m == DebugAll || (m == DebugOnFailure && failed)
}

func (t *T) ID() FeatureID {
	return t.id
}

func (t *T) Name() string {
	return t.id.String()
}

// Context returns the value produced by the feature's fixture setup.
func (t *T) Context() interface{} {
	return t.context
}

// Errorf records a failure without stopping the feature.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	for _, line := range strings.Split(strings.TrimRight(fmt.Sprintf(format, args...), "\n"), "\n") {
		fmt.Fprintf(t.diagnostics, "  %s\n", line)
	}
}

// Fail marks the feature as failed without stopping it.
func (t *T) Fail() {
	t.failed = true
}

// FailNow marks the feature as failed and ends its process.
func (t *T) FailNow() {
	t.failed = true
	t.finish()
}

// Cleanup registers a function to be called when the feature's process ends, however it ends
// short of being killed. Cleanups run in reverse order, before the fixture teardown.
func (t *T) Cleanup(f func()) {
	t.process.atExit(f)
}

func (t *T) Failed() bool {
	return t.failed
}

// Helper is a no-op; it lets assertion libraries that look for it treat T like *testing.T.
func (t *T) Helper() {}

// Debug logs some debug output for the feature. Depending on the run's DebugMode, the output
// is written to the diagnostic stream when the feature ends.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

func (t *T) DebugLogger() Logger {
	return t.debugLogger
}

// finish dumps the debug output if needed and ends the process with the feature's status.
func (t *T) finish() {
	if output := t.debugLogger.Output(); len(output) > 0 && t.debug.shows(t.failed) {
		output.Dump(t.diagnostics, "    DEBUG ")
	}
	if t.failed {
		t.process.exit(1)
	}
	t.process.exit(0)
}
