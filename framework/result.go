package framework

import (
	"fmt"
	"strings"
	"syscall"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Result classifies a single feature.
type Result int

const (
	Succeeded Result = iota
	Skipped
	Failed
	Pending
)

func (r Result) String() string {
	switch r {
	case Succeeded:
		return "succeed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	case Pending:
		return "todo"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Outcome describes how a feature's process ended.
type Outcome struct {
	Result Result
	// ExitCode is defined when the process exited on its own.
	ExitCode ldvalue.OptionalInt
	// Signal is nonzero when the process was killed by a signal.
	Signal syscall.Signal
	// Output is the captured diagnostic stream of the process.
	Output string
	// Dropped counts diagnostic bytes that did not fit in the capture buffer.
	Dropped  int64
	Duration time.Duration
}

// Signaled reports whether the process was terminated by an uncaught signal.
func (o Outcome) Signaled() bool {
	return o.Signal != 0
}

// TraitResult holds per-result counters for a trait, or for a whole run.
type TraitResult struct {
	Succeed int
	Skipped int
	Failed  int
	Todo    int
	All     int
}

func (t *TraitResult) Add(r Result) {
	switch r {
	case Succeeded:
		t.Succeed++
	case Skipped:
		t.Skipped++
	case Failed:
		t.Failed++
	case Pending:
		t.Todo++
	default:
		panic(fmt.Sprintf("unexpected feature result %d", int(r)))
	}
	t.All++
}

func (t *TraitResult) Merge(other TraitResult) {
	t.Succeed += other.Succeed
	t.Skipped += other.Skipped
	t.Failed += other.Failed
	t.Todo += other.Todo
	t.All += other.All
}

type Results struct {
	Traits   []TraitReport
	Features []FeatureReport
	Failures []FeatureReport
	Totals   TraitResult
}

type TraitReport struct {
	Name   string
	Counts TraitResult
}

type FeatureReport struct {
	ID      FeatureID
	Outcome Outcome
	// Reason is set for features that were not executed.
	Reason string
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

func (r *Results) record(report FeatureReport) {
	r.Features = append(r.Features, report)
	if report.Outcome.Result == Failed {
		r.Failures = append(r.Failures, report)
	}
}

type FeatureID struct {
	Path []string
}

func NewFeatureID(trait, feature string) FeatureID {
	return FeatureID{Path: []string{trait, feature}}
}

func (id FeatureID) Trait() string {
	if len(id.Path) == 0 {
		return ""
	}
	return id.Path[0]
}

func (id FeatureID) Feature() string {
	if len(id.Path) < 2 {
		return ""
	}
	return id.Path[len(id.Path)-1]
}

func (id FeatureID) String() string {
	return strings.Join(id.Path, "/")
}

// FeatureFailure describes one failed feature as an error.
type FeatureFailure struct {
	ID      FeatureID
	Outcome Outcome
}

func (f FeatureFailure) Error() string {
	var how string
	switch {
	case f.Outcome.Signaled():
		how = fmt.Sprintf("terminated by signal %d", int(f.Outcome.Signal))
	case f.Outcome.ExitCode.IsDefined():
		how = fmt.Sprintf("exit status %d", f.Outcome.ExitCode.IntValue())
	default:
		how = "failed"
	}
	return fmt.Sprintf("[%s]: %s after %s", f.ID, how, f.Outcome.Duration.Round(time.Millisecond))
}

// FeatureFailures is the error returned by Results.Err.
type FeatureFailures []FeatureFailure

func (f FeatureFailures) Error() string {
	messages := make([]string, len(f))
	for i, failure := range f {
		messages[i] = failure.Error()
	}
	return fmt.Sprintf("%d feature(s) failed: %s", len(f), strings.Join(messages, "; "))
}

// Err returns nil if no feature failed, or a FeatureFailures listing them in execution order.
func (r Results) Err() error {
	if r.OK() {
		return nil
	}
	failures := make(FeatureFailures, len(r.Failures))
	for i, f := range r.Failures {
		failures[i] = FeatureFailure{ID: f.ID, Outcome: f.Outcome}
	}
	return failures
}
