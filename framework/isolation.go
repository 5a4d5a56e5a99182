package framework

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ResourceError means the harness itself could not do its job, for instance because a pipe
// or a process could not be created. It is never a feature failure.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("unable to %s: %s", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// IsolationRunner executes each feature in a fresh copy of the current program.
//
// The copy is told which feature to run through its environment, and is expected to call
// ServeFeature (Main does this). Its stderr is captured; its stdout goes to the runner's
// stdout so that progress and feature output stay interleaved.
type IsolationRunner struct {
	executable string
	args       []string
	env        []string
	stdout     io.Writer
	debug      DebugMode
	logger     Logger
}

type RunnerOption func(*IsolationRunner)

// WithExecutable runs features with the given program and arguments instead of re-running
// the current executable.
func WithExecutable(path string, args ...string) RunnerOption {
	return func(r *IsolationRunner) {
		r.executable = path
		r.args = args
	}
}

// WithEnv sets the base environment of feature processes. It defaults to os.Environ().
func WithEnv(env []string) RunnerOption {
	return func(r *IsolationRunner) { r.env = env }
}

func WithStdout(w io.Writer) RunnerOption {
	return func(r *IsolationRunner) { r.stdout = w }
}

// WithDebugMode tells feature processes when to write the output of T.Debug.
func WithDebugMode(mode DebugMode) RunnerOption {
	return func(r *IsolationRunner) { r.debug = mode }
}

func WithRunnerLogger(logger Logger) RunnerOption {
	return func(r *IsolationRunner) { r.logger = logger }
}

func NewIsolationRunner(opts ...RunnerOption) (*IsolationRunner, error) {
	r := &IsolationRunner{
		env:    os.Environ(),
		stdout: os.Stdout,
		logger: NullLogger(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.executable == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, &ResourceError{Op: "locate the test program", Err: err}
		}
		r.executable = exe
	}
	if r.logger == nil {
		r.logger = NullLogger()
	}
	return r, nil
}

// RunFeature executes one feature in its own process and waits for it to end. The process's
// diagnostic output is left in buf, which is cleared first.
//
// A feature that crashes or exits with a nonzero status is a Failed outcome, not an error. An
// error is returned only when the process could not be run at all.
func (r *IsolationRunner) RunFeature(id FeatureID, feature *Feature, buf *CaptureBuffer) (Outcome, error) {
	buf.Clear()

	pr, pw, err := os.Pipe()
	if err != nil {
		return Outcome{}, &ResourceError{Op: "create pipe", Err: err}
	}

	cmd := exec.Command(r.executable, r.args...)
	cmd.Env = r.featureEnv(id, feature)
	cmd.Stdout = r.stdout
	cmd.Stderr = pw

	startTime := time.Now()
	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return Outcome{}, &ResourceError{Op: "start feature process", Err: err}
	}
	r.logger.Printf("Started process %d for %s", cmd.Process.Pid, id)

	// Only the child may hold the write end now, so the read below ends when the child does.
	_ = pw.Close()
	_, readErr := buf.ReadFrom(pr)
	_ = pr.Close()

	waitErr := cmd.Wait()
	duration := time.Since(startTime)
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return Outcome{}, &ResourceError{Op: "wait for feature process", Err: waitErr}
		}
	}
	if readErr != nil {
		return Outcome{}, &ResourceError{Op: "read feature output", Err: readErr}
	}

	outcome := classify(cmd.ProcessState)
	outcome.Output = buf.String()
	outcome.Dropped = buf.Dropped()
	outcome.Duration = duration
	r.logger.Printf("Process %d for %s ended: %s (%s)", cmd.Process.Pid, id, cmd.ProcessState, outcome.Duration)
	return outcome, nil
}

func (r *IsolationRunner) featureEnv(id FeatureID, feature *Feature) []string {
	env := make([]string, 0, len(r.env)+3)
	for _, kv := range r.env {
		if !hasEnvName(kv, traitEnvVar, featureEnvVar, debugEnvVar) {
			env = append(env, kv)
		}
	}
	env = append(env,
		traitEnvVar+"="+id.Trait(),
		featureEnvVar+"="+feature.Name,
	)
	if r.debug != DebugNone {
		env = append(env, debugEnvVar+"="+r.debug.String())
	}
	return env
}

func hasEnvName(kv string, names ...string) bool {
	for _, name := range names {
		if len(kv) > len(name) && kv[:len(name)] == name && kv[len(name)] == '=' {
			return true
		}
	}
	return false
}

func classify(state *os.ProcessState) Outcome {
	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		if state.Success() {
			return Outcome{Result: Succeeded, ExitCode: ldvalue.NewOptionalInt(0)}
		}
		return Outcome{Result: Failed, ExitCode: ldvalue.NewOptionalInt(state.ExitCode())}
	}
	switch {
	case status.Signaled():
		return Outcome{Result: Failed, Signal: status.Signal()}
	case status.Exited() && status.ExitStatus() == 0:
		return Outcome{Result: Succeeded, ExitCode: ldvalue.NewOptionalInt(0)}
	case status.Exited():
		return Outcome{Result: Failed, ExitCode: ldvalue.NewOptionalInt(status.ExitStatus())}
	default:
		return Outcome{Result: Failed}
	}
}
