// Package trap lets feature code assert that an operation raises an OS signal without the
// signal ending the process.
//
// A guarded block runs exactly once. If it raises the signal that is being trapped, control
// returns to the caller of Wraps as if the block had completed, and the process-wide trapped
// counter goes up by one:
//
//	before := trap.TrappedCount()
//	trap.Wraps(syscall.SIGABRT, func() {
//		result.Unwrap() // aborts on misuse
//	})
//	require.Equal(t, before+1, trap.TrappedCount())
//
// The trap state is process global and not re-entrant. Only one goroutine may use it at a time.
package trap

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Outcome tells how a guarded block ended.
type Outcome int

const (
	// CompletedNormally means the block returned without raising the trapped signal.
	CompletedNormally Outcome = iota
	// TrappedSignal means the block raised the trapped signal and was unwound.
	TrappedSignal
)

func (o Outcome) String() string {
	switch o {
	case CompletedNormally:
		return "completed normally"
	case TrappedSignal:
		return "trapped signal"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// mismatchExitCode is used when a signal other than the trapped one is raised inside a
// guarded block. It matches exit(-1).
const mismatchExitCode = -1

// killGrace is how long Raise waits for an untrapped signal to end the process before
// falling back to a plain exit.
const killGrace = 2 * time.Second

type state struct {
	signal   syscall.Signal
	attempts int
	notify   chan os.Signal
}

// unwind is the panic value used to leave a guarded block once its signal has been handled.
type unwind struct {
	signal syscall.Signal
}

var (
	current  state
	trapped  uint64
	exitHook func()
)

// OnExit registers f to run before Raise ends the process, so that resources owned by the
// process can still be released. A later call replaces the earlier hook.
func OnExit(f func()) {
	exitHook = f
}

// Wraps runs block once with sig trapped.
//
// A signal raised with Raise unwinds the block at once. The trapped signal may also arrive
// from elsewhere, such as a kill from another process; the block then runs to its end and
// the signal is counted when it returns.
func Wraps(sig syscall.Signal, block func()) Outcome {
	outcome := CompletedNormally
	enter(sig)
	defer exit()
	for isPending() {
		if guard(block) || caught() {
			outcome = TrappedSignal
		}
	}
	return outcome
}

// TrappedCount returns how many signals have been trapped by this process so far. It never
// decreases.
func TrappedCount() uint64 {
	return atomic.LoadUint64(&trapped)
}

// Active reports whether a guarded block is running, and for which signal.
func Active() (syscall.Signal, bool) {
	return current.signal, current.signal != 0
}

// Raise delivers sig to the current process.
//
// Inside a block guarded for sig, the signal is caught and the block is unwound. Inside a
// block guarded for another signal, the process exits immediately with status 255. Outside of
// any guarded block the signal gets its default disposition, which normally ends the process.
func Raise(sig syscall.Signal) {
	flush()
	switch {
	case current.signal == 0:
		die(sig)
	case current.signal != sig:
		terminate(mismatchExitCode)
	}
	if err := unix.Kill(unix.Getpid(), sig); err != nil {
		fmt.Fprintf(os.Stderr, "trap: unable to raise %s: %s\n", unix.SignalName(sig), err)
		terminate(mismatchExitCode)
	}
	handle(<-current.notify)
}

// Abort raises SIGABRT.
func Abort() {
	Raise(syscall.SIGABRT)
}

// Terminate reports a contract violation on stderr, naming the caller's location, and aborts.
func Terminate(format string, args ...interface{}) {
	if _, file, line, ok := runtime.Caller(1); ok {
		fmt.Fprintf(os.Stderr, "\nAt %s:%d\n", file, line)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", fmt.Sprintf(format, args...))
	Abort()
}

func enter(sig syscall.Signal) {
	flush()
	if current.signal != 0 {
		panic(fmt.Sprintf("trap: Wraps(%s) called while %s is already trapped",
			unix.SignalName(sig), unix.SignalName(current.signal)))
	}
	current.signal = sig
	current.attempts = 1
	current.notify = make(chan os.Signal, 1)
	signal.Notify(current.notify, sig)
}

func isPending() bool {
	pending := current.attempts != 0
	current.attempts--
	return pending
}

func exit() {
	flush()
	if current.notify != nil {
		signal.Stop(current.notify)
	}
	current = state{}
}

// guard runs block and reports whether it was unwound by a trapped signal.
func guard(block func()) (unwound bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(unwind); ok {
				unwound = true
				return
			}
			panic(r)
		}
	}()
	block()
	return false
}

// caught takes a signal that reached the process while block ran without going through
// Raise, for instance one sent by another process. The block could not be unwound at the
// point of delivery, but the signal still counts as trapped.
func caught() bool {
	select {
	case delivered := <-current.notify:
		flush()
		if delivered != current.signal {
			terminate(mismatchExitCode)
		}
		atomic.AddUint64(&trapped, 1)
		return true
	default:
		return false
	}
}

func handle(delivered os.Signal) {
	flush()
	if delivered != current.signal {
		terminate(mismatchExitCode)
	}
	atomic.AddUint64(&trapped, 1)
	signal.Stop(current.notify)
	panic(unwind{signal: current.signal})
}

func die(sig syscall.Signal) {
	runExitHook()
	signal.Reset(sig)
	_ = unix.Kill(unix.Getpid(), sig)
	time.Sleep(killGrace)
	os.Exit(128 + int(sig))
}

func terminate(code int) {
	runExitHook()
	os.Exit(code)
}

func runExitHook() {
	if hook := exitHook; hook != nil {
		exitHook = nil
		hook()
	}
}

// flush pushes stdout through before control flow changes. Stdout is unbuffered in Go, so this
// only matters when it is a regular file.
func flush() {
	_ = os.Stdout.Sync()
}
