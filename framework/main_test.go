package framework

import (
	"bytes"
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/traits-unit/traits-unit/framework/trap"

	"github.com/stretchr/testify/require"
)

// The test binary doubles as the test program: when the runner re-executes it for a feature,
// TestMain serves that feature instead of running the tests.
func TestMain(m *testing.M) {
	if InFeatureProcess() {
		ServeFeature(testSubject())
	}
	os.Exit(m.Run())
}

const (
	exitingFeatureStatus = 7
	floodSize            = 1000
)

var countingFixture = &Fixture{
	Setup: func() interface{} { return "fixture context" },
	Teardown: func(context interface{}) {
		fmt.Fprintf(os.Stderr, "teardown: %v\n", context)
	},
}

func testSubject() *Subject {
	return Describe("framework",
		NewTrait("outcomes",
			Run("succeeds", func(t *T) {
				fmt.Println("hello from feature")
			}),
			Run("aborts", func(t *T) {
				fmt.Fprintln(os.Stderr, "about to abort")
				trap.Abort()
			}),
			Run("exits", func(t *T) {
				fmt.Fprintln(os.Stderr, "exiting")
				os.Exit(exitingFeatureStatus)
			}),
			Run("panics", func(t *T) {
				panic("feature panic")
			}),
			Run("asserts", func(t *T) {
				require.Equal(t, 1, 2)
			}),
			Run("records error", func(t *T) {
				t.Errorf("soft failure")
				fmt.Fprintln(os.Stderr, "still running")
			}),
			Skip("skipped", func(t *T) {
				os.Exit(1)
			}),
			Todo("pending", nil),
		),
		NewTrait("fixtures",
			Run("context", func(t *T) {
				require.Equal(t, "fixture context", t.Context())
			}, countingFixture),
			Run("teardown after failure", func(t *T) {
				t.FailNow()
			}, countingFixture),
			Run("teardown after abort", func(t *T) {
				trap.Abort()
			}, countingFixture),
			Run("teardown after panic", func(t *T) {
				panic("boom")
			}, countingFixture),
			Run("cleanup order", func(t *T) {
				t.Cleanup(func() { fmt.Fprintln(os.Stderr, "cleanup") })
				t.FailNow()
			}, countingFixture),
			Run("no teardown after os.Exit", func(t *T) {
				fmt.Fprintln(os.Stderr, "exiting")
				os.Exit(exitingFeatureStatus)
			}, countingFixture),
		),
		NewTrait("capture",
			Run("first", func(t *T) {
				fmt.Fprint(os.Stderr, "first output")
				t.FailNow()
			}),
			Run("second", func(t *T) {
				fmt.Fprint(os.Stderr, "second")
				t.FailNow()
			}),
			Run("flood", func(t *T) {
				_, _ = os.Stderr.Write(bytes.Repeat([]byte("x"), floodSize))
				t.FailNow()
			}),
		),
		NewTrait("traps",
			Run("trapped abort", func(t *T) {
				before := trap.TrappedCount()
				trap.Wraps(syscall.SIGABRT, trap.Abort)
				require.Equal(t, before+1, trap.TrappedCount())
			}),
			Run("mismatched signal", func(t *T) {
				trap.Wraps(syscall.SIGABRT, func() {
					trap.Raise(syscall.SIGUSR1)
				})
			}),
		),
		NewTrait("debug",
			Run("debug output", func(t *T) {
				t.Debug("debug value %d", 42)
				t.FailNow()
			}),
		),
		NewTrait("contract violation",
			Run("aborts", func(t *T) {
				trap.Terminate("precondition violated")
			}),
		),
		NewTrait("well behaved",
			Run("succeeds", func(t *T) {}),
		),
	)
}
