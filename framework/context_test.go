package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type processExit struct {
	code int
}

// newTestT returns a T whose process records its exit instead of ending, by panicking with a
// processExit value.
func newTestT(debug DebugMode) (*T, *featureProcess, *bytes.Buffer) {
	p := &featureProcess{osExit: func(code int) { panic(processExit{code}) }}
	t := newT(NewFeatureID("trait", "feature"), "context", debug, p)
	var diagnostics bytes.Buffer
	t.diagnostics = &diagnostics
	return t, p, &diagnostics
}

func exitCodeOf(t *testing.T, f func()) int {
	t.Helper()
	var code int
	func() {
		defer func() {
			r := recover()
			exit, ok := r.(processExit)
			require.True(t, ok, "expected process exit, got %v", r)
			code = exit.code
		}()
		f()
	}()
	return code
}

func TestTBasics(t *testing.T) {
	ft, _, _ := newTestT(DebugNone)
	assert.Equal(t, "trait/feature", ft.Name())
	assert.Equal(t, "feature", ft.ID().Feature())
	assert.Equal(t, "context", ft.Context())
	assert.False(t, ft.Failed())

	ft.Fail()
	assert.True(t, ft.Failed())
}

func TestTErrorfIndentsEachLine(t *testing.T) {
	ft, _, diagnostics := newTestT(DebugNone)
	ft.Errorf("first %d\nsecond\n", 1)
	assert.True(t, ft.Failed())
	assert.Equal(t, "  first 1\n  second\n", diagnostics.String())
}

func TestTFinishExitStatus(t *testing.T) {
	ft, _, _ := newTestT(DebugNone)
	assert.Equal(t, 0, exitCodeOf(t, ft.finish))

	ft, _, _ = newTestT(DebugNone)
	assert.Equal(t, 1, exitCodeOf(t, ft.FailNow))
}

func TestTRequireFailureEndsFeature(t *testing.T) {
	ft, _, diagnostics := newTestT(DebugNone)
	code := exitCodeOf(t, func() {
		require.Equal(ft, "expected", "actual")
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, diagnostics.String(), "Not equal")
}

func TestTCleanupRunsInReverseOrderOnce(t *testing.T) {
	ft, p, _ := newTestT(DebugNone)
	var calls []string
	ft.Cleanup(func() { calls = append(calls, "first") })
	ft.Cleanup(func() { calls = append(calls, "second") })

	assert.Equal(t, 1, exitCodeOf(t, ft.FailNow))
	p.runHooks()
	assert.Equal(t, []string{"second", "first"}, calls)
}

func TestTDebugOutput(t *testing.T) {
	for _, p := range []struct {
		mode         DebugMode
		fail         bool
		expectOutput bool
	}{
		{DebugNone, true, false},
		{DebugOnFailure, false, false},
		{DebugOnFailure, true, true},
		{DebugAll, false, true},
	} {
		ft, _, diagnostics := newTestT(p.mode)
		ft.Debug("value %s", "x")
		if p.fail {
			ft.Fail()
		}
		exitCodeOf(t, ft.finish)
		if p.expectOutput {
			assert.Contains(t, diagnostics.String(), "    DEBUG [", "mode %s, failed %t", p.mode, p.fail)
			assert.Contains(t, diagnostics.String(), "] value x\n", "mode %s, failed %t", p.mode, p.fail)
		} else {
			assert.Equal(t, "", diagnostics.String(), "mode %s, failed %t", p.mode, p.fail)
		}
	}
}

func TestDebugModeRoundTrip(t *testing.T) {
	for _, m := range []DebugMode{DebugNone, DebugOnFailure, DebugAll} {
		assert.Equal(t, m, parseDebugMode(m.String()))
	}
	assert.Equal(t, DebugNone, parseDebugMode("bogus"))
}

func TestFeatureProcessRunsTeardownAfterBody(t *testing.T) {
	var calls []string
	fixture := &Fixture{
		Setup:    func() interface{} { calls = append(calls, "setup"); return 42 },
		Teardown: func(context interface{}) { calls = append(calls, "teardown") },
	}
	feature := Run("f", func(ft *T) {
		calls = append(calls, "body")
		assert.Equal(t, 42, ft.Context())
	}, fixture)

	p := &featureProcess{osExit: func(code int) { panic(processExit{code}) }}
	code := exitCodeOf(t, func() {
		p.run(NewFeatureID("t", "f"), &feature, DebugNone)
	})
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"setup", "body", "teardown"}, calls)
}
