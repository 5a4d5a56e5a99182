package framework

import (
	"bytes"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestConsoleReporterOutput(t *testing.T) {
	subject := Describe("http",
		NewTrait("fire", Run("ok", noop), Run("crash", noop), Skip("later", noop)),
	)
	trait := &subject.Traits[0]

	var out bytes.Buffer
	r := NewConsoleReporter(&out, true, []string{"./traits", "-debug"})
	r.RunStarted(subject)
	r.SubjectStarted(subject, []*Trait{trait})
	r.TraitStarted(trait)
	r.FeatureStarted(NewFeatureID("fire", "ok"))
	r.FeatureFinished(NewFeatureID("fire", "ok"), Outcome{Result: Succeeded, ExitCode: ldvalue.NewOptionalInt(0)})
	r.FeatureStarted(NewFeatureID("fire", "crash"))
	r.FeatureFinished(NewFeatureID("fire", "crash"), Outcome{
		Result:  Failed,
		Signal:  syscall.SIGABRT,
		Output:  "Error: misuse",
		Dropped: 12,
	})
	r.FeatureNotRun(NewFeatureID("fire", "later"), Skipped, "")
	r.TraitFinished(trait, TraitResult{Succeed: 1, Skipped: 1, Failed: 1, All: 3})
	r.Summary(TraitResult{Succeed: 1, Skipped: 1, Failed: 1, All: 3})

	expected := "Running traits-unit version " + Version + "\n\n" +
		"Describing: http\n" +
		"  Trait: fire\n" +
		"    Feature: ok... succeed\n" +
		"    Feature: crash... (terminated by signal 6 - SIGABRT: aborted) failed\n\n" +
		"Error: misuse\n" +
		"[... 12 more bytes not captured]\n" +
		"    to rerun this trait: ./traits -debug fire\n\n" +
		"    Feature: later... skipped\n" +
		"\n" +
		"Succeed: 1\n" +
		"Skipped: 1\n" +
		" Failed: 1\n" +
		"   Todo: 0\n" +
		"    All: 3\n"
	assert.Equal(t, expected, out.String())
}

func TestConsoleReporterExitStatusAndReason(t *testing.T) {
	var out bytes.Buffer
	r := NewConsoleReporter(&out, true, nil)
	r.FeatureFinished(NewFeatureID("t", "f"), Outcome{Result: Failed, ExitCode: ldvalue.NewOptionalInt(255)})
	assert.Equal(t, "(exit status 255) failed\n\n\n", out.String())

	out.Reset()
	r.FeatureFinished(NewFeatureID("t", "f"), Outcome{Result: Failed})
	assert.Equal(t, "(terminated abnormally) failed\n\n\n", out.String())

	out.Reset()
	r.FeatureNotRun(NewFeatureID("t", "f"), Skipped, filteredOutReason)
	assert.Equal(t, "Feature: f... skipped (excluded by filter parameters)\n", out.String())

	out.Reset()
	r.FeatureNotRun(NewFeatureID("t", "f"), Pending, "")
	assert.Equal(t, "Feature: f... todo\n", out.String())
}

func TestConsoleReporterSummaryAlignment(t *testing.T) {
	var out bytes.Buffer
	r := NewConsoleReporter(&out, true, nil)
	r.Summary(TraitResult{Succeed: 7, Skipped: 0, Failed: 93, Todo: 2, All: 102})
	assert.Equal(t, "\nSucceed:   7\nSkipped:   0\n Failed:  93\n   Todo:   2\n    All: 102\n", out.String())
}

func TestConsoleReporterSelectionFailure(t *testing.T) {
	var out bytes.Buffer
	r := NewConsoleReporter(&out, true, nil)
	r.SelectionFailed(&UnknownTraitError{Name: "nope"})
	assert.Equal(t, "Unknown trait: `nope`\n", out.String())
}

func TestConsoleReporterDescribesFilters(t *testing.T) {
	var out bytes.Buffer
	r := NewConsoleReporter(&out, true, nil)
	require.NoError(t, r.Filters.MustNotMatch.Set("slow"))
	r.RunStarted(Describe("s"))
	assert.Contains(t, out.String(), `skip any matching "slow"`)
}

func TestRerunCommandQuotesArguments(t *testing.T) {
	assert.Equal(t, "./traits 'my trait'", rerunCommand([]string{"./traits"}, "my trait"))
	assert.Equal(t, `'/tmp/a b/traits' -run 'x$' fire`, rerunCommand([]string{"/tmp/a b/traits", "-run", "x$"}, "fire"))
}
