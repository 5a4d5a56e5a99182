package framework

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Exit codes returned by Main.
const (
	ExitOK = 0
	// ExitFailed means at least one feature failed, or the requested traits could not be
	// selected and nothing ran.
	ExitFailed = 1
	// ExitError means the harness could not run: bad parameters, an invalid plan, or a
	// resource failure.
	ExitError = 2
)

const filteredOutReason = "excluded by filter parameters"

// Config controls a single run of a Subject.
type Config struct {
	// TraitNames selects traits by exact name. Empty means all traits.
	TraitNames []string
	// Filter, if set, excludes features for which it returns false. Excluded features are
	// reported as skipped.
	Filter          Filter
	CaptureCapacity int
	Reporter        Reporter
	// Runner defaults to an IsolationRunner that re-executes the current program.
	Runner *IsolationRunner
}

type runPhase int

const (
	phaseUnselected runPhase = iota
	phaseLoaded
	phaseExecuting
	phaseReported
)

type driver struct {
	subject  *Subject
	config   Config
	reporter Reporter
	phase    runPhase
	selected []*Trait
	results  Results
}

// RunSubject selects the requested traits and runs their features in declaration order, one
// process per runnable feature.
//
// A selection error is returned, after being reported, before anything executes. A
// *ResourceError stops the run where it happened. Feature failures are not errors; they are
// counted in the returned Results.
func RunSubject(subject *Subject, config Config) (Results, error) {
	d := &driver{subject: subject, config: config, reporter: config.Reporter}
	if d.reporter == nil {
		d.reporter = NullReporter()
	}
	d.reporter.RunStarted(subject)
	if err := subject.Validate(); err != nil {
		return Results{}, err
	}
	if err := d.load(); err != nil {
		d.reporter.SelectionFailed(err)
		return Results{}, err
	}
	if err := d.execute(); err != nil {
		return d.results, err
	}
	d.report()
	return d.results, nil
}

func (d *driver) load() error {
	selected, err := SelectTraits(d.subject, d.config.TraitNames)
	if err != nil {
		return err
	}
	d.selected = selected
	d.phase = phaseLoaded
	return nil
}

func (d *driver) execute() error {
	d.mustBeIn(phaseLoaded)
	d.phase = phaseExecuting

	runner := d.config.Runner
	if runner == nil {
		r, err := NewIsolationRunner()
		if err != nil {
			return err
		}
		runner = r
	}
	buffer := NewCaptureBuffer(d.config.CaptureCapacity)
	defer buffer.Release()

	d.reporter.SubjectStarted(d.subject, d.selected)
	for _, trait := range d.selected {
		var counts TraitResult
		d.reporter.TraitStarted(trait)
		for i := range trait.Features {
			feature := &trait.Features[i]
			report, err := d.runFeature(runner, trait, feature, buffer)
			if err != nil {
				return err
			}
			counts.Add(report.Outcome.Result)
			d.results.record(report)
		}
		d.reporter.TraitFinished(trait, counts)
		d.results.Traits = append(d.results.Traits, TraitReport{Name: trait.Name, Counts: counts})
		d.results.Totals.Merge(counts)
	}
	return nil
}

func (d *driver) runFeature(runner *IsolationRunner, trait *Trait, feature *Feature, buffer *CaptureBuffer) (FeatureReport, error) {
	id := NewFeatureID(trait.Name, feature.Name)
	report := FeatureReport{ID: id}
	switch {
	case feature.Action == ActionSkip:
		report.Outcome.Result = Skipped
	case feature.Action == ActionTodo:
		report.Outcome.Result = Pending
	case d.config.Filter != nil && !d.config.Filter(id):
		report.Outcome.Result = Skipped
		report.Reason = filteredOutReason
	default:
		d.reporter.FeatureStarted(id)
		outcome, err := runner.RunFeature(id, feature, buffer)
		if err != nil {
			return report, err
		}
		report.Outcome = outcome
		d.reporter.FeatureFinished(id, outcome)
		return report, nil
	}
	d.reporter.FeatureNotRun(id, report.Outcome.Result, report.Reason)
	return report, nil
}

func (d *driver) report() {
	d.mustBeIn(phaseExecuting)
	d.reporter.Summary(d.results.Totals)
	d.phase = phaseReported
}

func (d *driver) mustBeIn(phase runPhase) {
	if d.phase != phase {
		panic(fmt.Sprintf("framework: run is in phase %d, expected %d", d.phase, phase))
	}
}

// Main runs a test program built around subject and returns its exit code. It is meant to be
// the whole body of main:
//
//	func main() {
//		os.Exit(framework.Main(mysuite.Subject()))
//	}
//
// When the program was started to execute a single feature, Main does that and never returns.
func Main(subject *Subject) int {
	if InFeatureProcess() {
		ServeFeature(subject)
	}
	var params Params
	if !params.Read(os.Args, os.Stderr) {
		return ExitError
	}
	return params.Run(subject, os.Stdout)
}

// Run executes subject according to the parameters, writing the report to out, and returns
// the exit code.
func (p Params) Run(subject *Subject, out io.Writer) int {
	if p.List {
		PrintPlan(out, subject)
		return ExitOK
	}

	harnessLogger := NullLogger()
	if p.DebugAll {
		harnessLogger = log.New(out, "", log.LstdFlags)
	}
	debugMode := DebugNone
	switch {
	case p.DebugAll:
		debugMode = DebugAll
	case p.Debug:
		debugMode = DebugOnFailure
	}
	runner, err := NewIsolationRunner(
		WithStdout(out),
		WithDebugMode(debugMode),
		WithRunnerLogger(harnessLogger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return ExitError
	}

	reporter := NewConsoleReporter(out, p.NoColor, p.command)
	reporter.Filters = p.Filters
	results, err := RunSubject(subject, Config{
		TraitNames:      p.TraitNames,
		Filter:          p.Filters.AsFilter,
		CaptureCapacity: p.CaptureCapacity,
		Reporter:        reporter,
		Runner:          runner,
	})
	if err == nil {
		if failures := results.Err(); failures != nil {
			harnessLogger.Printf("%s", failures)
		}
	}
	switch {
	case err == nil && results.OK():
		return ExitOK
	case err == nil, IsSelectionError(err):
		return ExitFailed
	default:
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return ExitError
	}
}

// PrintPlan writes every trait and feature of subject, with the action of each feature.
func PrintPlan(out io.Writer, subject *Subject) {
	fmt.Fprintf(out, "%s\n", subject.Name)
	for _, t := range subject.Traits {
		fmt.Fprintf(out, "%*s%s\n", indentationStep, "", t.Name)
		for _, f := range t.Features {
			fmt.Fprintf(out, "%*s%s [%s]\n", 2*indentationStep, "", f.Name, f.Action)
		}
	}
}
