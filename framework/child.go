package framework

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"

	"github.com/traits-unit/traits-unit/framework/trap"
)

// Environment variables through which the runner tells a re-executed program which feature
// to run.
const (
	traitEnvVar   = "TRAITS_UNIT_TRAIT"
	featureEnvVar = "TRAITS_UNIT_FEATURE"
	debugEnvVar   = "TRAITS_UNIT_DEBUG"
)

// lookupFailedExitCode is the status of a feature process that could not find its feature.
const lookupFailedExitCode = 3

// InFeatureProcess reports whether this process was started by an IsolationRunner to execute
// a single feature. Programs that call Main don't need to check this themselves.
func InFeatureProcess() bool {
	_, ok := os.LookupEnv(featureEnvVar)
	return ok
}

// ServeFeature executes the feature this process was started for, then exits. It never
// returns.
//
// The subject must be built exactly as it is in the parent process, since the feature is
// found again by trait and feature name.
func ServeFeature(subject *Subject) {
	traitName, featureName := os.Getenv(traitEnvVar), os.Getenv(featureEnvVar)
	var feature *Feature
	if trait := subject.trait(traitName); trait != nil {
		feature = trait.feature(featureName)
	}
	if feature == nil || feature.Body == nil {
		fmt.Fprintf(os.Stderr, "no runnable feature %q in trait %q of %q\n", featureName, traitName, subject.Name)
		os.Exit(lookupFailedExitCode)
	}

	// An uncaught panic should end the process the way an abort would, by a signal.
	debug.SetTraceback("crash")

	p := &featureProcess{osExit: os.Exit}
	p.run(NewFeatureID(traitName, featureName), feature, parseDebugMode(os.Getenv(debugEnvVar)))
}

// featureProcess tracks what has to happen when a feature process ends.
type featureProcess struct {
	hooks  []func()
	once   sync.Once
	osExit func(int)
}

func (p *featureProcess) run(id FeatureID, feature *Feature, debug DebugMode) {
	context := feature.Fixture.setup()
	p.atExit(func() { feature.Fixture.teardown(context) })
	trap.OnExit(p.runHooks)
	defer p.runHooks()

	t := newT(id, context, debug, p)
	feature.Body(t)
	t.finish()
}

func (p *featureProcess) atExit(f func()) {
	p.hooks = append(p.hooks, f)
}

func (p *featureProcess) runHooks() {
	p.once.Do(func() {
		for i := len(p.hooks) - 1; i >= 0; i-- {
			p.hooks[i]()
		}
	})
}

func (p *featureProcess) exit(code int) {
	p.runHooks()
	p.osExit(code)
}
