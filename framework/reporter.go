package framework

// Reporter receives progress events while a Subject runs. Events arrive in execution order,
// from a single goroutine.
type Reporter interface {
	RunStarted(subject *Subject)
	SelectionFailed(err error)
	SubjectStarted(subject *Subject, selected []*Trait)
	TraitStarted(trait *Trait)
	FeatureStarted(id FeatureID)
	FeatureFinished(id FeatureID, outcome Outcome)
	// FeatureNotRun is called instead of FeatureStarted/FeatureFinished for features that are
	// skipped or pending, with the reason they were not executed.
	FeatureNotRun(id FeatureID, result Result, reason string)
	TraitFinished(trait *Trait, counts TraitResult)
	Summary(totals TraitResult)
}

type nullReporter struct{}

func (n nullReporter) RunStarted(*Subject)                     {}
func (n nullReporter) SelectionFailed(error)                   {}
func (n nullReporter) SubjectStarted(*Subject, []*Trait)       {}
func (n nullReporter) TraitStarted(*Trait)                     {}
func (n nullReporter) FeatureStarted(FeatureID)                {}
func (n nullReporter) FeatureFinished(FeatureID, Outcome)      {}
func (n nullReporter) FeatureNotRun(FeatureID, Result, string) {}
func (n nullReporter) TraitFinished(*Trait, TraitResult)       {}
func (n nullReporter) Summary(TraitResult)                     {}

func NullReporter() Reporter { return nullReporter{} }
