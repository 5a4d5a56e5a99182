package framework

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxTraits is the largest number of traits a Subject may declare. The command line may name
	// at most MaxTraits-1 traits, since the program name takes the last slot.
	MaxTraits = 96
	// MaxFeatures is the largest number of features a single Trait may declare.
	MaxFeatures = 64
)

// Fixture brackets the execution of a feature. Setup produces the context value returned by
// T.Context; Teardown receives it when the feature's process ends.
//
// Teardown runs after the feature returns, fails, panics or aborts through trap. It does not
// run if feature code calls os.Exit directly, or if the process is killed from outside.
//
// A Fixture may be shared by any number of features.
type Fixture struct {
	Setup    func() interface{}
	Teardown func(context interface{})
}

// DefaultFixture is used by features that do not name one. Its context is nil.
var DefaultFixture = &Fixture{}

func (f *Fixture) setup() interface{} {
	if f == nil || f.Setup == nil {
		return nil
	}
	return f.Setup()
}

func (f *Fixture) teardown(context interface{}) {
	if f == nil || f.Teardown == nil {
		return
	}
	f.Teardown(context)
}

// Action says what the runner does with a feature.
type Action int

const (
	ActionRun Action = iota
	ActionSkip
	ActionTodo
)

func (a Action) String() string {
	switch a {
	case ActionRun:
		return "run"
	case ActionSkip:
		return "skip"
	case ActionTodo:
		return "todo"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Feature is a single test case.
type Feature struct {
	Name    string
	Fixture *Fixture
	Body    func(*T)
	Action  Action
}

// Run declares a feature that will be executed in its own process. An optional fixture
// may be given; otherwise DefaultFixture is used.
func Run(name string, body func(*T), fixture ...*Fixture) Feature {
	return newFeature(name, body, ActionRun, fixture)
}

// Skip declares a feature that is reported as skipped and never executed.
func Skip(name string, body func(*T), fixture ...*Fixture) Feature {
	return newFeature(name, body, ActionSkip, fixture)
}

// Todo declares a feature that is reported as pending and never executed.
func Todo(name string, body func(*T), fixture ...*Fixture) Feature {
	return newFeature(name, body, ActionTodo, fixture)
}

func newFeature(name string, body func(*T), action Action, fixture []*Fixture) Feature {
	f := Feature{Name: name, Body: body, Action: action, Fixture: DefaultFixture}
	if len(fixture) > 0 && fixture[0] != nil {
		f.Fixture = fixture[0]
	}
	return f
}

// Trait is an ordered group of features.
type Trait struct {
	Name     string
	Features []Feature
}

func NewTrait(name string, features ...Feature) Trait {
	return Trait{Name: name, Features: features}
}

func (t *Trait) feature(name string) *Feature {
	for i := range t.Features {
		if t.Features[i].Name == name {
			return &t.Features[i]
		}
	}
	return nil
}

// Subject is the root of a test plan. It is built once, before anything runs, and is not
// modified afterward.
type Subject struct {
	Name   string
	Traits []Trait
}

func Describe(name string, traits ...Trait) *Subject {
	return &Subject{Name: name, Traits: traits}
}

func (s *Subject) trait(name string) *Trait {
	for i := range s.Traits {
		if s.Traits[i].Name == name {
			return &s.Traits[i]
		}
	}
	return nil
}

// CountFeatures returns the number of features declared across all traits.
func (s *Subject) CountFeatures() int {
	n := 0
	for _, t := range s.Traits {
		n += len(t.Features)
	}
	return n
}

// Validate checks that the plan can be executed. Feature processes look their feature up
// by trait and feature name, so names must be unique within their scope.
func (s *Subject) Validate() error {
	var problems []string
	if s.Name == "" {
		problems = append(problems, "subject has no name")
	}
	if len(s.Traits) > MaxTraits {
		problems = append(problems, fmt.Sprintf("subject declares %d traits, the limit is %d", len(s.Traits), MaxTraits))
	}
	traitNames := make(map[string]bool)
	for _, t := range s.Traits {
		if t.Name == "" {
			problems = append(problems, "trait has no name")
		} else if traitNames[t.Name] {
			problems = append(problems, fmt.Sprintf("duplicate trait %q", t.Name))
		}
		traitNames[t.Name] = true
		if len(t.Features) > MaxFeatures {
			problems = append(problems,
				fmt.Sprintf("trait %q declares %d features, the limit is %d", t.Name, len(t.Features), MaxFeatures))
		}
		featureNames := make(map[string]bool)
		for _, f := range t.Features {
			switch {
			case f.Name == "":
				problems = append(problems, fmt.Sprintf("trait %q has a feature with no name", t.Name))
			case featureNames[f.Name]:
				problems = append(problems, fmt.Sprintf("duplicate feature %q in trait %q", f.Name, t.Name))
			}
			featureNames[f.Name] = true
			if f.Action == ActionRun && f.Body == nil {
				problems = append(problems, fmt.Sprintf("feature %q in trait %q has no body", f.Name, t.Name))
			}
		}
	}
	if len(problems) > 0 {
		return errors.New("invalid test plan: " + strings.Join(problems, "; "))
	}
	return nil
}
