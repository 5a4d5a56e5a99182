// Package framework runs a hierarchical test plan with every feature isolated in its own
// process.
//
// The general model is:
//
// 1. A test program declares a Subject, made of Traits, made of Features. Each Feature has a
// body, a Fixture that brackets it, and an action: run, skip, or todo.
//
// 2. For each runnable feature the harness starts the test program again, telling it through
// the environment which feature to execute. That process runs the fixture setup, the body and
// the fixture teardown, then exits. Whatever happens inside it, including a crash or an
// aborting contract check, cannot affect the rest of the run.
//
// 3. The harness captures the feature process's stderr and classifies its exit: success, a
// nonzero exit status, or death by a signal. Results are counted per trait and for the whole
// run, and printed as the run goes.
//
// Feature bodies receive a *T, which is similar to Go's *testing.T and can be used with the
// assert and require packages. The trap subpackage lets a feature check that an operation
// raises an expected signal.
package framework
