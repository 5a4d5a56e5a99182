// Package httptraits is an example test plan for the framework package: a small HTTP request
// API and the traits that describe it.
//
// FireResult and MaybeText abort the process when they are misused, so their features check
// that with the trap package. The Fire features run against a MockServer that each feature
// gets from its fixture.
package httptraits
