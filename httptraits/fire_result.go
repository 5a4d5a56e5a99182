package httptraits

import (
	"errors"
	"net/http"

	"github.com/traits-unit/traits-unit/framework/trap"
)

// Errors a Fire can end with. The error held by a FireResult wraps one of these, so callers
// can test for them with errors.Is.
var (
	ErrNetworking          = errors.New("networking error")
	ErrConnectionFailed    = errors.New("connection failed")
	ErrConnectionTimedOut  = errors.New("connection timed out")
	ErrUnableToResolveHost = errors.New("unable to resolve host")
	ErrUnableToSendData    = errors.New("unable to send data")
)

// FireResult is either the response to a request or the error that prevented one.
//
// Misusing it is a contract violation, not an error: unwrapping the wrong side, or building a
// result from nil, aborts the process.
type FireResult struct {
	response *http.Response
	err      error
	ok       bool
}

// Ok returns a successful result. response must not be nil.
func Ok(response *http.Response) FireResult {
	if response == nil {
		trap.Terminate("a successful result needs a response")
	}
	return FireResult{response: response, ok: true}
}

// Error returns a failed result. err must not be nil.
func Error(err error) FireResult {
	if err == nil {
		trap.Terminate("a failed result needs an error")
	}
	return FireResult{err: err}
}

func (r FireResult) IsOk() bool {
	return r.ok
}

func (r FireResult) IsError() bool {
	return !r.ok
}

// Unwrap returns the response, or aborts with the error if there is none.
func (r FireResult) Unwrap() *http.Response {
	if !r.ok {
		trap.Terminate("%s.", r.err)
	}
	return r.response
}

// UnwrapError returns the error, or aborts if the result is successful.
func (r FireResult) UnwrapError() error {
	if r.ok {
		trap.Terminate("Unable to unwrap error.")
	}
	return r.err
}
