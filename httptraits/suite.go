package httptraits

import (
	"errors"
	"net/http"
	"strings"
	"syscall"

	"github.com/traits-unit/traits-unit/framework"
	"github.com/traits-unit/traits-unit/framework/trap"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Subject returns the test plan for this package.
func Subject() *framework.Subject {
	return framework.Describe("http",
		framework.NewTrait("FireResult",
			framework.Run("ok", doFireResultOk),
			framework.Run("error", doFireResultError),
		),
		framework.NewTrait("MaybeText",
			framework.Run("absent", doMaybeTextAbsent),
			framework.Run("present", doMaybeTextPresent),
		),
		framework.NewTrait("Fire",
			framework.Run("response with body", doFireResponseWithBody, mockServerFixture),
			framework.Run("error status is a response", doFireErrorStatus, mockServerFixture),
			framework.Run("request body is sent", doFireRequestBody, mockServerFixture),
			framework.Run("connection failure is an error", doFireConnectionFailure, mockServerFixture),
			framework.Todo("unable to resolve proxy", nil),
		),
	)
}

var mockServerFixture = &framework.Fixture{
	Setup: func() interface{} {
		return NewMockServer(nil)
	},
	Teardown: func(context interface{}) {
		context.(*MockServer).Close()
	},
}

func requireServer(t *framework.T) *MockServer {
	server, ok := t.Context().(*MockServer)
	require.True(t, ok, "feature needs the mock server fixture")
	return server
}

// requireAborts checks that f raises SIGABRT exactly once.
func requireAborts(t *framework.T, f func()) {
	before := trap.TrappedCount()
	outcome := trap.Wraps(syscall.SIGABRT, f)
	require.Equal(t, trap.TrappedSignal, outcome)
	require.Equal(t, before+1, trap.TrappedCount())
}

func doFireResultOk(t *framework.T) {
	requireAborts(t, func() { Ok(nil) })

	response := &http.Response{StatusCode: http.StatusOK}
	sut := Ok(response)
	assert.True(t, sut.IsOk())
	assert.False(t, sut.IsError())
	assert.Same(t, response, sut.Unwrap())

	requireAborts(t, func() { _ = sut.UnwrapError() })
}

func doFireResultError(t *framework.T) {
	requireAborts(t, func() { Error(nil) })

	sut := Error(ErrNetworking)
	assert.False(t, sut.IsOk())
	assert.True(t, sut.IsError())
	assert.Equal(t, ErrNetworking, sut.UnwrapError())

	requireAborts(t, func() { _ = sut.Unwrap() })
}

func doMaybeTextAbsent(t *framework.T) {
	sut := NoText()
	assert.False(t, sut.IsPresent())
	requireAborts(t, func() { _ = sut.Unwrap() })
}

func doMaybeTextPresent(t *framework.T) {
	sut := SomeText("")
	assert.True(t, sut.IsPresent())
	assert.Equal(t, "", sut.Unwrap())
}

func doFireResponseWithBody(t *framework.T) {
	server := requireServer(t)
	headers := make(http.Header)
	headers.Set("Content-Type", "text/plain")
	endpoint := server.NewEndpoint(httphelpers.HandlerWithResponse(http.StatusOK, headers, []byte("hello")))
	t.Debug("firing at %s", endpoint.BaseURL())

	req, err := http.NewRequest("GET", endpoint.BaseURL(), nil)
	require.NoError(t, err)
	result := Fire(nil, req)
	require.True(t, result.IsOk())

	response := result.Unwrap()
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "text/plain", response.Header.Get("Content-Type"))
	text, err := BodyText(response)
	require.NoError(t, err)
	assert.Equal(t, "hello", text.Unwrap())

	received, err := endpoint.AwaitRequest(0)
	require.NoError(t, err)
	assert.Equal(t, "GET", received.Request.Method)
}

func doFireErrorStatus(t *framework.T) {
	server := requireServer(t)
	endpoint := server.NewEndpoint(httphelpers.HandlerWithStatus(http.StatusNoContent))

	req, err := http.NewRequest("DELETE", endpoint.BaseURL()+"/items/1", nil)
	require.NoError(t, err)
	result := Fire(nil, req)
	require.True(t, result.IsOk())
	assert.Equal(t, http.StatusNoContent, result.Unwrap().StatusCode)

	text, err := BodyText(result.Unwrap())
	require.NoError(t, err)
	requireAborts(t, func() { _ = text.Unwrap() })

	received, err := endpoint.AwaitRequest(0)
	require.NoError(t, err)
	assert.Equal(t, "/items/1", received.Request.URL.Path)

	endpoint.Close()
	result = Fire(nil, req)
	require.True(t, result.IsOk())
	assert.Equal(t, http.StatusNotFound, result.Unwrap().StatusCode)
}

func doFireRequestBody(t *framework.T) {
	server := requireServer(t)
	endpoint := server.NewEndpoint(httphelpers.HandlerWithStatus(http.StatusAccepted))

	req, err := http.NewRequest("POST", endpoint.BaseURL(), strings.NewReader(`{"name":"value"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	result := Fire(nil, req)
	assert.Equal(t, http.StatusAccepted, result.Unwrap().StatusCode)

	received, err := endpoint.AwaitRequest(0)
	require.NoError(t, err)
	assert.Equal(t, "POST", received.Request.Method)
	assert.Equal(t, "application/json", received.Request.Header.Get("Content-Type"))
	assert.Equal(t, `{"name":"value"}`, string(received.Body))
}

func doFireConnectionFailure(t *framework.T) {
	closed := NewMockServer(t.DebugLogger())
	url := closed.URL()
	closed.Close()

	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err)
	result := Fire(nil, req)
	require.True(t, result.IsError())
	assert.True(t, errors.Is(result.UnwrapError(), ErrConnectionFailed), "got %s", result.UnwrapError())

	requireAborts(t, func() { _ = result.Unwrap() })
}
