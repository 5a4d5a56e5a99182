package httptraits

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/traits-unit/traits-unit/framework"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
)

const endpointPathPrefix = "/endpoints/"

const defaultAwaitRequestTimeout = time.Second * 5

// MockServer is a local HTTP server that features fire requests at. Each feature adds the
// endpoints it needs; an endpoint has its own handler and records the requests it gets.
type MockServer struct {
	server         *httptest.Server
	endpoints      map[string]*MockEndpoint
	lastEndpointID int
	logger         framework.Logger
	lock           sync.Mutex
	closing        sync.Once
}

// MockEndpoint is one handler on a MockServer.
type MockEndpoint struct {
	owner    *MockServer
	id       string
	basePath string
	handler  http.Handler
	requests <-chan httphelpers.HTTPRequestInfo
	cancels  []context.CancelFunc
	lock     sync.Mutex
	closing  sync.Once
}

// NewMockServer starts a server on a local port.
func NewMockServer(logger framework.Logger) *MockServer {
	if logger == nil {
		logger = framework.NullLogger()
	}
	s := &MockServer{
		endpoints: make(map[string]*MockEndpoint),
		logger:    logger,
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	logger.Printf("Started mock server at %s", s.server.URL)
	return s
}

// URL returns the base URL of the server itself. Requests to it that are not for an endpoint
// get a 404.
func (s *MockServer) URL() string {
	return s.server.URL
}

// Close closes every endpoint and shuts the server down.
func (s *MockServer) Close() {
	s.closing.Do(func() {
		s.lock.Lock()
		endpoints := make([]*MockEndpoint, 0, len(s.endpoints))
		for _, e := range s.endpoints {
			endpoints = append(endpoints, e)
		}
		s.lock.Unlock()
		for _, e := range endpoints {
			e.Close()
		}
		s.server.Close()
		s.logger.Printf("Closed mock server at %s", s.server.URL)
	})
}

// NewEndpoint adds an endpoint that passes requests to handler.
//
// The handler is called for requests to the endpoint's base URL or any subpath of it, and
// sees only the subpath. The request's Context is cancelled if the endpoint is closed.
func (s *MockServer) NewEndpoint(handler http.Handler) *MockEndpoint {
	recorder, requests := httphelpers.RecordingHandler(handler)
	e := &MockEndpoint{
		owner:    s,
		handler:  recorder,
		requests: requests,
	}
	s.lock.Lock()
	s.lastEndpointID++
	e.id = strconv.Itoa(s.lastEndpointID)
	e.basePath = endpointPathPrefix + e.id
	s.endpoints[e.id] = e
	s.lock.Unlock()
	return e
}

func (s *MockServer) serveHTTP(w http.ResponseWriter, req *http.Request) {
	if !strings.HasPrefix(req.URL.Path, endpointPathPrefix) {
		s.logger.Printf("Received request for unrecognized URL path %s", req.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(req.URL.Path, endpointPathPrefix)
	endpointID := path
	path = ""
	if slashPos := strings.Index(endpointID, "/"); slashPos >= 0 {
		endpointID, path = endpointID[:slashPos], endpointID[slashPos:]
	}

	s.lock.Lock()
	e := s.endpoints[endpointID]
	s.lock.Unlock()
	if e == nil {
		s.logger.Printf("Received request for unrecognized endpoint %s", req.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()
	e.lock.Lock()
	e.cancels = append(e.cancels, cancel)
	e.lock.Unlock()

	transformedReq := req.WithContext(ctx)
	u := *req.URL
	u.Path = path
	transformedReq.URL = &u
	s.logger.Printf("Endpoint %s received %s %s", e.id, req.Method, path)
	e.handler.ServeHTTP(w, transformedReq)
}

// BaseURL returns the URL of the endpoint.
func (e *MockEndpoint) BaseURL() string {
	return e.owner.server.URL + e.basePath
}

// AwaitRequest waits for the next request to the endpoint, returning its method and body.
func (e *MockEndpoint) AwaitRequest(timeout time.Duration) (httphelpers.HTTPRequestInfo, error) {
	if timeout <= 0 {
		timeout = defaultAwaitRequestTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case info := <-e.requests:
		return info, nil
	case <-deadline.C:
		return httphelpers.HTTPRequestInfo{}, fmt.Errorf("timed out waiting for a request to endpoint %s", e.id)
	}
}

// RequestCount returns the number of requests that have been received but not yet awaited.
func (e *MockEndpoint) RequestCount() int {
	return len(e.requests)
}

// Close unregisters the endpoint, so that later requests to it get a 404, and cancels the
// Context of any request it is still handling.
func (e *MockEndpoint) Close() {
	e.closing.Do(func() {
		e.owner.lock.Lock()
		delete(e.owner.endpoints, e.id)
		e.owner.lock.Unlock()

		e.lock.Lock()
		cancels := e.cancels
		e.cancels = nil
		e.lock.Unlock()
		for _, cancel := range cancels {
			cancel()
		}
	})
}
