package httptraits

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the timeout of the client used when Fire is given none.
const DefaultTimeout = 5 * time.Second

// Fire sends req and wraps whatever happens in a FireResult. Any HTTP response, whatever its
// status, is a success; only a failure to get one is an error.
func Fire(client *http.Client, req *http.Request) FireResult {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	response, err := client.Do(req)
	if err != nil {
		return Error(fmt.Errorf("%w: %s", classifyError(err), err))
	}
	return Ok(response)
}

func classifyError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ErrConnectionTimedOut
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrUnableToResolveHost
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch opErr.Op {
		case "dial":
			return ErrConnectionFailed
		case "write":
			return ErrUnableToSendData
		}
	}
	return ErrNetworking
}
