package forwarded

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
)

func errorContains(err, target error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, target)
}

func mustNewResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()

	resolver, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return resolver
}

func newTestRequest(remoteAddr, path string, forwarded ...string) *http.Request {
	req := &http.Request{
		RemoteAddr: remoteAddr,
		Header:     make(http.Header),
	}

	if path != "" {
		req.URL = &url.URL{Path: path}
	}

	for _, value := range forwarded {
		req.Header.Add("Forwarded", value)
	}

	return req
}

// proxyElement is the parameter set every test proxy appends besides for/by.
const proxyElement = `host=example.com;proto=https;proto-version=""`
