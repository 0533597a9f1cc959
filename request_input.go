package forwarded

import (
	"context"
	"net/http"
)

// HeaderValues provides access to request header values by name.
//
// Implementations should return one slice entry per received header line.
// Header names are requested in canonical MIME format ("Forwarded").
//
// net/http's http.Header satisfies this interface directly.
type HeaderValues interface {
	Values(name string) []string
}

// HeaderValuesFunc adapts a function to the HeaderValues interface.
type HeaderValuesFunc func(name string) []string

// Values implements HeaderValues.
func (f HeaderValuesFunc) Values(name string) []string {
	if f == nil {
		return nil
	}

	return f(name)
}

// RequestInput provides framework-agnostic request data for resolution.
//
// Context defaults to context.Background() when nil. RemoteAddr may carry a
// port, as in http.Request.RemoteAddr. Path is only used in log attributes.
type RequestInput struct {
	Context    context.Context
	RemoteAddr string
	Path       string
	Headers    HeaderValues
}

func requestInputContext(input RequestInput) context.Context {
	if input.Context == nil {
		return context.Background()
	}

	return input.Context
}

func headerValues(headers HeaderValues, name string) []string {
	switch h := headers.(type) {
	case nil:
		return nil
	case http.Header:
		return h.Values(name)
	case *http.Header:
		if h == nil {
			return nil
		}
		return h.Values(name)
	case HeaderValuesFunc:
		return h.Values(name)
	}

	if isNilInterface(headers) {
		return nil
	}

	return headers.Values(name)
}
