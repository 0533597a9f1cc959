package forwarded

import "strings"

const (
	// ParamFor identifies the node that made the request to the proxy.
	ParamFor = "for"
	// ParamBy identifies the interface where the request came in to the proxy.
	ParamBy = "by"
	// ParamHost is the Host request header as received by the proxy.
	ParamHost = "host"
	// ParamProto is the protocol used to make the request.
	ParamProto = "proto"
)

// Element holds the parameters of a single Forwarded element, one per proxy
// hop. Keys are lower-cased parameter names.
//
// Elements returned by Parse are never mutated afterwards and must be treated
// as read-only by callers.
type Element map[string]string

// Lookup returns the value of the named parameter and whether it was present.
func (e Element) Lookup(name string) (string, bool) {
	v, ok := e[strings.ToLower(name)]
	return v, ok
}

// Get returns the value of the named parameter, or "" when absent.
func (e Element) Get(name string) string {
	v, _ := e.Lookup(name)
	return v
}

// For returns the for parameter.
func (e Element) For() string { return e[ParamFor] }

// By returns the by parameter.
func (e Element) By() string { return e[ParamBy] }

// Host returns the host parameter.
func (e Element) Host() string { return e[ParamHost] }

// Proto returns the proto parameter.
func (e Element) Proto() string { return e[ParamProto] }

// Chain is an ordered list of Forwarded elements in header order, which is
// oldest hop first: the leftmost element was added by the first proxy and the
// rightmost by the proxy nearest to this process.
type Chain []Element

// Len returns the number of hops in the chain.
func (c Chain) Len() int {
	return len(c)
}

// Fors returns the for value of every element that has one, in chain order.
func (c Chain) Fors() []string {
	fors := make([]string, 0, len(c))
	for _, element := range c {
		if v, ok := element[ParamFor]; ok {
			fors = append(fors, v)
		}
	}
	return fors
}
