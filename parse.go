package forwarded

import "strings"

// typicalChainCapacity is the initial capacity used when parsing chains.
//
// Most deployments have short chains (around 1-5 hops).
const typicalChainCapacity = 8

// Parse splits a raw Forwarded header value into its elements.
//
// Parsing is lenient and never fails. Parameters that do not contain exactly
// one '=' are dropped, and elements left without any parameter are omitted,
// so an empty or entirely malformed value yields an empty Chain.
//
// Parameter names are case-folded. The for, by and host values lose one layer
// of matching quotes (double or single) and then one layer of matching square
// brackets, so for="[2001:db8::1]" yields 2001:db8::1.
func Parse(raw string) Chain {
	return ParseValues(raw)
}

// ParseValues parses one or more Forwarded header lines in order. It is
// equivalent to calling Parse on the lines joined with ",".
func ParseValues(values ...string) Chain {
	chain, _ := parseValues(values)
	return chain
}

// parseValues parses header lines and reports how many malformed parameters
// were dropped along the way.
func parseValues(values []string) (Chain, int) {
	if len(values) == 0 {
		return Chain{}, 0
	}

	chain := make(Chain, 0, typicalChainCapacity)
	dropped := 0

	for _, value := range values {
		for segment := range strings.SplitSeq(value, ",") {
			element, n := parseElement(strings.TrimSpace(segment))
			dropped += n
			if len(element) == 0 {
				continue
			}
			chain = append(chain, element)
		}
	}

	return chain, dropped
}

// parseElement parses the ';' separated parameters of one element.
//
// Empty parameter strings (for example a trailing ';') count as dropped just
// like any other parameter without exactly one '='.
func parseElement(segment string) (Element, int) {
	var element Element
	dropped := 0

	for param := range strings.SplitSeq(segment, ";") {
		key, value, ok := splitParam(param)
		if !ok {
			if segment != "" {
				dropped++
			}
			continue
		}

		key = strings.ToLower(key)
		switch key {
		case ParamFor, ParamBy, ParamHost:
			value = unwrapNodeValue(value)
		}

		if element == nil {
			element = make(Element, 4)
		}
		element[key] = value
	}

	return element, dropped
}

// splitParam splits a parameter on its only '='.
func splitParam(param string) (key, value string, ok bool) {
	eq := strings.IndexByte(param, '=')
	if eq < 0 || strings.IndexByte(param[eq+1:], '=') >= 0 {
		return "", "", false
	}

	return param[:eq], param[eq+1:], true
}

// unwrapNodeValue strips one layer of quoting and then one layer of IPv6
// brackets from a node-valued parameter.
func unwrapNodeValue(value string) string {
	unquoted := trimMatchedChar(value, '"')
	if unquoted == value {
		unquoted = trimMatchedChar(value, '\'')
	}

	return trimMatchedPair(unquoted, '[', ']')
}

// trimMatchedPair removes one leading and trailing delimiter when both match.
func trimMatchedPair(s string, start, end byte) string {
	if len(s) < 2 {
		return s
	}

	if s[0] != start || s[len(s)-1] != end {
		return s
	}

	return s[1 : len(s)-1]
}

// trimMatchedChar removes one matching leading and trailing character.
func trimMatchedChar(s string, ch byte) string {
	return trimMatchedPair(s, ch, ch)
}
