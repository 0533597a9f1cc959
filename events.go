package forwarded

const (
	// ResultResolved means the client address was taken from the chain.
	ResultResolved = "resolved"
	// ResultPeer means resolution fell back to the peer address.
	ResultPeer = "peer"
	// ResultNoHeader means the request carried no Forwarded header.
	ResultNoHeader = "no_header"
)

const (
	securityEventUntrustedHop       = "untrusted_hop"
	securityEventMissingIdentity    = "missing_identity"
	securityEventMalformedParameter = "malformed_parameter"
	securityEventEmptyWindow        = "empty_window"
)
