package client

import "errors"

var (
	// ErrSocketError wraps a failure to set up or use the UDP socket.
	ErrSocketError = errors.New("client: socket error")
	// ErrTimeout is returned when a per-attempt deadline elapses with no
	// matching reply.
	ErrTimeout = errors.New("client: timeout")
	// ErrNak is returned when the server answers a REQUEST with a DHCPNAK.
	ErrNak = errors.New("client: received DHCPNAK")
	// ErrProtocolViolation covers a correlated reply that parses but lacks
	// what the exchange needs, such as an OFFER without server_identifier
	// or yiaddr. Replies with the wrong op, xid or chaddr are discarded
	// silently rather than reported.
	ErrProtocolViolation = errors.New("client: protocol violation")
)
