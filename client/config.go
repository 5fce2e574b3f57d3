package client

import (
	"net"
	"time"

	"github.com/athena-dhcpd/dhcp4c/option"
)

// Config controls how GetLease sets up its socket and composes its
// DISCOVER/REQUEST packets.
type Config struct {
	// Interface pins the client socket to a network interface via
	// SO_BINDTODEVICE. Empty means no pinning.
	Interface string

	// SendBroadcast selects the destination for outgoing packets: true
	// broadcasts to 255.255.255.255:67, false unicasts to Server (or
	// broadcasts as well when Server is nil).
	SendBroadcast bool

	// Server is the unicast destination used when SendBroadcast is
	// false, or the server a relayed exchange is aimed at.
	Server net.IP

	// Relay, if set, is placed in giaddr on outgoing packets to emulate
	// a relay agent.
	Relay net.IP

	// ExtraOptions are merged into every outgoing DISCOVER and REQUEST
	// under OptionList's replace-in-place uniqueness rule.
	ExtraOptions *option.OptionList

	// Timeout bounds each wait of a GetLease attempt separately: one
	// deadline for the OFFER and a fresh one for the ACK. Zero or negative
	// means 5s. There is no internal retry: a timed-out wait returns
	// ErrTimeout to the caller.
	Timeout time.Duration
}

const defaultTimeout = 5 * time.Second

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}
