package option

import (
	"net"

	"github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"
)

// ClientID is the structured value of a ClientIdentifier option (RFC 2132
// §9.14): a one-octet hardware type followed by the hardware address.
type ClientID struct {
	HType byte
	Addr  net.HardwareAddr
}

func (c ClientID) String() string {
	return dhcpv4.FormatMAC(c.Addr)
}

// RoutePair is one (destination, gateway) pair of the legacy RFC 2132
// Static Route option (code 33), distinct from the RFC 3442 Classless
// Static Route option (code 121, dhcpv4.CIDRRoute).
type RoutePair struct {
	Destination net.IP
	Gateway     net.IP
}

func (r RoutePair) String() string {
	return r.Destination.String() + " via " + r.Gateway.String()
}

// ClientFQDN is the structured value of the Client FQDN option (RFC 4702,
// code 81): a flags byte (the two RCODE octets are deprecated and always
// encoded as zero) plus the domain name in ASCII form.
type ClientFQDN struct {
	Flags byte
	Name  string
}

func (f ClientFQDN) String() string {
	return f.Name
}

// messageTypeByName maps the symbolic names used on the wire-adjacent
// boundary API ("DHCPDISCOVER", ...) back to dhcpv4.MessageType.
var messageTypeByName = func() map[string]dhcpv4.MessageType {
	m := make(map[string]dhcpv4.MessageType, 8)
	for _, mt := range []dhcpv4.MessageType{
		dhcpv4.MessageTypeDiscover,
		dhcpv4.MessageTypeOffer,
		dhcpv4.MessageTypeRequest,
		dhcpv4.MessageTypeDecline,
		dhcpv4.MessageTypeAck,
		dhcpv4.MessageTypeNak,
		dhcpv4.MessageTypeRelease,
		dhcpv4.MessageTypeInform,
	} {
		m[mt.String()] = mt
	}
	return m
}()
