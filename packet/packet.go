// Package packet implements the DHCPv4 packet codec: the fixed BOOTP
// header (RFC 2131 §2) plus the variable option trailer, and the four
// template constructors used to build DISCOVER/OFFER/REQUEST/ACK packets.
package packet

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/athena-dhcpd/dhcp4c/option"
	"github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"
)

// fixedHeaderLen is the length of the BOOTP header plus the magic cookie,
// before the options region begins.
const fixedHeaderLen = 240

// Packet mirrors the BOOTP/DHCP frame (RFC 2131 §2).
type Packet struct {
	Op     dhcpv4.OpCode       // BOOTREQUEST or BOOTREPLY
	HType  dhcpv4.HardwareType // hardware address type, 1 = Ethernet
	HLen   byte                // hardware address length, ≤ 16
	Hops   byte                // relay hop count
	XID    uint32              // transaction id
	Secs   uint16              // seconds elapsed since the client began acquisition
	Flags  uint16              // bit 15 = broadcast
	CIAddr net.IP              // client IP address
	YIAddr net.IP              // 'your' (client) IP address
	SIAddr net.IP              // next server IP address
	GIAddr net.IP              // relay agent IP address
	CHAddr net.HardwareAddr    // client hardware address (first HLen octets significant)
	SName  [64]byte            // optional server host name, NUL-terminated
	File   [128]byte           // optional boot file name, NUL-terminated

	Options *option.OptionList
}

// Decode parses a raw DHCPv4 datagram. It fails with ErrMalformedPacket for
// a header shorter than 240 octets or a bad magic cookie, and propagates
// the option codec's errors (wrapping ErrTruncatedOption) for a malformed
// options region.
func Decode(data []byte) (*Packet, error) {
	if len(data) < fixedHeaderLen {
		return nil, fmt.Errorf("packet too short: %d bytes (minimum %d): %w", len(data), fixedHeaderLen, ErrMalformedPacket)
	}

	cookie := data[236:240]
	for i, b := range dhcpv4.MagicCookie {
		if cookie[i] != b {
			return nil, fmt.Errorf("bad magic cookie % x: %w", cookie, ErrMalformedPacket)
		}
	}

	p := &Packet{
		Op:    dhcpv4.OpCode(data[0]),
		HType: dhcpv4.HardwareType(data[1]),
		HLen:  data[2],
		Hops:  data[3],
		XID:   binary.BigEndian.Uint32(data[4:8]),
		Secs:  binary.BigEndian.Uint16(data[8:10]),
		Flags: binary.BigEndian.Uint16(data[10:12]),
	}
	p.CIAddr = dhcpv4.BytesToIP(data[12:16])
	p.YIAddr = dhcpv4.BytesToIP(data[16:20])
	p.SIAddr = dhcpv4.BytesToIP(data[20:24])
	p.GIAddr = dhcpv4.BytesToIP(data[24:28])

	hlen := int(p.HLen)
	if hlen > 16 {
		hlen = 16
	}
	chaddr := make(net.HardwareAddr, hlen)
	copy(chaddr, data[28:28+hlen])
	p.CHAddr = chaddr

	copy(p.SName[:], data[44:108])
	copy(p.File[:], data[108:236])

	opts, err := option.DecodeOptions(data[fixedHeaderLen:])
	if err != nil {
		return nil, fmt.Errorf("decoding options: %w", err)
	}
	p.Options = opts

	return p, nil
}

// Encode serializes the packet to wire bytes: the fixed header in
// big-endian network order, the magic cookie, every option in insertion
// order, the END sentinel, and zero padding up to the 300-octet minimum.
func (p *Packet) Encode() []byte {
	var optBytes []byte
	if p.Options != nil {
		optBytes = p.Options.Encode()
	} else {
		optBytes = []byte{byte(dhcpv4.OptionEnd)}
	}

	totalLen := fixedHeaderLen + len(optBytes)
	if totalLen < dhcpv4.MinPacketSize {
		totalLen = dhcpv4.MinPacketSize
	}

	buf := make([]byte, totalLen)
	buf[0] = byte(p.Op)
	buf[1] = byte(p.HType)
	buf[2] = p.HLen
	buf[3] = p.Hops
	binary.BigEndian.PutUint32(buf[4:8], p.XID)
	binary.BigEndian.PutUint16(buf[8:10], p.Secs)
	binary.BigEndian.PutUint16(buf[10:12], p.Flags)

	if p.CIAddr != nil {
		copy(buf[12:16], dhcpv4.IPToBytes(p.CIAddr))
	}
	if p.YIAddr != nil {
		copy(buf[16:20], dhcpv4.IPToBytes(p.YIAddr))
	}
	if p.SIAddr != nil {
		copy(buf[20:24], dhcpv4.IPToBytes(p.SIAddr))
	}
	if p.GIAddr != nil {
		copy(buf[24:28], dhcpv4.IPToBytes(p.GIAddr))
	}
	copy(buf[28:44], p.CHAddr)
	copy(buf[44:108], p.SName[:])
	copy(buf[108:236], p.File[:])
	copy(buf[236:240], dhcpv4.MagicCookie)
	copy(buf[240:], optBytes)

	return buf
}

// ChaddrString renders chaddr using exactly HLen octets, the canonical
// textual form of the client hardware address.
func (p *Packet) ChaddrString() string {
	n := int(p.HLen)
	if n > len(p.CHAddr) {
		n = len(p.CHAddr)
	}
	return dhcpv4.FormatMAC(p.CHAddr[:n])
}

// MessageType returns the value of option 53, or 0 if absent.
func (p *Packet) MessageType() dhcpv4.MessageType {
	o, ok := p.Options.ByCode(dhcpv4.OptionDHCPMessageType)
	if !ok || len(o.Data) != 1 {
		return 0
	}
	return dhcpv4.MessageType(o.Data[0])
}

// ServerIdentifier returns option 54, or nil if absent.
func (p *Packet) ServerIdentifier() net.IP {
	o, ok := p.Options.ByCode(dhcpv4.OptionServerIdentifier)
	if !ok {
		return nil
	}
	return dhcpv4.BytesToIP(o.Data)
}

// RequestedIP returns option 50, or nil if absent.
func (p *Packet) RequestedIP() net.IP {
	o, ok := p.Options.ByCode(dhcpv4.OptionRequestedIP)
	if !ok {
		return nil
	}
	return dhcpv4.BytesToIP(o.Data)
}

// IsBroadcast reports whether the broadcast flag (bit 15) is set.
func (p *Packet) IsBroadcast() bool {
	return p.Flags&dhcpv4.BroadcastFlag != 0
}

// IsRelayed reports whether GIAddr is set (the packet passed through a
// relay agent).
func (p *Packet) IsRelayed() bool {
	return p.GIAddr != nil && !p.GIAddr.Equal(net.IPv4zero)
}
