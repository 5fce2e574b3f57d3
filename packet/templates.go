package packet

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/athena-dhcpd/dhcp4c/option"
	"github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"
)

// RandomXID draws a fresh 32-bit transaction id from a cryptographic
// random source.
func RandomXID() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("drawing transaction id: %w", err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func baseTemplate(op dhcpv4.OpCode, hwaddr net.HardwareAddr, xid uint32) *Packet {
	chaddr := make(net.HardwareAddr, 16)
	copy(chaddr, hwaddr)
	return &Packet{
		Op:      op,
		HType:   dhcpv4.HardwareTypeEthernet,
		HLen:    byte(len(hwaddr)),
		Hops:    0,
		XID:     xid,
		Secs:    0,
		Flags:   dhcpv4.BroadcastFlag,
		CIAddr:  dhcpv4.ZeroIP,
		YIAddr:  dhcpv4.ZeroIP,
		SIAddr:  dhcpv4.ZeroIP,
		GIAddr:  dhcpv4.ZeroIP,
		CHAddr:  chaddr,
		Options: option.NewOptionList(),
	}
}

func withMessageType(p *Packet, mt dhcpv4.MessageType) {
	o, err := option.FromShortValue(dhcpv4.OptionDHCPMessageType, mt)
	if err != nil {
		// mt is always one of the registered MessageType constants.
		panic(err)
	}
	p.Options.Append(o)
}

// Discover builds a DHCPDISCOVER template. If xid is nil, a random
// transaction id is drawn. extra is merged in under OptionList's
// uniqueness rule after MessageType is set, so callers can override it.
func Discover(hwaddr net.HardwareAddr, xid *uint32, extra *option.OptionList) (*Packet, error) {
	var id uint32
	if xid != nil {
		id = *xid
	} else {
		drawn, err := RandomXID()
		if err != nil {
			return nil, err
		}
		id = drawn
	}
	p := baseTemplate(dhcpv4.OpCodeBootRequest, hwaddr, id)
	withMessageType(p, dhcpv4.MessageTypeDiscover)
	p.Options.Merge(extra)
	return p, nil
}

// Offer builds a DHCPOFFER template with the given xid and offered
// address.
func Offer(hwaddr net.HardwareAddr, xid uint32, yiaddr net.IP, extra *option.OptionList) *Packet {
	p := baseTemplate(dhcpv4.OpCodeBootReply, hwaddr, xid)
	p.YIAddr = yiaddr
	withMessageType(p, dhcpv4.MessageTypeOffer)
	p.Options.Merge(extra)
	return p
}

// Request builds a DHCPREQUEST template with the given xid.
func Request(hwaddr net.HardwareAddr, xid uint32, extra *option.OptionList) *Packet {
	p := baseTemplate(dhcpv4.OpCodeBootRequest, hwaddr, xid)
	withMessageType(p, dhcpv4.MessageTypeRequest)
	p.Options.Merge(extra)
	return p
}

// Ack builds a DHCPACK template with the given xid and bound address.
func Ack(hwaddr net.HardwareAddr, xid uint32, yiaddr net.IP, extra *option.OptionList) *Packet {
	p := baseTemplate(dhcpv4.OpCodeBootReply, hwaddr, xid)
	p.YIAddr = yiaddr
	withMessageType(p, dhcpv4.MessageTypeAck)
	p.Options.Merge(extra)
	return p
}
