package client

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/athena-dhcpd/dhcp4c/option"
	"github.com/athena-dhcpd/dhcp4c/packet"
	"github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"
)

// fakeServer answers exactly one DORA exchange over a loopback UDP socket:
// a DISCOVER gets an OFFER for 192.168.56.3 from 192.168.56.2, and the
// following REQUEST gets an ACK for the same address.
func fakeServer(t *testing.T, conn *net.UDPConn, hwaddr net.HardwareAddr) {
	t.Helper()
	buf := make([]byte, dhcpv4.MaxPacketSize)

	serverID := net.IPv4(192, 168, 56, 2)
	yiaddr := net.IPv4(192, 168, 56, 3)

	n, src, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Errorf("server: reading DISCOVER: %v", err)
		return
	}
	discover, err := packet.Decode(buf[:n])
	if err != nil {
		t.Errorf("server: decoding DISCOVER: %v", err)
		return
	}
	if discover.MessageType() != dhcpv4.MessageTypeDiscover {
		t.Errorf("server: first message type = %v, want DHCPDISCOVER", discover.MessageType())
		return
	}

	offerOpts := option.NewOptionList()
	sidOpt, err := option.FromShortValue(dhcpv4.OptionServerIdentifier, serverID)
	if err != nil {
		t.Errorf("server: building server_identifier: %v", err)
		return
	}
	offerOpts.Append(sidOpt)
	offer := packet.Offer(hwaddr, discover.XID, yiaddr, offerOpts)
	if _, err := conn.WriteToUDP(offer.Encode(), src); err != nil {
		t.Errorf("server: sending OFFER: %v", err)
		return
	}

	n, src, err = conn.ReadFromUDP(buf)
	if err != nil {
		t.Errorf("server: reading REQUEST: %v", err)
		return
	}
	request, err := packet.Decode(buf[:n])
	if err != nil {
		t.Errorf("server: decoding REQUEST: %v", err)
		return
	}
	if request.MessageType() != dhcpv4.MessageTypeRequest {
		t.Errorf("server: second message type = %v, want DHCPREQUEST", request.MessageType())
		return
	}
	if request.XID != discover.XID {
		t.Errorf("server: REQUEST xid = %d, want %d", request.XID, discover.XID)
		return
	}

	ackOpts := option.NewOptionList()
	leaseOpt, err := option.FromShortValue(dhcpv4.OptionIPLeaseTime, uint32(3600))
	if err != nil {
		t.Errorf("server: building ip_address_lease_time: %v", err)
		return
	}
	ackOpts.Append(leaseOpt)
	renewOpt, err := option.FromShortValue(dhcpv4.OptionRenewalTime, uint32(1800))
	if err != nil {
		t.Errorf("server: building renewal_time_value: %v", err)
		return
	}
	ackOpts.Append(renewOpt)
	rebindOpt, err := option.FromShortValue(dhcpv4.OptionRebindingTime, uint32(3150))
	if err != nil {
		t.Errorf("server: building rebinding_time_value: %v", err)
		return
	}
	ackOpts.Append(rebindOpt)

	ack := packet.Ack(hwaddr, request.XID, yiaddr, ackOpts)
	if _, err := conn.WriteToUDP(ack.Encode(), src); err != nil {
		t.Errorf("server: sending ACK: %v", err)
		return
	}
}

func TestGetLeaseLoopbackDORA(t *testing.T) {
	serverConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listening for fake server: %v", err)
	}
	defer serverConn.Close()
	serverAddr := serverConn.LocalAddr().(*net.UDPAddr)

	mac, err := net.ParseMAC("8C:45:00:45:12:09")
	if err != nil {
		t.Fatalf("ParseMAC: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		fakeServer(t, serverConn, mac)
	}()

	c := NewClient(slog.New(slog.DiscardHandler))
	c.dial = func(ctx context.Context, iface string, logger *slog.Logger) (*net.UDPConn, error) {
		return net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	}
	c.dst = func(cfg Config) *net.UDPAddr {
		return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: serverAddr.Port}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	lease, err := c.GetLease(ctx, mac, Config{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("GetLease: %v", err)
	}

	<-done

	wantYIAddr := net.IPv4(192, 168, 56, 3)
	if !lease.Ack.YIAddr.Equal(wantYIAddr) {
		t.Errorf("Ack.YIAddr = %v, want %v", lease.Ack.YIAddr, wantYIAddr)
	}
	xid := lease.Discover.XID
	for name, p := range map[string]*packet.Packet{
		"Offer": lease.Offer, "Request": lease.Request, "Ack": lease.Ack,
	} {
		if p.XID != xid {
			t.Errorf("%s.XID = %d, want %d (matching Discover)", name, p.XID, xid)
		}
	}

	if lease.LeaseTime != 3600*time.Second {
		t.Errorf("LeaseTime = %v, want 3600s", lease.LeaseTime)
	}
	if lease.RenewalTime != 1800*time.Second {
		t.Errorf("RenewalTime = %v, want 1800s", lease.RenewalTime)
	}
	if lease.RebindingTime != 3150*time.Second {
		t.Errorf("RebindingTime = %v, want 3150s", lease.RebindingTime)
	}
}

func TestGetLeaseTimesOutWithNoServer(t *testing.T) {
	mac, err := net.ParseMAC("8C:45:00:45:12:09")
	if err != nil {
		t.Fatalf("ParseMAC: %v", err)
	}

	c := NewClient(slog.New(slog.DiscardHandler))
	c.dial = func(ctx context.Context, iface string, logger *slog.Logger) (*net.UDPConn, error) {
		return net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	}
	c.dst = func(cfg Config) *net.UDPAddr {
		// Nobody listens on this port.
		return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1}
	}

	ctx := context.Background()
	_, err = c.GetLease(ctx, mac, Config{Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatal("expected a timeout error, got nil")
	}
	if !isErr(err, ErrTimeout) {
		t.Errorf("GetLease err = %v, want wrapping ErrTimeout", err)
	}
}

func TestGetLeaseOfferMissingServerIdentifier(t *testing.T) {
	serverConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listening for fake server: %v", err)
	}
	defer serverConn.Close()
	serverAddr := serverConn.LocalAddr().(*net.UDPAddr)

	mac, err := net.ParseMAC("8C:45:00:45:12:09")
	if err != nil {
		t.Fatalf("ParseMAC: %v", err)
	}

	go func() {
		buf := make([]byte, dhcpv4.MaxPacketSize)
		n, src, err := serverConn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		discover, err := packet.Decode(buf[:n])
		if err != nil {
			return
		}
		// No ServerIdentifier option: the client must reject this as a
		// protocol violation instead of sending a malformed REQUEST.
		offer := packet.Offer(mac, discover.XID, net.IPv4(192, 168, 56, 3), nil)
		serverConn.WriteToUDP(offer.Encode(), src)
	}()

	c := NewClient(slog.New(slog.DiscardHandler))
	c.dial = func(ctx context.Context, iface string, logger *slog.Logger) (*net.UDPConn, error) {
		return net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	}
	c.dst = func(cfg Config) *net.UDPAddr {
		return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: serverAddr.Port}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = c.GetLease(ctx, mac, Config{Timeout: 2 * time.Second})
	if err == nil {
		t.Fatal("expected a protocol violation error, got nil")
	}
	if !isErr(err, ErrProtocolViolation) {
		t.Errorf("GetLease err = %v, want wrapping ErrProtocolViolation", err)
	}
}

func TestGetLeaseNak(t *testing.T) {
	serverConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listening for fake server: %v", err)
	}
	defer serverConn.Close()
	serverAddr := serverConn.LocalAddr().(*net.UDPAddr)

	mac, err := net.ParseMAC("8C:45:00:45:12:09")
	if err != nil {
		t.Fatalf("ParseMAC: %v", err)
	}

	go func() {
		buf := make([]byte, dhcpv4.MaxPacketSize)
		n, src, err := serverConn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		discover, err := packet.Decode(buf[:n])
		if err != nil {
			return
		}
		offerOpts := option.NewOptionList()
		sidOpt, _ := option.FromShortValue(dhcpv4.OptionServerIdentifier, net.IPv4(192, 168, 56, 2))
		offerOpts.Append(sidOpt)
		offer := packet.Offer(mac, discover.XID, net.IPv4(192, 168, 56, 3), offerOpts)
		serverConn.WriteToUDP(offer.Encode(), src)

		n, src, err = serverConn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		request, err := packet.Decode(buf[:n])
		if err != nil {
			return
		}
		nakOpts := option.NewOptionList()
		mtOpt, _ := option.FromShortValue(dhcpv4.OptionDHCPMessageType, dhcpv4.MessageTypeNak)
		nakOpts.Append(mtOpt)
		nak := packet.Ack(mac, request.XID, net.IPv4zero, nil)
		nak.Options = nakOpts
		serverConn.WriteToUDP(nak.Encode(), src)
	}()

	c := NewClient(slog.New(slog.DiscardHandler))
	c.dial = func(ctx context.Context, iface string, logger *slog.Logger) (*net.UDPConn, error) {
		return net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	}
	c.dst = func(cfg Config) *net.UDPAddr {
		return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: serverAddr.Port}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = c.GetLease(ctx, mac, Config{Timeout: 2 * time.Second})
	if err == nil {
		t.Fatal("expected an error for a NAK reply")
	}
	if !isErr(err, ErrNak) {
		t.Errorf("GetLease err = %v, want wrapping ErrNak", err)
	}
}
