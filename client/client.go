// Package client implements a minimal DHCPv4 DORA client: a single
// blocking GetLease call that runs DISCOVER/OFFER/REQUEST/ACK to
// completion with no internal retry.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/athena-dhcpd/dhcp4c/internal/metrics"
	"github.com/athena-dhcpd/dhcp4c/option"
	"github.com/athena-dhcpd/dhcp4c/packet"
	"github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"
)

// state names the client's position in the DORA state machine, used only
// for metrics labels.
type state string

const (
	stateInit       state = "init"
	stateSelecting  state = "selecting"
	stateRequesting state = "requesting"
	stateBound      state = "bound"
	stateFailed     state = "failed"
)

// Lease is the outcome of a successful GetLease call: every packet of the
// exchange plus the timing and the server that answered.
//
// LeaseTime, RenewalTime and RebindingTime are projected from the ACK's
// options 51/58/59 as metadata only; per spec.md's Non-goals this library
// never arms a renew/rebind timer itself.
type Lease struct {
	Discover       *packet.Packet
	Offer          *packet.Packet
	Request        *packet.Packet
	Ack            *packet.Packet
	ElapsedSeconds float64
	ServerEndpoint *net.UDPAddr

	LeaseTime     time.Duration
	RenewalTime   time.Duration
	RebindingTime time.Duration
}

// Client runs DORA exchanges against a DHCP server reachable from a local
// interface.
type Client struct {
	logger *slog.Logger

	// dial opens the client socket. Defaults to openSocket (bind
	// 0.0.0.0:68); overridable in tests so a DORA exchange can run over
	// an unprivileged loopback socket instead.
	dial func(ctx context.Context, iface string, logger *slog.Logger) (*net.UDPConn, error)

	// dst computes the destination address for outgoing packets.
	// Defaults to destinationAddr (port 67, broadcast or cfg.Server);
	// overridable in tests to target a loopback server on an ephemeral
	// port.
	dst func(cfg Config) *net.UDPAddr
}

// NewClient returns a Client that logs to logger. A nil logger falls back
// to slog.Default().
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger, dial: openSocket, dst: destinationAddr}
}

// GetLease runs a full DISCOVER/OFFER/REQUEST/ACK exchange for hwaddr and
// blocks until it is bound, NAK'd, or times out. ctx is used only while
// opening the socket; the waits for the OFFER and the ACK are bounded by
// cfg.Timeout alone and are not interrupted by canceling ctx. There is no
// internal retry: a single failed attempt returns its error.
func (c *Client) GetLease(ctx context.Context, hwaddr net.HardwareAddr, cfg Config) (*Lease, error) {
	start := time.Now()
	cur := stateInit
	logger := c.logger.With("mac", hwaddr.String())

	lease, err := c.getLease(ctx, hwaddr, cfg, logger, &cur)
	elapsed := time.Since(start).Seconds()

	metrics.LeaseAttempts.WithLabelValues(string(cur)).Inc()
	metrics.LeaseDuration.WithLabelValues(string(cur)).Observe(elapsed)
	if err != nil {
		metrics.LeaseOutcomes.WithLabelValues(outcomeReason(err)).Inc()
		return nil, err
	}
	lease.ElapsedSeconds = elapsed
	metrics.LeaseOutcomes.WithLabelValues("bound").Inc()
	return lease, nil
}

func outcomeReason(err error) string {
	switch {
	case err == nil:
		return "bound"
	case isErr(err, ErrNak):
		return "nak"
	case isErr(err, ErrTimeout):
		return "timeout"
	case isErr(err, ErrProtocolViolation):
		return "protocol_violation"
	case isErr(err, ErrSocketError):
		return "socket_error"
	default:
		return "error"
	}
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}

func (c *Client) getLease(ctx context.Context, hwaddr net.HardwareAddr, cfg Config, logger *slog.Logger, cur *state) (*Lease, error) {
	conn, err := c.dial(ctx, cfg.Interface, logger)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	dst := c.dst(cfg)

	xid, err := packet.RandomXID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSocketError, err)
	}

	*cur = stateSelecting
	discover, err := packet.Discover(hwaddr, &xid, cfg.ExtraOptions)
	if err != nil {
		return nil, fmt.Errorf("building discover: %w", err)
	}
	if cfg.Relay != nil {
		discover.GIAddr = cfg.Relay
		discover.Flags &^= dhcpv4.BroadcastFlag
	}
	logger.Debug("sending DISCOVER", "xid", xid, "dst", dst)
	if _, err := conn.WriteToUDP(discover.Encode(), dst); err != nil {
		return nil, fmt.Errorf("sending discover: %w: %w", err, ErrSocketError)
	}

	offer, serverEndpoint, err := c.waitFor(conn, cfg.timeout(), xid, hwaddr, dhcpv4.MessageTypeOffer, logger)
	if err != nil {
		return nil, err
	}

	*cur = stateRequesting
	si := offer.ServerIdentifier()
	if si == nil {
		*cur = stateFailed
		return nil, fmt.Errorf("OFFER missing server_identifier: %w", ErrProtocolViolation)
	}
	if offer.YIAddr == nil || offer.YIAddr.Equal(net.IPv4zero) {
		*cur = stateFailed
		return nil, fmt.Errorf("OFFER missing yiaddr: %w", ErrProtocolViolation)
	}

	reqOpts := option.NewOptionList()
	sidOpt, err := option.FromShortValue(dhcpv4.OptionServerIdentifier, si)
	if err != nil {
		return nil, fmt.Errorf("building server_identifier: %w", err)
	}
	reqOpts.Append(sidOpt)
	ripOpt, err := option.FromShortValue(dhcpv4.OptionRequestedIP, offer.YIAddr)
	if err != nil {
		return nil, fmt.Errorf("building requested_ip: %w", err)
	}
	reqOpts.Append(ripOpt)
	reqOpts.Merge(cfg.ExtraOptions)

	request := packet.Request(hwaddr, xid, reqOpts)
	if cfg.Relay != nil {
		request.GIAddr = cfg.Relay
		request.Flags &^= dhcpv4.BroadcastFlag
	}
	logger.Debug("sending REQUEST", "xid", xid, "dst", dst)
	if _, err := conn.WriteToUDP(request.Encode(), dst); err != nil {
		return nil, fmt.Errorf("sending request: %w: %w", err, ErrSocketError)
	}

	reply, serverEndpoint, err := c.waitForEither(conn, cfg.timeout(), xid, hwaddr, logger)
	if err != nil {
		return nil, err
	}
	if reply.MessageType() == dhcpv4.MessageTypeNak {
		*cur = stateFailed
		return nil, ErrNak
	}
	if reply.MessageType() != dhcpv4.MessageTypeAck {
		*cur = stateFailed
		return nil, fmt.Errorf("unexpected message type %v in reply to REQUEST: %w", reply.MessageType(), ErrProtocolViolation)
	}

	*cur = stateBound
	return &Lease{
		Discover:       discover,
		Offer:          offer,
		Request:        request,
		Ack:            reply,
		ServerEndpoint: serverEndpoint,
		LeaseTime:      secondsOption(reply, dhcpv4.OptionIPLeaseTime),
		RenewalTime:    secondsOption(reply, dhcpv4.OptionRenewalTime),
		RebindingTime:  secondsOption(reply, dhcpv4.OptionRebindingTime),
	}, nil
}

// secondsOption reads a uint32-seconds option (lease/renewal/rebinding
// time) from p and projects it as a time.Duration, or 0 if absent or
// malformed. This is metadata only: GetLease does not arm any timer from
// it.
func secondsOption(p *packet.Packet, code dhcpv4.OptionCode) time.Duration {
	o, ok := p.Options.ByCode(code)
	if !ok {
		return 0
	}
	secs, err := dhcpv4.BytesToUint32(o.Data)
	if err != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// matchesTransaction reports whether p correlates to the outstanding
// exchange: same xid, same client hardware address, and a BOOTREPLY.
func matchesTransaction(p *packet.Packet, xid uint32, hwaddr net.HardwareAddr) bool {
	if p.Op != dhcpv4.OpCodeBootReply || p.XID != xid {
		return false
	}
	return p.ChaddrString() == dhcpv4.FormatMAC(hwaddr)
}

// waitFor blocks until a reply of the given message type matching the
// transaction arrives, the deadline elapses (ErrTimeout), or a read fails
// (ErrSocketError). Non-matching packets are silently discarded.
func (c *Client) waitFor(conn *net.UDPConn, timeout time.Duration, xid uint32, hwaddr net.HardwareAddr, want dhcpv4.MessageType, logger *slog.Logger) (*packet.Packet, *net.UDPAddr, error) {
	deadline := time.Now().Add(timeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, nil, fmt.Errorf("setting read deadline: %w: %w", err, ErrSocketError)
	}

	buf := make([]byte, dhcpv4.MaxPacketSize)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, nil, ErrTimeout
			}
			return nil, nil, fmt.Errorf("reading reply: %w: %w", err, ErrSocketError)
		}

		p, err := packet.Decode(buf[:n])
		if err != nil {
			logger.Debug("dropping malformed reply", "error", err, "src", src)
			metrics.OffersObserved.WithLabelValues("malformed").Inc()
			continue
		}
		if !matchesTransaction(p, xid, hwaddr) {
			metrics.OffersObserved.WithLabelValues("false").Inc()
			continue
		}
		if p.MessageType() != want {
			metrics.OffersObserved.WithLabelValues("false").Inc()
			continue
		}
		metrics.OffersObserved.WithLabelValues("true").Inc()
		return p, src, nil
	}
}

// waitForEither is waitFor without a fixed expected message type, used for
// the REQUEST reply which may be an ACK or a NAK.
func (c *Client) waitForEither(conn *net.UDPConn, timeout time.Duration, xid uint32, hwaddr net.HardwareAddr, logger *slog.Logger) (*packet.Packet, *net.UDPAddr, error) {
	deadline := time.Now().Add(timeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, nil, fmt.Errorf("setting read deadline: %w: %w", err, ErrSocketError)
	}

	buf := make([]byte, dhcpv4.MaxPacketSize)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, nil, ErrTimeout
			}
			return nil, nil, fmt.Errorf("reading reply: %w: %w", err, ErrSocketError)
		}

		p, err := packet.Decode(buf[:n])
		if err != nil {
			logger.Debug("dropping malformed reply", "error", err, "src", src)
			continue
		}
		if !matchesTransaction(p, xid, hwaddr) {
			continue
		}
		switch p.MessageType() {
		case dhcpv4.MessageTypeAck, dhcpv4.MessageTypeNak:
			return p, src, nil
		default:
			continue
		}
	}
}
