package client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"syscall"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"
)

// openSocket binds a UDP4 socket to 0.0.0.0:68 with SO_REUSEADDR and
// SO_BROADCAST set, optionally pinned to a single interface via
// SO_BINDTODEVICE.
func openSocket(ctx context.Context, iface string, logger *slog.Logger) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var firstErr error
			c.Control(func(fd uintptr) {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
					logger.Warn("failed to set SO_REUSEADDR", "error", err)
				}
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
					logger.Warn("failed to set SO_BROADCAST", "error", err)
					firstErr = err
				}
				if iface != "" {
					if err := unix.SetsockoptString(int(fd), unix.SOL_SOCKET, unix.SO_BINDTODEVICE, iface); err != nil {
						logger.Debug("SO_BINDTODEVICE not available", "interface", iface, "error", err)
					}
				}
			})
			return firstErr
		},
	}

	addr := fmt.Sprintf(":%d", dhcpv4.ClientPort)
	pc, err := lc.ListenPacket(ctx, "udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w: %w", addr, err, ErrSocketError)
	}
	conn := pc.(*net.UDPConn)

	if iface != "" {
		p := ipv4.NewPacketConn(conn)
		if ifi, err := net.InterfaceByName(iface); err == nil {
			if err := p.SetMulticastInterface(ifi); err != nil {
				logger.Debug("SetMulticastInterface", "interface", iface, "error", err)
			}
		} else {
			logger.Debug("interface lookup failed", "interface", iface, "error", err)
		}
	}

	return conn, nil
}

func destinationAddr(cfg Config) *net.UDPAddr {
	if cfg.SendBroadcast || cfg.Server == nil {
		return &net.UDPAddr{IP: dhcpv4.BroadcastIP, Port: dhcpv4.ServerPort}
	}
	return &net.UDPAddr{IP: cfg.Server, Port: dhcpv4.ServerPort}
}
