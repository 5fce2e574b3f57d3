package option

import (
	"fmt"
	"net"

	"github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"
)

// --- generic grammar constructors -----------------------------------------

func uint8Kind(code dhcpv4.OptionCode, name string) *Kind {
	return &Kind{
		Code: code, Name: name,
		Decode: func(data []byte) (any, error) {
			if len(data) != 1 {
				return nil, fmt.Errorf("%s: expected 1 byte, got %d: %w", name, len(data), ErrInvalidValue)
			}
			return data[0], nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			n, err := toUint(name, v, 8)
			if err != nil {
				return nil, err
			}
			return []byte{byte(n)}, nil
		},
	}
}

func uint16Kind(code dhcpv4.OptionCode, name string) *Kind {
	return &Kind{
		Code: code, Name: name,
		Decode: func(data []byte) (any, error) {
			v, err := dhcpv4.BytesToUint16(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %v: %w", name, err, ErrInvalidValue)
			}
			return v, nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			n, err := toUint(name, v, 16)
			if err != nil {
				return nil, err
			}
			return dhcpv4.Uint16ToBytes(uint16(n)), nil
		},
	}
}

func uint32Kind(code dhcpv4.OptionCode, name string) *Kind {
	return &Kind{
		Code: code, Name: name,
		Decode: func(data []byte) (any, error) {
			v, err := dhcpv4.BytesToUint32(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %v: %w", name, err, ErrInvalidValue)
			}
			return v, nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			n, err := toUint(name, v, 32)
			if err != nil {
				return nil, err
			}
			return dhcpv4.Uint32ToBytes(uint32(n)), nil
		},
	}
}

func int32Kind(code dhcpv4.OptionCode, name string) *Kind {
	return &Kind{
		Code: code, Name: name,
		Decode: func(data []byte) (any, error) {
			v, err := dhcpv4.BytesToInt32(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %v: %w", name, err, ErrInvalidValue)
			}
			return v, nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			n, err := toInt32(name, v)
			if err != nil {
				return nil, err
			}
			return dhcpv4.Int32ToBytes(n), nil
		},
	}
}

func ipKind(code dhcpv4.OptionCode, name string) *Kind {
	return &Kind{
		Code: code, Name: name,
		Decode: func(data []byte) (any, error) {
			ip := dhcpv4.BytesToIP(data)
			if ip == nil {
				return nil, fmt.Errorf("%s: expected 4 bytes, got %d: %w", name, len(data), ErrInvalidValue)
			}
			return ip, nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			ip, err := toIP(name, v)
			if err != nil {
				return nil, err
			}
			return dhcpv4.IPToBytes(ip), nil
		},
	}
}

func ipListKind(code dhcpv4.OptionCode, name string) *Kind {
	return &Kind{
		Code: code, Name: name,
		Decode: func(data []byte) (any, error) {
			ips, err := dhcpv4.BytesToIPList(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %v: %w", name, err, ErrInvalidValue)
			}
			if len(ips) == 0 {
				return nil, fmt.Errorf("%s: empty IP list: %w", name, ErrInvalidValue)
			}
			return ips, nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			ips, err := toIPList(name, v)
			if err != nil {
				return nil, err
			}
			return dhcpv4.IPListToBytes(ips), nil
		},
	}
}

func stringKind(code dhcpv4.OptionCode, name string) *Kind {
	return &Kind{
		Code: code, Name: name,
		Decode: func(data []byte) (any, error) {
			return string(data), nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			s, err := toStringValue(name, v)
			if err != nil {
				return nil, err
			}
			if len(s) == 0 {
				return nil, fmt.Errorf("%s: empty string: %w", name, ErrInvalidValue)
			}
			return []byte(s), nil
		},
	}
}

func boolKind(code dhcpv4.OptionCode, name string) *Kind {
	return &Kind{
		Code: code, Name: name,
		Decode: func(data []byte) (any, error) {
			if len(data) != 1 || (data[0] != 0 && data[0] != 1) {
				return nil, fmt.Errorf("%s: expected a single 0/1 byte: %w", name, ErrInvalidValue)
			}
			return data[0] == 1, nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			b, err := toBool(name, v)
			if err != nil {
				return nil, err
			}
			if b {
				return []byte{1}, nil
			}
			return []byte{0}, nil
		},
	}
}

// bytesKind handles opaque/carriage-only grammars: the structured value is
// the raw payload itself, round-tripped without interpretation. Used for
// VendorSpecific, RelayAgentInfo, UserClass and similar options this
// library carries but does not parse further.
func bytesKind(code dhcpv4.OptionCode, name string) *Kind {
	return &Kind{
		Code: code, Name: name,
		Decode: func(data []byte) (any, error) {
			return append([]byte(nil), data...), nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			b, err := toByteList(name, v)
			if err != nil {
				return nil, err
			}
			return b, nil
		},
	}
}

// --- special-cased grammars -------------------------------------------------

func messageTypeKind() *Kind {
	const name = "dhcp_message_type"
	return &Kind{
		Code: dhcpv4.OptionDHCPMessageType, Name: name,
		Decode: func(data []byte) (any, error) {
			if len(data) != 1 {
				return nil, fmt.Errorf("%s: expected 1 byte, got %d: %w", name, len(data), ErrInvalidValue)
			}
			return dhcpv4.MessageType(data[0]), nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			switch t := v.(type) {
			case dhcpv4.MessageType:
				return []byte{byte(t)}, nil
			case string:
				mt, ok := messageTypeByName[t]
				if !ok {
					return nil, fmt.Errorf("%s: unknown symbolic name %q: %w", name, t, ErrInvalidValue)
				}
				return []byte{byte(mt)}, nil
			default:
				n, err := toUint(name, v, 8)
				if err != nil {
					return nil, fmt.Errorf("%s: unsupported value type %T: %w", name, v, ErrInvalidValue)
				}
				return []byte{byte(n)}, nil
			}
		},
	}
}

func clientIdentifierKind() *Kind {
	const name = "client_identifier"
	return &Kind{
		Code: dhcpv4.OptionClientIdentifier, Name: name,
		Decode: func(data []byte) (any, error) {
			if len(data) < 2 {
				return nil, fmt.Errorf("%s: expected at least 2 bytes, got %d: %w", name, len(data), ErrInvalidValue)
			}
			addr := make(net.HardwareAddr, len(data)-1)
			copy(addr, data[1:])
			return ClientID{HType: data[0], Addr: addr}, nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			switch t := v.(type) {
			case ClientID:
				if len(t.Addr) == 0 {
					return nil, fmt.Errorf("%s: empty hardware address: %w", name, ErrInvalidValue)
				}
				return append([]byte{t.HType}, []byte(t.Addr)...), nil
			case map[string]any:
				htypeRaw, ok := t["hwtype"]
				if !ok {
					return nil, fmt.Errorf("%s: missing hwtype: %w", name, ErrInvalidValue)
				}
				htype, err := toUint(name, htypeRaw, 8)
				if err != nil {
					return nil, err
				}
				hwaddrRaw, ok := t["hwaddr"]
				if !ok {
					return nil, fmt.Errorf("%s: missing hwaddr: %w", name, ErrInvalidValue)
				}
				s, err := toStringValue(name, hwaddrRaw)
				if err != nil {
					return nil, err
				}
				mac, err := dhcpv4.ParseMAC(s)
				if err != nil {
					return nil, fmt.Errorf("%s: %v: %w", name, err, ErrInvalidValue)
				}
				return append([]byte{byte(htype)}, []byte(mac)...), nil
			default:
				return nil, fmt.Errorf("%s: unsupported value type %T: %w", name, v, ErrInvalidValue)
			}
		},
	}
}

// clientFQDNKind implements RFC 4702 option 81: a 1-octet flags field,
// two deprecated RCODE octets, then the domain name. The "E" flag (bit 2)
// selects RFC 1035 binary label encoding for the name instead of ASCII;
// this library only carries the ASCII form (the common case for clients),
// so a set E flag is preserved as raw bytes in the Name field untouched.
func clientFQDNKind() *Kind {
	const name = "client_fqdn"
	return &Kind{
		Code: dhcpv4.OptionClientFQDN, Name: name,
		Decode: func(data []byte) (any, error) {
			if len(data) < 3 {
				return nil, fmt.Errorf("%s: expected at least 3 bytes, got %d: %w", name, len(data), ErrInvalidValue)
			}
			return ClientFQDN{Flags: data[0], Name: string(data[3:])}, nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			switch t := v.(type) {
			case ClientFQDN:
				return append([]byte{t.Flags, 0, 0}, []byte(t.Name)...), nil
			case map[string]any:
				var flags uint64
				if raw, ok := t["flags"]; ok {
					f, err := toUint(name, raw, 8)
					if err != nil {
						return nil, err
					}
					flags = f
				}
				domainRaw, ok := t["domain_name"]
				if !ok {
					return nil, fmt.Errorf("%s: missing domain_name: %w", name, ErrInvalidValue)
				}
				domain, err := toStringValue(name, domainRaw)
				if err != nil {
					return nil, err
				}
				return append([]byte{byte(flags), 0, 0}, []byte(domain)...), nil
			default:
				return nil, fmt.Errorf("%s: unsupported value type %T: %w", name, v, ErrInvalidValue)
			}
		},
	}
}

func parameterRequestListKind() *Kind {
	const name = "parameter_request_list"
	return &Kind{
		Code: dhcpv4.OptionParameterRequestList, Name: name,
		Decode: func(data []byte) (any, error) {
			return append([]byte(nil), data...), nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			switch t := v.(type) {
			case []dhcpv4.OptionCode:
				out := make([]byte, len(t))
				for i, c := range t {
					out[i] = byte(c)
				}
				return out, nil
			default:
				return toByteList(name, v)
			}
		},
	}
}

func staticRouteKind() *Kind {
	const name = "static_route"
	return &Kind{
		Code: dhcpv4.OptionStaticRoute, Name: name,
		Decode: func(data []byte) (any, error) {
			if len(data)%8 != 0 || len(data) == 0 {
				return nil, fmt.Errorf("%s: length %d not a multiple of 8: %w", name, len(data), ErrInvalidValue)
			}
			routes := make([]RoutePair, 0, len(data)/8)
			for i := 0; i < len(data); i += 8 {
				routes = append(routes, RoutePair{
					Destination: dhcpv4.BytesToIP(data[i : i+4]),
					Gateway:     dhcpv4.BytesToIP(data[i+4 : i+8]),
				})
			}
			return routes, nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			routes, ok := v.([]RoutePair)
			if !ok {
				return nil, fmt.Errorf("%s: expected []option.RoutePair, got %T: %w", name, v, ErrInvalidValue)
			}
			if len(routes) == 0 {
				return nil, fmt.Errorf("%s: empty route list: %w", name, ErrInvalidValue)
			}
			buf := make([]byte, 0, len(routes)*8)
			for _, r := range routes {
				buf = append(buf, dhcpv4.IPToBytes(r.Destination)...)
				buf = append(buf, dhcpv4.IPToBytes(r.Gateway)...)
			}
			return buf, nil
		},
	}
}

func classlessStaticRouteKind() *Kind {
	const name = "classless_static_route"
	return &Kind{
		Code: dhcpv4.OptionClasslessStaticRoute, Name: name,
		Decode: func(data []byte) (any, error) {
			routes, err := dhcpv4.BytesToCIDRRoutes(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %v: %w", name, err, ErrInvalidValue)
			}
			return routes, nil
		},
		EncodeValue: func(v any) ([]byte, error) {
			routes, ok := v.([]dhcpv4.CIDRRoute)
			if !ok {
				return nil, fmt.Errorf("%s: expected []dhcpv4.CIDRRoute, got %T: %w", name, v, ErrInvalidValue)
			}
			return dhcpv4.CIDRRoutesToBytes(routes), nil
		},
	}
}

func init() {
	register(uint8Kind(dhcpv4.OptionDefaultIPTTL, "default_ip_ttl"))
	register(uint8Kind(dhcpv4.OptionOverload, "option_overload"))
	register(uint8Kind(dhcpv4.OptionTCPDefaultTTL, "tcp_default_ttl"))
	register(uint8Kind(dhcpv4.OptionNetBIOSNodeType, "netbios_node_type"))

	register(uint16Kind(dhcpv4.OptionBootFileSize, "boot_file_size"))
	register(uint16Kind(dhcpv4.OptionMaxDatagramReassembly, "max_datagram_reassembly_size"))
	register(uint16Kind(dhcpv4.OptionInterfaceMTU, "interface_mtu"))
	register(uint16Kind(dhcpv4.OptionMaxDHCPMessageSize, "max_dhcp_message_size"))

	register(uint32Kind(dhcpv4.OptionIPLeaseTime, "ip_address_lease_time"))
	register(uint32Kind(dhcpv4.OptionPathMTUAgingTimeout, "path_mtu_aging_timeout"))
	register(uint32Kind(dhcpv4.OptionARPCacheTimeout, "arp_cache_timeout"))
	register(uint32Kind(dhcpv4.OptionTCPKeepaliveInterval, "tcp_keepalive_interval"))
	register(uint32Kind(dhcpv4.OptionRenewalTime, "renewal_time_value"))
	register(uint32Kind(dhcpv4.OptionRebindingTime, "rebinding_time_value"))

	register(int32Kind(dhcpv4.OptionTimeOffset, "time_offset"))

	register(ipKind(dhcpv4.OptionSubnetMask, "subnet_mask"))
	register(ipKind(dhcpv4.OptionSwapServer, "swap_server"))
	register(ipKind(dhcpv4.OptionBroadcastAddress, "broadcast_address"))
	register(ipKind(dhcpv4.OptionRouterSolicitAddr, "router_solicitation_address"))
	register(ipKind(dhcpv4.OptionRequestedIP, "requested_ip_address"))
	register(ipKind(dhcpv4.OptionServerIdentifier, "server_identifier"))
	register(ipKind(dhcpv4.OptionSubnetSelection, "subnet_selection"))

	register(ipListKind(dhcpv4.OptionRouter, "router"))
	register(ipListKind(dhcpv4.OptionTimeServer, "time_server"))
	register(ipListKind(dhcpv4.OptionNameServer, "name_server"))
	register(ipListKind(dhcpv4.OptionDomainNameServer, "domain_name_server"))
	register(ipListKind(dhcpv4.OptionLogServer, "log_server"))
	register(ipListKind(dhcpv4.OptionCookieServer, "cookie_server"))
	register(ipListKind(dhcpv4.OptionLPRServer, "lpr_server"))
	register(ipListKind(dhcpv4.OptionImpressServer, "impress_server"))
	register(ipListKind(dhcpv4.OptionResourceLocationServer, "resource_location_server"))
	register(ipListKind(dhcpv4.OptionNISServers, "nis_servers"))
	register(ipListKind(dhcpv4.OptionNTPServers, "ntp_servers"))
	register(ipListKind(dhcpv4.OptionNetBIOSNameServer, "netbios_name_server"))
	register(ipListKind(dhcpv4.OptionNetBIOSDatagramDist, "netbios_datagram_distribution_server"))
	register(ipListKind(dhcpv4.OptionXWindowFontServer, "x_window_font_server"))
	register(ipListKind(dhcpv4.OptionXWindowDisplayManager, "x_window_display_manager"))
	register(ipListKind(dhcpv4.OptionTFTPServerAddress, "tftp_server_address"))

	register(stringKind(dhcpv4.OptionHostname, "hostname"))
	register(stringKind(dhcpv4.OptionMeritDumpFile, "merit_dump_file"))
	register(stringKind(dhcpv4.OptionDomainName, "domain_name"))
	register(stringKind(dhcpv4.OptionRootPath, "root_path"))
	register(stringKind(dhcpv4.OptionExtensionsPath, "extensions_path"))
	register(stringKind(dhcpv4.OptionNISDomain, "nis_domain"))
	register(stringKind(dhcpv4.OptionMessage, "message"))
	register(stringKind(dhcpv4.OptionVendorClassID, "vendor_class_identifier"))
	register(stringKind(dhcpv4.OptionTFTPServerName, "tftp_server_name"))
	register(stringKind(dhcpv4.OptionBootfileName, "bootfile_name"))
	register(stringKind(dhcpv4.OptionNetBIOSScope, "netbios_scope"))

	register(boolKind(dhcpv4.OptionIPForwarding, "ip_forwarding"))
	register(boolKind(dhcpv4.OptionNonLocalSourceRouting, "non_local_source_routing"))
	register(boolKind(dhcpv4.OptionAllSubnetsLocal, "all_subnets_local"))
	register(boolKind(dhcpv4.OptionPerformMaskDiscovery, "perform_mask_discovery"))
	register(boolKind(dhcpv4.OptionMaskSupplier, "mask_supplier"))
	register(boolKind(dhcpv4.OptionPerformRouterDiscovery, "perform_router_discovery"))
	register(boolKind(dhcpv4.OptionTrailerEncapsulation, "trailer_encapsulation"))
	register(boolKind(dhcpv4.OptionEthernetEncapsulation, "ethernet_encapsulation"))
	register(boolKind(dhcpv4.OptionTCPKeepaliveGarbage, "tcp_keepalive_garbage"))

	register(bytesKind(dhcpv4.OptionVendorSpecific, "vendor_specific_information"))
	register(bytesKind(dhcpv4.OptionUserClass, "user_class"))
	register(bytesKind(dhcpv4.OptionRelayAgentInfo, "relay_agent_information"))
	register(clientFQDNKind())
	register(bytesKind(dhcpv4.OptionNetWareIPDomain, "netware_ip_domain_name"))
	register(bytesKind(dhcpv4.OptionNetWareIPOption, "netware_ip_option"))
	register(bytesKind(dhcpv4.OptionVIVendorClass, "vendor_identifying_vendor_class"))
	register(bytesKind(dhcpv4.OptionVIVendorSpecific, "vendor_identifying_vendor_specific"))
	// PathMTUPlateauTable (25, a list of u16s) and PolicyFilter (21, IP/mask
	// pairs) are carried opaquely: no DORA template or client_test scenario
	// exercises them, and a generic TypeUint16List/TypeIPPairs grammar would
	// add a registry row with no caller, which is exactly the unused-code
	// this project avoids introducing.
	register(bytesKind(dhcpv4.OptionPathMTUPlateauTable, "path_mtu_plateau_table"))
	register(bytesKind(dhcpv4.OptionPolicyFilter, "policy_filter"))

	register(messageTypeKind())
	register(clientIdentifierKind())
	register(parameterRequestListKind())
	register(staticRouteKind())
	register(classlessStaticRouteKind())
}
