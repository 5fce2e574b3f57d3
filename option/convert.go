package option

import (
	"fmt"
	"net"
)

// The conversion helpers below let each Kind's EncodeValue accept either an
// idiomatic typed Go value (net.IP, uint32, []net.IP, ...) or the dynamic
// map/slice shape produced by decoding JSON-like boundary input. Both paths
// are validated the same way and produce the same grammar error.

func toIP(name string, v any) (net.IP, error) {
	switch t := v.(type) {
	case net.IP:
		if t.To4() == nil {
			return nil, fmt.Errorf("%s: not an IPv4 address: %w", name, ErrInvalidValue)
		}
		return t, nil
	case string:
		ip := net.ParseIP(t)
		if ip == nil || ip.To4() == nil {
			return nil, fmt.Errorf("%s: %q is not an IPv4 address: %w", name, t, ErrInvalidValue)
		}
		return ip, nil
	default:
		return nil, fmt.Errorf("%s: expected an IPv4 address, got %T: %w", name, v, ErrInvalidValue)
	}
}

func toIPList(name string, v any) ([]net.IP, error) {
	switch t := v.(type) {
	case []net.IP:
		if len(t) == 0 {
			return nil, fmt.Errorf("%s: empty IP list: %w", name, ErrInvalidValue)
		}
		for _, ip := range t {
			if _, err := toIP(name, ip); err != nil {
				return nil, err
			}
		}
		return t, nil
	case []string:
		if len(t) == 0 {
			return nil, fmt.Errorf("%s: empty IP list: %w", name, ErrInvalidValue)
		}
		ips := make([]net.IP, len(t))
		for i, s := range t {
			ip, err := toIP(name, s)
			if err != nil {
				return nil, err
			}
			ips[i] = ip
		}
		return ips, nil
	case []any:
		if len(t) == 0 {
			return nil, fmt.Errorf("%s: empty IP list: %w", name, ErrInvalidValue)
		}
		ips := make([]net.IP, len(t))
		for i, e := range t {
			ip, err := toIP(name, e)
			if err != nil {
				return nil, err
			}
			ips[i] = ip
		}
		return ips, nil
	default:
		return nil, fmt.Errorf("%s: expected a list of IPv4 addresses, got %T: %w", name, v, ErrInvalidValue)
	}
}

func toUint(name string, v any, bits int) (uint64, error) {
	var n int64
	var isNeg bool
	switch t := v.(type) {
	case uint8:
		n = int64(t)
	case uint16:
		n = int64(t)
	case uint32:
		n = int64(t)
	case uint64:
		if t > uint64(1)<<uint(bits)-1 {
			return 0, fmt.Errorf("%s: value %d exceeds %d-bit range: %w", name, t, bits, ErrInvalidValue)
		}
		return t, nil
	case int:
		n = int64(t)
		isNeg = t < 0
	case int32:
		n = int64(t)
		isNeg = t < 0
	case int64:
		n = t
		isNeg = t < 0
	case float64:
		n = int64(t)
		isNeg = t < 0
	default:
		return 0, fmt.Errorf("%s: expected an integer, got %T: %w", name, v, ErrInvalidValue)
	}
	if isNeg {
		return 0, fmt.Errorf("%s: value %d out of range for unsigned field: %w", name, n, ErrInvalidValue)
	}
	max := int64(1)<<uint(bits) - 1
	if n > max {
		return 0, fmt.Errorf("%s: value %d exceeds %d-bit range: %w", name, n, bits, ErrInvalidValue)
	}
	return uint64(n), nil
}

func toInt32(name string, v any) (int32, error) {
	switch t := v.(type) {
	case int32:
		return t, nil
	case int:
		return int32(t), nil
	case float64:
		return int32(t), nil
	default:
		return 0, fmt.Errorf("%s: expected an integer, got %T: %w", name, v, ErrInvalidValue)
	}
}

func toBool(name string, v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	default:
		return false, fmt.Errorf("%s: expected a bool, got %T: %w", name, v, ErrInvalidValue)
	}
}

func toStringValue(name string, v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	default:
		return "", fmt.Errorf("%s: expected a string, got %T: %w", name, v, ErrInvalidValue)
	}
}

func toByteList(name string, v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case []any:
		out := make([]byte, len(t))
		for i, e := range t {
			n, err := toUint(name, e, 8)
			if err != nil {
				return nil, err
			}
			out[i] = byte(n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: expected a byte list, got %T: %w", name, v, ErrInvalidValue)
	}
}
