// Package option implements the DHCPv4 option codec: the TLV grammar of
// RFC 2132, RFC 3396 long-option concatenation, and a static code→Kind
// registry covering every option this library recognizes.
package option

import (
	"encoding/hex"
	"fmt"

	"github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"
)

// Option is a single decoded option: its code, its raw TLV payload, and
// (via the registry) the Kind that knows how to interpret it.
type Option struct {
	Code dhcpv4.OptionCode
	Data []byte
}

// Kind returns the registry entry for this option's code, or (nil, false)
// if the code is unrecognized.
func (o Option) Kind() (*Kind, bool) {
	return LookupCode(o.Code)
}

// Value returns the option's human-readable projection: a one-entry map
// keyed by the option's canonical name, or by "unknown" for an
// unrecognized code, whose value is the hex-encoded raw bytes.
func (o Option) Value() (map[string]any, error) {
	k, ok := o.Kind()
	if !ok {
		return map[string]any{"unknown": hex.EncodeToString(o.Data)}, nil
	}
	v, err := k.Decode(o.Data)
	if err != nil {
		return nil, err
	}
	return map[string]any{k.Name: v}, nil
}

// Bytes encodes the option back to wire form. PAD and END are single
// bytes; every other code is one or more code||length||data TLVs, split
// into multiple TLVs of the same code when Data exceeds 255 bytes
// (RFC 3396).
func (o Option) Bytes() []byte {
	return Encode(o)
}

// Encode serializes a single Option to wire bytes.
func Encode(o Option) []byte {
	if o.Code == dhcpv4.OptionPad || o.Code == dhcpv4.OptionEnd {
		return []byte{byte(o.Code)}
	}
	if len(o.Data) == 0 {
		return []byte{byte(o.Code), 0}
	}
	buf := make([]byte, 0, len(o.Data)+2*(len(o.Data)/255+1))
	remaining := o.Data
	for len(remaining) > 0 {
		chunk := remaining
		if len(chunk) > 255 {
			chunk = chunk[:255]
		}
		buf = append(buf, byte(o.Code), byte(len(chunk)))
		buf = append(buf, chunk...)
		remaining = remaining[len(chunk):]
	}
	return buf
}

// DecodeOne reads a single TLV starting at offset, with no RFC 3396
// concatenation of following same-code TLVs (that is DecodeOptions's job).
// PAD and END consume exactly one byte and yield a zero-length option.
func DecodeOne(data []byte, offset int) (Option, int, error) {
	code := dhcpv4.OptionCode(data[offset])
	offset++
	if code == dhcpv4.OptionPad || code == dhcpv4.OptionEnd {
		return Option{Code: code}, offset, nil
	}
	if offset >= len(data) {
		return Option{}, offset, fmt.Errorf("option %d: missing length byte: %w", code, ErrTruncatedOption)
	}
	length := int(data[offset])
	offset++
	if offset+length > len(data) {
		return Option{}, offset, fmt.Errorf("option %d: need %d bytes, have %d: %w", code, length, len(data)-offset, ErrTruncatedOption)
	}
	value := make([]byte, length)
	copy(value, data[offset:offset+length])
	offset += length
	return Option{Code: code, Data: value}, offset, nil
}

// FromValue builds an Option from the single-entry map produced by the
// boundary API, e.g. {"client_identifier": {"hwtype": 1, "hwaddr": "..."}}.
// It fails with ErrUnknownOption when the key names no registered option,
// and with ErrInvalidValue when the nested value violates the kind's
// grammar.
func FromValue(structured map[string]any) (Option, error) {
	if len(structured) != 1 {
		return Option{}, fmt.Errorf("from_value: expected exactly one key, got %d: %w", len(structured), ErrInvalidValue)
	}
	for name, v := range structured {
		k, ok := LookupName(name)
		if !ok {
			return Option{}, fmt.Errorf("from_value: %q: %w", name, ErrUnknownOption)
		}
		data, err := k.EncodeValue(v)
		if err != nil {
			return Option{}, err
		}
		return Option{Code: k.Code, Data: data}, nil
	}
	panic("unreachable")
}

// FromShortValue wraps raw_value under the canonical name of code before
// validating and encoding it, for a caller that already knows the code
// and doesn't want to name it twice.
func FromShortValue(code dhcpv4.OptionCode, value any) (Option, error) {
	k, ok := LookupCode(code)
	if !ok {
		return Option{}, fmt.Errorf("from_short_value: code %d: %w", code, ErrUnknownOption)
	}
	data, err := k.EncodeValue(value)
	if err != nil {
		return Option{}, err
	}
	return Option{Code: code, Data: data}, nil
}

// ValueToBytes composes FromValue with Encode.
func ValueToBytes(structured map[string]any) ([]byte, error) {
	o, err := FromValue(structured)
	if err != nil {
		return nil, err
	}
	return Encode(o), nil
}
