package option

import (
	"fmt"

	"github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"
)

// OptionList is an ordered container of Option values with a uniqueness
// invariant: at most one entry per code. Appending a duplicate code
// replaces the existing entry in its current position; iteration always
// yields insertion order. The End sentinel is never a stored entry: it is
// implicit, auto-emitted by Encode and auto-consumed by DecodeOptions.
//
// OptionList is not internally synchronized; concurrent callers must
// serialize access themselves.
type OptionList struct {
	order  []dhcpv4.OptionCode
	byCode map[dhcpv4.OptionCode]Option
}

// NewOptionList returns an empty OptionList.
func NewOptionList() *OptionList {
	return &OptionList{byCode: make(map[dhcpv4.OptionCode]Option)}
}

// Append adds o, replacing any existing entry with the same code in place.
func (l *OptionList) Append(o Option) {
	if l.byCode == nil {
		l.byCode = make(map[dhcpv4.OptionCode]Option)
	}
	if _, exists := l.byCode[o.Code]; !exists {
		l.order = append(l.order, o.Code)
	}
	l.byCode[o.Code] = o
}

// AppendStrict adds o, failing with ErrDuplicateOptionCode if the code is
// already present instead of silently replacing it.
func (l *OptionList) AppendStrict(o Option) error {
	if l.byCode != nil {
		if _, exists := l.byCode[o.Code]; exists {
			return fmt.Errorf("code %d: %w", o.Code, ErrDuplicateOptionCode)
		}
	}
	l.Append(o)
	return nil
}

// ByCode returns the option with the given code, or (Option{}, false) if
// absent.
func (l *OptionList) ByCode(code dhcpv4.OptionCode) (Option, bool) {
	o, ok := l.byCode[code]
	return o, ok
}

// Remove deletes the entry with the given code, if present. Its return
// reports whether an entry was removed.
func (l *OptionList) Remove(code dhcpv4.OptionCode) bool {
	if _, ok := l.byCode[code]; !ok {
		return false
	}
	delete(l.byCode, code)
	for i, c := range l.order {
		if c == code {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Options returns the entries in insertion order. The returned slice is a
// fresh copy; mutating it does not affect the list.
func (l *OptionList) Options() []Option {
	out := make([]Option, 0, len(l.order))
	for _, code := range l.order {
		out = append(out, l.byCode[code])
	}
	return out
}

// Len returns the number of entries.
func (l *OptionList) Len() int {
	return len(l.order)
}

// Clone returns a deep copy.
func (l *OptionList) Clone() *OptionList {
	clone := NewOptionList()
	for _, o := range l.Options() {
		data := append([]byte(nil), o.Data...)
		clone.Append(Option{Code: o.Code, Data: data})
	}
	return clone
}

// Merge appends every entry of other into l under the uniqueness rule
// (duplicates from other replace l's existing entries). Used to fold a
// caller's extra_options into a template packet.
func (l *OptionList) Merge(other *OptionList) {
	if other == nil {
		return
	}
	for _, o := range other.Options() {
		l.Append(o)
	}
}

// Encode serializes every entry in insertion order followed by exactly one
// END sentinel byte. PAD is never stored, so nothing needs skipping here.
func (l *OptionList) Encode() []byte {
	var buf []byte
	for _, code := range l.order {
		buf = append(buf, Encode(l.byCode[code])...)
	}
	buf = append(buf, byte(dhcpv4.OptionEnd))
	return buf
}

// DecodeOptions parses the options region of a packet: PAD bytes are
// consumed and dropped, decoding stops at the first END (255) or when the
// buffer is exhausted, and consecutive TLVs sharing a code are
// concatenated before being stored (RFC 3396 long options).
func DecodeOptions(data []byte) (*OptionList, error) {
	list := NewOptionList()
	i := 0
	for i < len(data) {
		code := dhcpv4.OptionCode(data[i])
		if code == dhcpv4.OptionPad {
			i++
			continue
		}
		if code == dhcpv4.OptionEnd {
			break
		}

		o, next, err := DecodeOne(data, i)
		if err != nil {
			return nil, err
		}
		value := o.Data
		i = next

		for i < len(data) && dhcpv4.OptionCode(data[i]) == code {
			more, next2, err := DecodeOne(data, i)
			if err != nil {
				return nil, err
			}
			value = append(value, more.Data...)
			i = next2
		}

		list.Append(Option{Code: code, Data: value})
	}
	return list, nil
}
