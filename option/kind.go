package option

import "github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"

// Kind is the registry entry for one option code: its canonical name and
// the pair of functions translating between wire bytes and a structured
// Go value. Dispatch is data-driven, a static map keyed on code, rather
// than a class hierarchy, so adding a new RFC 2132 option means adding one
// table row, not a new type implementing a shared interface.
type Kind struct {
	Code dhcpv4.OptionCode
	Name string

	// Decode turns raw TLV data (already RFC 3396-concatenated) into the
	// kind's structured value.
	Decode func(data []byte) (any, error)

	// EncodeValue turns a structured value into wire bytes. It accepts
	// both idiomatic Go types (net.IP, uint32, []net.IP, ...) and the
	// generic map/slice/string/float64 shapes a boundary caller might
	// hand it; unsupported shapes fail with ErrInvalidValue.
	EncodeValue func(value any) ([]byte, error)
}

var (
	kindsByCode = map[dhcpv4.OptionCode]*Kind{}
	kindsByName = map[string]*Kind{}
)

func register(k *Kind) {
	kindsByCode[k.Code] = k
	kindsByName[k.Name] = k
}

// LookupCode returns the registered kind for a code, or (nil, false) for an
// unregistered code.
func LookupCode(code dhcpv4.OptionCode) (*Kind, bool) {
	k, ok := kindsByCode[code]
	return k, ok
}

// LookupName returns the registered kind for a canonical name, or
// (nil, false) if no option is registered under that name.
func LookupName(name string) (*Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}
