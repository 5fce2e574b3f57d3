package packet

import "errors"

// ErrMalformedPacket is returned for a header shorter than 240 octets or a
// bad magic cookie.
var ErrMalformedPacket = errors.New("packet: malformed")
