package option

import "errors"

// Error taxonomy for the option codec (see pkg/dhcpv4 for wire constants).
var (
	// ErrTruncatedOption means an option's declared length exceeds the
	// remaining buffer.
	ErrTruncatedOption = errors.New("option: truncated")

	// ErrUnknownOption means from_value/from_short_value was asked for a
	// name or code with no registry entry.
	ErrUnknownOption = errors.New("option: unregistered name or code")

	// ErrInvalidValue means a structured value does not match its kind's
	// grammar (wrong type, wrong length, out of range).
	ErrInvalidValue = errors.New("option: value violates grammar")

	// ErrDuplicateOptionCode is returned by AppendStrict when the code is
	// already present. Append (the default) replaces in place instead.
	ErrDuplicateOptionCode = errors.New("option: duplicate option code")
)
