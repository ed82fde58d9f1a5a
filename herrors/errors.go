// Package herrors provides the sentinel errors shared across the haptics
// codec core, following the same errors.New + errors.Is convention the
// codec package uses for ErrCodecNotFound et al.
package herrors

import "errors"

var (
	// Truncated is returned when a reader runs past the end of a bitstream.
	Truncated = errors.New("haptics: truncated bitstream")

	// BadMagic indicates a file/unit header did not start with the expected marker.
	BadMagic = errors.New("haptics: bad magic")

	// BadVersion indicates a version string the reader does not know how to parse.
	BadVersion = errors.New("haptics: bad version")

	// RangeViolation indicates an enum tag or field value outside its valid range.
	RangeViolation = errors.New("haptics: value out of range")

	// ReferenceUnresolved indicates an effect references a library id that
	// does not exist within its perception.
	ReferenceUnresolved = errors.New("haptics: unresolved reference effect")

	// CrcMismatch indicates a MIHS unit's CRC trailer did not match its payload.
	CrcMismatch = errors.New("haptics: crc mismatch")

	// BudgetTooSmall indicates a SPIHT bit budget below the header minimum.
	BudgetTooSmall = errors.New("haptics: bit budget too small")

	// Inconsistent indicates a data-model invariant was violated.
	Inconsistent = errors.New("haptics: inconsistent data")

	// Overflow indicates a BitIO write value exceeded its declared bit width.
	Overflow = errors.New("haptics: value overflows bit width")
)
