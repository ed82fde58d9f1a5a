// Package codec provides the dispatch interface and registry that
// bandcodec uses to pick the right serialization for a Band's BandType,
// keyed by both a string name and a small integer UID (§4.6).
package codec

import (
	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/model"
)

// Codec is the universal interface for all band serializations.
type Codec interface {
	// Encode serializes a single Band's Effects into its binary body,
	// not including the band_type/band_header fields HJIFCodec writes itself.
	Encode(band *model.Band) ([]byte, error)

	// Decode reads a binary body from r into band.Effects, in place.
	// band.Effects (and, for Curve/VectorialWave, its single effect's
	// Keyframes) arrive pre-sized by bandcodec.ReadHeader, so Decode knows
	// exactly how many records to consume rather than reading to EOF.
	Decode(r *bitio.Reader, band *model.Band) error

	// UID returns the band_type code this codec handles (0-3, §3).
	UID() int

	// Name returns a human-readable name, e.g. "transient".
	Name() string
}
