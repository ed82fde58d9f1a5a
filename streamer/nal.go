// Package streamer implements the MIHS Unit / NAL Unit packetizer described
// in spec §4.8: it slices a Haptic tree into an ordered byte stream and
// reassembles one back from it.
package streamer

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/herrors"
)

// naluType tags a NAL Unit's payload kind. 4 bits, per §4.8's NAL header.
type naluType uint8

const (
	naluTiming naluType = iota
	naluMetadataHaptics
	naluMetadataPerception
	naluMetadataChannel
	naluMetadataBand
	naluEffectLibrary
	naluData
	naluSpatialData
	naluSilent
	naluCRC16
	naluCRC32
)

// mihsUnitType tags the MIHS Unit a run of NALs belongs to.
type mihsUnitType uint8

const (
	mihsInitialization mihsUnitType = iota
	mihsTemporal
	mihsSpatial
	mihsSilent
)

// auType marks whether an Access Unit is independently decodable.
type auType uint8

const (
	auRAU auType = iota
	auDAU
)

// NAL header: {type: 4 bits, level: 4 bits, reserved: 8 bits, payload_length: 16 bits},
// byte-aligned (4 bytes), followed by payload_length bytes of payload.
const naluHeaderBytes = 4

func writeNALu(w *bitio.Writer, typ naluType, level uint8, payload []byte) {
	w.PadToByte()
	_ = w.WriteBits(uint64(typ), 4)
	_ = w.WriteBits(uint64(level), 4)
	w.WriteU8(0) // reserved
	w.WriteU16(uint16(len(payload)))
	for _, b := range payload {
		w.WriteU8(b)
	}
}

func readNALu(r *bitio.Reader) (naluType, uint8, []byte, error) {
	r.PadToByte()
	typBits, err := r.ReadBits(4)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("streamer: nal type: %w", err)
	}
	lvlBits, err := r.ReadBits(4)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("streamer: nal level: %w", err)
	}
	if _, err := r.ReadU8(); err != nil { // reserved
		return 0, 0, nil, fmt.Errorf("streamer: nal reserved: %w", err)
	}
	length, err := r.ReadU16()
	if err != nil {
		return 0, 0, nil, fmt.Errorf("streamer: nal payload_length: %w", err)
	}
	payload := make([]byte, length)
	for i := range payload {
		b, err := r.ReadU8()
		if err != nil {
			return 0, 0, nil, fmt.Errorf("streamer: nal payload byte %d: %w", i, err)
		}
		payload[i] = b
	}
	return naluType(typBits), uint8(lvlBits), payload, nil
}

func (t naluType) valid() bool { return t <= naluCRC32 }

func validMIHSType(t mihsUnitType) bool { return t <= mihsSilent }

var errBadUnitType = fmt.Errorf("streamer: unrecognized mihs unit type: %w", herrors.RangeViolation)
