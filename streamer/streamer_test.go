package streamer

import (
	"errors"
	"testing"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/herrors"
	"github.com/mpeghaptics/hmpg/model"
)

func twoBandHaptic() *model.Haptic {
	return &model.Haptic{
		Version: "1.0",
		Perceptions: []*model.Perception{
			{
				ID:       0,
				Modality: model.ModalityVibration,
				Channels: []*model.Channel{
					{
						ID:                0,
						ReferenceDeviceID: -1,
						Bands: []*model.Band{
							{BandType: model.BandTransient, Effects: []*model.Effect{
								{PositionMs: 50, Keyframes: []*model.Keyframe{{AmplitudeMod: f32(0.5)}}},
							}},
							{BandType: model.BandTransient, Effects: []*model.Effect{
								{PositionMs: 75, Keyframes: []*model.Keyframe{{AmplitudeMod: f32(-0.5)}}},
							}},
						},
					},
				},
			},
		},
	}
}

func f32(v float32) *float32 { return &v }

func skipUnit(t *testing.T, r *bitio.Reader) {
	t.Helper()
	typ, _, _, err := readNALu(r)
	if err != nil || typ != naluTiming {
		t.Fatalf("expected timing nal, got %v err=%v", typ, err)
	}
	for {
		typ, _, _, err := readNALu(r)
		if err != nil {
			t.Fatalf("readNALu: %v", err)
		}
		if typ == naluCRC16 || typ == naluCRC32 {
			return
		}
	}
}

// TestStreamerPacketization mirrors the seed scenario: two bands of one
// effect each at 50ms and 75ms with packet_ms=100 must land in a single
// Temporal unit whose two Data NALs are ordered (t=50, t=75).
func TestStreamerPacketization(t *testing.T) {
	data, err := Encode(twoBandHaptic(), 100)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	r := bitio.NewReader(data)
	skipUnit(t, r) // Initialization

	typ, _, timingPayload, err := readNALu(r)
	if err != nil || typ != naluTiming {
		t.Fatalf("expected temporal timing nal, got %v err=%v", typ, err)
	}
	tr := bitio.NewReader(timingPayload)
	unitType, _ := tr.ReadU8()
	if mihsUnitType(unitType) != mihsTemporal {
		t.Fatalf("unit type = %d, want Temporal", unitType)
	}

	var positions []int32
	for {
		typ, _, payload, err := readNALu(r)
		if err != nil {
			t.Fatalf("readNALu: %v", err)
		}
		if typ == naluCRC16 || typ == naluCRC32 {
			break
		}
		if typ != naluData {
			t.Fatalf("unexpected nal type %d in temporal unit", typ)
		}
		pr := bitio.NewReader(payload)
		pr.ReadI16()
		pr.ReadI16()
		pr.ReadU16()
		pr.ReadU8()
		e, err := readEffectPayload(pr)
		if err != nil {
			t.Fatalf("readEffectPayload: %v", err)
		}
		positions = append(positions, e.PositionMs)
	}

	if len(positions) != 2 || positions[0] != 50 || positions[1] != 75 {
		t.Fatalf("data nal order = %v, want [50 75]", positions)
	}
}

// TestStreamerRoundTrip checks the full reassembly law: decode(encode(h))
// reproduces the effects' positions and amplitudes.
func TestStreamerRoundTrip(t *testing.T) {
	h := twoBandHaptic()
	data, err := Encode(h, 100)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Perceptions) != 1 || len(got.Perceptions[0].Channels) != 1 {
		t.Fatalf("tree shape mismatch: %+v", got)
	}
	bands := got.Perceptions[0].Channels[0].Bands
	if len(bands) != 2 {
		t.Fatalf("bands = %d, want 2", len(bands))
	}
	if len(bands[0].Effects) != 1 || bands[0].Effects[0].PositionMs != 50 {
		t.Fatalf("band 0 effects = %+v", bands[0].Effects)
	}
	if len(bands[1].Effects) != 1 || bands[1].Effects[0].PositionMs != 75 {
		t.Fatalf("band 1 effects = %+v", bands[1].Effects)
	}
	amp := bands[0].Effects[0].Keyframes[0].AmplitudeMod
	if amp == nil || *amp < 0.48 || *amp > 0.52 {
		t.Fatalf("band 0 amplitude = %v, want ~0.5", amp)
	}
}

// TestStreamerCRCRecovery corrupts the trailing CRC-16 NAL of the last
// unit by one bit; Decode must fail with CrcMismatch and the caller must
// be able to tell the stream was rejected rather than silently returning
// a partial tree.
func TestStreamerCRCRecovery(t *testing.T) {
	data, err := Encode(twoBandHaptic(), 100)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	corrupt := append([]byte(nil), data...)
	corrupt[len(corrupt)-1] ^= 0x01

	_, err = Decode(corrupt)
	if err == nil {
		t.Fatal("Decode with corrupted CRC should fail")
	}
	if !errors.Is(err, herrors.CrcMismatch) {
		t.Fatalf("error = %v, want CrcMismatch", err)
	}
}
