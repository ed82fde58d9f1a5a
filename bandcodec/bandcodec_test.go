package bandcodec_test

import (
	"testing"

	"github.com/mpeghaptics/hmpg/bandcodec"
	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/model"
)

func f32(v float32) *float32 { return &v }
func i32(v int32) *int32     { return &v }

func roundTrip(t *testing.T, band *model.Band, codec interface {
	Encode(*model.Band) ([]byte, error)
	Decode(*bitio.Reader, *model.Band) error
}) *model.Band {
	t.Helper()
	body, err := codec.Encode(band)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	hw := bitio.NewWriter()
	bandcodec.WriteHeader(hw, band)
	header := hw.Bytes()

	full := append(append([]byte{}, header...), body...)
	r := bitio.NewReader(full)

	got := &model.Band{}
	if err := bandcodec.ReadHeader(r, got); err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if err := codec.Decode(r, got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestTransientRoundTrip(t *testing.T) {
	band := &model.Band{
		BandType: model.BandTransient,
		Effects: []*model.Effect{
			{PositionMs: 100, Keyframes: []*model.Keyframe{{AmplitudeMod: f32(0.5), FrequencyMod: i32(200)}}},
			{PositionMs: 250, Keyframes: []*model.Keyframe{{AmplitudeMod: f32(-0.25), FrequencyMod: i32(80)}}},
		},
	}
	got := roundTrip(t, band, bandcodec.TransientCodec{})
	if len(got.Effects) != 2 {
		t.Fatalf("len(Effects) = %d, want 2", len(got.Effects))
	}
	if got.Effects[0].PositionMs != 100 || *got.Effects[0].Keyframes[0].FrequencyMod != 200 {
		t.Errorf("effect 0 mismatch: %+v", got.Effects[0])
	}
	if got.Effects[1].PositionMs != 250 || *got.Effects[1].Keyframes[0].AmplitudeMod != -0.25 {
		t.Errorf("effect 1 mismatch: %+v", got.Effects[1])
	}
}

func TestCurveRoundTripSingleEffectManyKeyframes(t *testing.T) {
	band := &model.Band{
		BandType: model.BandCurve,
		Effects: []*model.Effect{
			{PositionMs: 1000, Keyframes: []*model.Keyframe{
				{RelativeMs: i32(0), AmplitudeMod: f32(0.1)},
				{RelativeMs: i32(10), AmplitudeMod: f32(0.2)},
				{RelativeMs: i32(25), AmplitudeMod: f32(0.3)},
			}},
		},
	}
	got := roundTrip(t, band, bandcodec.CurveCodec{})
	if len(got.Effects) != 1 {
		t.Fatalf("len(Effects) = %d, want 1", len(got.Effects))
	}
	e := got.Effects[0]
	if e.PositionMs != 1000 {
		t.Errorf("PositionMs = %d, want 1000", e.PositionMs)
	}
	if len(e.Keyframes) != 3 {
		t.Fatalf("len(Keyframes) = %d, want 3", len(e.Keyframes))
	}
	wantRel := []int32{0, 10, 25}
	for i, kf := range e.Keyframes {
		if *kf.RelativeMs != wantRel[i] {
			t.Errorf("keyframe %d RelativeMs = %d, want %d", i, *kf.RelativeMs, wantRel[i])
		}
	}
}

func TestVectorialWaveRoundTripOptionalFields(t *testing.T) {
	freq := i32(150)
	band := &model.Band{
		BandType: model.BandVectorialWave,
		Effects: []*model.Effect{
			{Keyframes: []*model.Keyframe{
				{RelativeMs: i32(5), AmplitudeMod: f32(0.5)},
				{RelativeMs: i32(20), FrequencyMod: freq},
				{RelativeMs: i32(40)},
			}},
		},
	}
	got := roundTrip(t, band, bandcodec.VectorialWaveCodec{})
	if len(got.Effects) != 1 || len(got.Effects[0].Keyframes) != 3 {
		t.Fatalf("unexpected shape: %+v", got.Effects)
	}
	kfs := got.Effects[0].Keyframes
	if kfs[0].AmplitudeMod == nil || kfs[0].FrequencyMod != nil {
		t.Errorf("keyframe 0 presence mismatch: %+v", kfs[0])
	}
	if kfs[1].FrequencyMod == nil || *kfs[1].FrequencyMod != 150 {
		t.Errorf("keyframe 1 frequency mismatch: %+v", kfs[1])
	}
	if kfs[2].AmplitudeMod != nil || kfs[2].FrequencyMod != nil {
		t.Errorf("keyframe 2 should carry neither optional field: %+v", kfs[2])
	}
}

func TestWaveletWaveRoundTrip(t *testing.T) {
	band := &model.Band{
		BandType: model.BandWaveletWave,
		Effects: []*model.Effect{
			{PositionMs: 0, WaveletBitstream: []byte{0x01, 0x02, 0x03}},
			{PositionMs: 64, WaveletBitstream: []byte{0xff}},
		},
	}
	got := roundTrip(t, band, bandcodec.WaveletWaveCodec{})
	if len(got.Effects) != 2 {
		t.Fatalf("len(Effects) = %d, want 2", len(got.Effects))
	}
	if got.Effects[0].PositionMs != 0 || string(got.Effects[0].WaveletBitstream) != "\x01\x02\x03" {
		t.Errorf("effect 0 mismatch: %+v", got.Effects[0])
	}
	if got.Effects[1].PositionMs != 64 || string(got.Effects[1].WaveletBitstream) != "\xff" {
		t.Errorf("effect 1 mismatch: %+v", got.Effects[1])
	}
}
