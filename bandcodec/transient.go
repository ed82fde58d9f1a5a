// Package bandcodec implements the four Band body serializations
// (Transient, Curve, VectorialWave, WaveletWave) as codec.Codec
// implementations, registered into the shared registry under both their
// name and their model.BandType UID. HJIFCodec dispatches to these after
// writing each Band's header.
package bandcodec

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/codec"
	"github.com/mpeghaptics/hmpg/model"
)

func init() {
	codec.Register(&TransientCodec{})
	codec.Register(&CurveCodec{})
	codec.Register(&VectorialWaveCodec{})
	codec.Register(&WaveletWaveCodec{})
}

// TransientCodec serializes a Transient band: one fixed-layout record per
// keyframe, {amplitude: f32, absolute_position_ms: u32, frequency: u32}.
type TransientCodec struct{}

func (TransientCodec) UID() int     { return int(model.BandTransient) }
func (TransientCodec) Name() string { return "transient" }

func (TransientCodec) Encode(band *model.Band) ([]byte, error) {
	w := bitio.NewWriter()
	for _, e := range band.Effects {
		for _, kf := range e.Keyframes {
			amp := keyframeFloat(kf.AmplitudeMod)
			pos := e.PositionMs + keyframeInt(kf.RelativeMs)
			freq := keyframeInt(kf.FrequencyMod)
			w.WriteF32(amp)
			w.WriteU32(uint32(pos))
			w.WriteU32(uint32(freq))
		}
	}
	return w.Bytes(), nil
}

func (TransientCodec) Decode(r *bitio.Reader, band *model.Band) error {
	for _, e := range band.Effects {
		amp, err := r.ReadF32()
		if err != nil {
			return fmt.Errorf("bandcodec: transient: %w", err)
		}
		pos, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("bandcodec: transient: %w", err)
		}
		freq, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("bandcodec: transient: %w", err)
		}
		freqI := int32(freq)
		e.PositionMs = int32(pos)
		e.Keyframes = []*model.Keyframe{
			{AmplitudeMod: floatPtr(amp), FrequencyMod: &freqI},
		}
	}
	return nil
}

func keyframeFloat(p *float32) float32 {
	if p == nil {
		return 0
	}
	return *p
}

func keyframeInt(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}

func floatPtr(v float32) *float32 { return &v }
func int32Ptr(v int32) *int32     { return &v }
