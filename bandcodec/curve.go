package bandcodec

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/herrors"
	"github.com/mpeghaptics/hmpg/model"
)

// CurveCodec serializes a Curve band. A Curve band holds exactly one
// Effect carrying every keyframe in the curve: the first keyframe's
// absolute position becomes the effect's origin (and encodes as
// relative position 0), and every later keyframe stores its absolute
// position, decoded back to an offset from that origin. Each record is
// {amplitude: f32, absolute_position: u32}.
type CurveCodec struct{}

func (CurveCodec) UID() int     { return int(model.BandCurve) }
func (CurveCodec) Name() string { return "curve" }

func (CurveCodec) Encode(band *model.Band) ([]byte, error) {
	w := bitio.NewWriter()
	for _, e := range band.Effects {
		for _, kf := range e.Keyframes {
			amp := keyframeFloat(kf.AmplitudeMod)
			abs := e.PositionMs + keyframeInt(kf.RelativeMs)
			w.WriteF32(amp)
			w.WriteU32(uint32(abs))
		}
	}
	return w.Bytes(), nil
}

func (CurveCodec) Decode(r *bitio.Reader, band *model.Band) error {
	if len(band.Effects) == 0 {
		return nil
	}
	effect := band.Effects[0]
	var origin int32

	for i, kf := range effect.Keyframes {
		amp, err := r.ReadF32()
		if err != nil {
			return fmt.Errorf("bandcodec: curve: %w", err)
		}
		abs, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("bandcodec: curve: %w", err)
		}

		if i == 0 {
			origin = int32(abs)
			effect.PositionMs = origin
		}
		rel := int32(abs) - origin
		if rel < 0 {
			return fmt.Errorf("bandcodec: curve: keyframe before effect origin: %w", herrors.Inconsistent)
		}
		kf.RelativeMs = int32Ptr(rel)
		kf.AmplitudeMod = floatPtr(amp)
	}
	return nil
}
