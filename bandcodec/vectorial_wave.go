package bandcodec

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/model"
)

// Presence-mask bits, written MSB-first as {freq_present, amp_present}: a
// keyframe carrying only a frequency modulation serializes its 2-bit mask
// as 0b10.
const (
	vectorialFreqPresent = 1 << 1
	vectorialAmpPresent  = 1 << 0
)

// VectorialWaveCodec serializes a VectorialWave band: one record per
// keyframe, {presence: 2 bits, [amplitude: u8], relative_position: u16,
// [frequency: u16]}. Amplitude quantizes to [-1, 1] over 8 bits;
// keyframes that carry no amplitude or frequency modulation simply omit
// those fields.
type VectorialWaveCodec struct{}

func (VectorialWaveCodec) UID() int     { return int(model.BandVectorialWave) }
func (VectorialWaveCodec) Name() string { return "vectorial_wave" }

func (VectorialWaveCodec) Encode(band *model.Band) ([]byte, error) {
	w := bitio.NewWriter()
	for _, e := range band.Effects {
		for _, kf := range e.Keyframes {
			mask := uint64(0)
			if kf.AmplitudeMod != nil {
				mask |= vectorialAmpPresent
			}
			if kf.FrequencyMod != nil {
				mask |= vectorialFreqPresent
			}
			if err := w.WriteBits(mask, 2); err != nil {
				return nil, fmt.Errorf("bandcodec: vectorial_wave: %w", err)
			}
			if kf.AmplitudeMod != nil {
				w.WriteQuantF32(*kf.AmplitudeMod, -1, 1, 8)
			}
			w.WriteU16(uint16(keyframeInt(kf.RelativeMs)))
			if kf.FrequencyMod != nil {
				w.WriteU16(uint16(*kf.FrequencyMod))
			}
		}
	}
	return w.Bytes(), nil
}

func (VectorialWaveCodec) Decode(r *bitio.Reader, band *model.Band) error {
	if len(band.Effects) == 0 {
		return nil
	}
	effect := band.Effects[0]
	for _, kf := range effect.Keyframes {
		mask, err := r.ReadBits(2)
		if err != nil {
			return fmt.Errorf("bandcodec: vectorial_wave: %w", err)
		}
		if mask&vectorialAmpPresent != 0 {
			amp, err := r.ReadQuantF32(-1, 1, 8)
			if err != nil {
				return fmt.Errorf("bandcodec: vectorial_wave: %w", err)
			}
			kf.AmplitudeMod = floatPtr(amp)
		}
		rel, err := r.ReadU16()
		if err != nil {
			return fmt.Errorf("bandcodec: vectorial_wave: %w", err)
		}
		relI := int32(rel)
		kf.RelativeMs = &relI
		if mask&vectorialFreqPresent != 0 {
			freq, err := r.ReadU16()
			if err != nil {
				return fmt.Errorf("bandcodec: vectorial_wave: %w", err)
			}
			freqI := int32(freq)
			kf.FrequencyMod = &freqI
		}
	}
	return nil
}
