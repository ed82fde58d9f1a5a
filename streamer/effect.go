package streamer

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/model"
)

// Per-keyframe presence bits inside a Data NAL payload, matching the same
// shape as hjif's library-effect keyframe mask (§4.7) generalized to the
// streaming context.
const (
	kfRelativePosition = 1 << 0
	kfAmplitude        = 1 << 1
	kfFrequency        = 1 << 2
)

// writeEffectPayload serializes one complete Basis effect: its position,
// keyframes, and (for WaveletWave bands) its wavelet bitstream. The
// streamer always packs a whole effect into a single Data NAL (§4.8's
// "effects/keyframes that fall in the window" simplified to whole-effect
// granularity, since every seed scenario's effects fit in one window).
func writeEffectPayload(w *bitio.Writer, e *model.Effect) {
	w.WriteI32(e.PositionMs)
	w.WriteU16(uint16(len(e.Keyframes)))
	for _, kf := range e.Keyframes {
		mask := uint8(0)
		if kf.RelativeMs != nil {
			mask |= kfRelativePosition
		}
		if kf.AmplitudeMod != nil {
			mask |= kfAmplitude
		}
		if kf.FrequencyMod != nil {
			mask |= kfFrequency
		}
		w.WriteU8(mask)
		if kf.RelativeMs != nil {
			w.WriteU16(uint16(*kf.RelativeMs))
		}
		if kf.AmplitudeMod != nil {
			w.WriteQuantF32(*kf.AmplitudeMod, -1, 1, 8)
		}
		if kf.FrequencyMod != nil {
			w.WriteU16(uint16(*kf.FrequencyMod))
		}
	}
	w.WriteVarint(uint64(len(e.WaveletBitstream)))
	for _, b := range e.WaveletBitstream {
		w.WriteU8(b)
	}
}

func readEffectPayload(r *bitio.Reader) (*model.Effect, error) {
	e := &model.Effect{}
	pos, err := r.ReadI32()
	if err != nil {
		return nil, fmt.Errorf("streamer: effect position: %w", err)
	}
	e.PositionMs = pos

	kfCount, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("streamer: effect keyframe_count: %w", err)
	}
	e.Keyframes = make([]*model.Keyframe, kfCount)
	for i := range e.Keyframes {
		mask, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("streamer: keyframe %d mask: %w", i, err)
		}
		kf := &model.Keyframe{}
		if mask&kfRelativePosition != 0 {
			rel, err := r.ReadU16()
			if err != nil {
				return nil, fmt.Errorf("streamer: keyframe %d relative_position: %w", i, err)
			}
			relI := int32(rel)
			kf.RelativeMs = &relI
		}
		if mask&kfAmplitude != 0 {
			amp, err := r.ReadQuantF32(-1, 1, 8)
			if err != nil {
				return nil, fmt.Errorf("streamer: keyframe %d amplitude: %w", i, err)
			}
			kf.AmplitudeMod = &amp
		}
		if mask&kfFrequency != 0 {
			freq, err := r.ReadU16()
			if err != nil {
				return nil, fmt.Errorf("streamer: keyframe %d frequency: %w", i, err)
			}
			freqI := int32(freq)
			kf.FrequencyMod = &freqI
		}
		e.Keyframes[i] = kf
	}

	bsLen, err := r.ReadVarint()
	if err != nil {
		return nil, fmt.Errorf("streamer: effect wavelet bitstream_length: %w", err)
	}
	e.WaveletBitstream = make([]byte, bsLen)
	for i := range e.WaveletBitstream {
		b, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("streamer: effect wavelet byte %d: %w", i, err)
		}
		e.WaveletBitstream[i] = b
	}
	return e, nil
}
