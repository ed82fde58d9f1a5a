package streamer

import (
	"fmt"
	"math"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/model"
)

// writeLibraryEffect/readLibraryEffect mirror hjif's effect-library layout
// (§4.7) but live in this package rather than being imported from hjif,
// the same way bandcodec keeps its own keyframe helpers separate from
// hjif's: each wire-format component owns its serialization of the shared
// Effect/Keyframe shapes rather than reaching across packages for it.
func writeLibraryEffect(w *bitio.Writer, e *model.Effect) {
	w.WriteI32(e.ID)
	w.WriteI32(e.PositionMs)
	w.WriteQuantF32(e.Phase, 0, maxPhase, 16)
	w.WriteU8(uint8(e.BaseSignal))
	w.WriteU8(uint8(e.Type))

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

	w.WriteU16(uint16(len(e.Timeline)))
	for _, te := range e.Timeline {
		writeLibraryEffect(w, te)
	}
}

func readLibraryEffect(r *bitio.Reader) (*model.Effect, error) {
	e := &model.Effect{}
	var err error
	if e.ID, err = r.ReadI32(); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if e.PositionMs, err = r.ReadI32(); err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	if e.Phase, err = r.ReadQuantF32(0, maxPhase, 16); err != nil {
		return nil, fmt.Errorf("phase: %w", err)
	}
	baseSignal, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("base_signal: %w", err)
	}
	e.BaseSignal = model.BaseSignal(baseSignal)
	effectType, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("effect_type: %w", err)
	}
	e.Type = model.EffectType(effectType)

	kfCount, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("keyframe_count: %w", err)
	}
	e.Keyframes = make([]*model.Keyframe, kfCount)
	for i := range e.Keyframes {
		mask, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("keyframe %d mask: %w", i, err)
		}
		kf := &model.Keyframe{}
		if mask&kfRelativePosition != 0 {
			rel, err := r.ReadU16()
			if err != nil {
				return nil, fmt.Errorf("keyframe %d position: %w", i, err)
			}
			relI := int32(rel)
			kf.RelativeMs = &relI
		}
		if mask&kfAmplitude != 0 {
			amp, err := r.ReadQuantF32(-1, 1, 8)
			if err != nil {
				return nil, fmt.Errorf("keyframe %d amplitude: %w", i, err)
			}
			kf.AmplitudeMod = &amp
		}
		if mask&kfFrequency != 0 {
			freq, err := r.ReadU16()
			if err != nil {
				return nil, fmt.Errorf("keyframe %d frequency: %w", i, err)
			}
			freqI := int32(freq)
			kf.FrequencyMod = &freqI
		}
		e.Keyframes[i] = kf
	}

	timelineCount, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("timeline_count: %w", err)
	}
	e.Timeline = make([]*model.Effect, timelineCount)
	for i := range e.Timeline {
		te, err := readLibraryEffect(r)
		if err != nil {
			return nil, fmt.Errorf("timeline effect %d: %w", i, err)
		}
		e.Timeline[i] = te
	}
	return e, nil
}

const maxPhase = 2 * math.Pi
