package hjif

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/herrors"
	"github.com/mpeghaptics/hmpg/model"
)

func writePerceptions(w *bitio.Writer, perceptions []*model.Perception) error {
	w.WriteU16(uint16(len(perceptions)))
	for _, p := range perceptions {
		w.WriteI16(p.ID)
		w.WriteU16(uint16(p.Modality))
		w.WriteString(p.Description)
		w.WriteI32(p.AvatarID)
		w.WriteI8(p.UnitExponent)
		w.WriteI8(p.PerceptionUnitExponent)

		writeLibrary(w, p.EffectLibrary)
		writeReferenceDevices(w, p.ReferenceDevices)
		if err := writeChannelHeaders(w, p.Channels); err != nil {
			return err
		}
	}
	return nil
}

func readPerceptions(r *bitio.Reader) ([]*model.Perception, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("hjif: perceptions count: %w", err)
	}
	perceptions := make([]*model.Perception, count)
	for i := range perceptions {
		p := &model.Perception{}
		if p.ID, err = r.ReadI16(); err != nil {
			return nil, fmt.Errorf("hjif: perception %d id: %w", i, err)
		}
		modality, err := r.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("hjif: perception %d modality: %w", i, err)
		}
		p.Modality = model.Modality(modality)
		if !p.Modality.Valid() {
			return nil, fmt.Errorf("hjif: perception %d modality %d: %w", i, modality, herrors.RangeViolation)
		}
		if p.Description, err = r.ReadString(); err != nil {
			return nil, fmt.Errorf("hjif: perception %d description: %w", i, err)
		}
		if p.AvatarID, err = r.ReadI32(); err != nil {
			return nil, fmt.Errorf("hjif: perception %d avatar_id: %w", i, err)
		}
		if p.UnitExponent, err = r.ReadI8(); err != nil {
			return nil, fmt.Errorf("hjif: perception %d unit_exponent: %w", i, err)
		}
		if p.PerceptionUnitExponent, err = r.ReadI8(); err != nil {
			return nil, fmt.Errorf("hjif: perception %d perception_unit_exponent: %w", i, err)
		}
		if p.EffectLibrary, err = readLibrary(r); err != nil {
			return nil, fmt.Errorf("hjif: perception %d: %w", i, err)
		}
		if p.ReferenceDevices, err = readReferenceDevices(r); err != nil {
			return nil, fmt.Errorf("hjif: perception %d: %w", i, err)
		}
		if p.Channels, err = readChannelHeaders(r); err != nil {
			return nil, fmt.Errorf("hjif: perception %d: %w", i, err)
		}
		perceptions[i] = p
	}
	return perceptions, nil
}

// keyframeMask bits for library effects, like bandcodec's VectorialWave
// presence mask but covering all three optional fields.
const (
	kfRelativePosition = 1 << 0
	kfAmplitude        = 1 << 1
	kfFrequency        = 1 << 2
)

func writeLibrary(w *bitio.Writer, effects []*model.Effect) {
	w.WriteU16(uint16(len(effects)))
	for _, e := range effects {
		writeLibraryEffect(w, e)
	}
}

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
			w.WriteQuantF32(*kf.AmplitudeMod, -maxAmplitude, maxAmplitude, 8)
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

func readLibrary(r *bitio.Reader) ([]*model.Effect, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("library count: %w", err)
	}
	effects := make([]*model.Effect, count)
	for i := range effects {
		e, err := readLibraryEffect(r)
		if err != nil {
			return nil, fmt.Errorf("library effect %d: %w", i, err)
		}
		effects[i] = e
	}
	return effects, nil
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

	keyframeCount, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("keyframe_count: %w", err)
	}
	e.Keyframes = make([]*model.Keyframe, keyframeCount)
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
			amp, err := r.ReadQuantF32(-maxAmplitude, maxAmplitude, 8)
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
