package model

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/herrors"
)

// Validate walks the tree and reports the first structural violation found:
// duplicate ids within a scope, an unresolved reference-effect target, or a
// field outside its documented range.
func (h *Haptic) Validate() error {
	avatarIDs := make(map[int16]bool, len(h.Avatars))
	for _, a := range h.Avatars {
		if avatarIDs[a.ID] {
			return fmt.Errorf("model: duplicate avatar id %d: %w", a.ID, herrors.Inconsistent)
		}
		avatarIDs[a.ID] = true
		if !a.Type.Valid() {
			return fmt.Errorf("model: avatar %d: invalid type %d: %w", a.ID, a.Type, herrors.RangeViolation)
		}
	}

	perceptionIDs := make(map[int16]bool, len(h.Perceptions))
	for _, p := range h.Perceptions {
		if perceptionIDs[p.ID] {
			return fmt.Errorf("model: duplicate perception id %d: %w", p.ID, herrors.Inconsistent)
		}
		perceptionIDs[p.ID] = true
		if !p.Modality.Valid() {
			return fmt.Errorf("model: perception %d: invalid modality %d: %w", p.ID, p.Modality, herrors.RangeViolation)
		}
		if p.AvatarID >= 0 && !avatarIDs[int16(p.AvatarID)] {
			return fmt.Errorf("model: perception %d: %w: avatar %d", p.ID, herrors.ReferenceUnresolved, p.AvatarID)
		}
		if err := p.validate(); err != nil {
			return fmt.Errorf("model: perception %d: %w", p.ID, err)
		}
	}
	return nil
}

func (p *Perception) validate() error {
	libraryIDs := make(map[int32]*Effect, len(p.EffectLibrary))
	for _, e := range p.EffectLibrary {
		if _, dup := libraryIDs[e.ID]; dup {
			return fmt.Errorf("duplicate effect id %d: %w", e.ID, herrors.Inconsistent)
		}
		libraryIDs[e.ID] = e
	}
	for _, e := range p.EffectLibrary {
		if err := validateEffect(e, libraryIDs); err != nil {
			return fmt.Errorf("effect library %d: %w", e.ID, err)
		}
	}

	deviceIDs := make(map[int16]bool, len(p.ReferenceDevices))
	for _, d := range p.ReferenceDevices {
		if deviceIDs[d.ID] {
			return fmt.Errorf("duplicate reference device id %d: %w", d.ID, herrors.Inconsistent)
		}
		deviceIDs[d.ID] = true
	}

	channelIDs := make(map[int16]bool, len(p.Channels))
	for _, c := range p.Channels {
		if channelIDs[c.ID] {
			return fmt.Errorf("duplicate channel id %d: %w", c.ID, herrors.Inconsistent)
		}
		channelIDs[c.ID] = true
		if c.ReferenceDeviceID >= 0 && !deviceIDs[c.ReferenceDeviceID] {
			return fmt.Errorf("channel %d: %w: reference device %d", c.ID, herrors.ReferenceUnresolved, c.ReferenceDeviceID)
		}
		if c.FrequencySampling == 0 && c.SampleCount != 0 {
			return fmt.Errorf("channel %d: sample_count present without frequency_sampling: %w", c.ID, herrors.Inconsistent)
		}
		for bi, b := range c.Bands {
			if !b.BandType.Valid() {
				return fmt.Errorf("channel %d band %d: invalid band type %d: %w", c.ID, bi, b.BandType, herrors.RangeViolation)
			}
			if b.BandType != BandWaveletWave && b.WindowLength != 0 {
				return fmt.Errorf("channel %d band %d: window_length set on non-wavelet band: %w", c.ID, bi, herrors.Inconsistent)
			}
			if b.UpperFreq != 0 && b.UpperFreq < b.LowerFreq {
				return fmt.Errorf("channel %d band %d: upper_freq %d < lower_freq %d: %w", c.ID, bi, b.UpperFreq, b.LowerFreq, herrors.RangeViolation)
			}
			for ei, e := range b.Effects {
				if b.BandType == BandWaveletWave && len(e.WaveletBitstream) == 0 {
					return fmt.Errorf("channel %d band %d effect %d: empty wavelet bitstream: %w", c.ID, bi, ei, herrors.Inconsistent)
				}
				if err := validateEffect(e, libraryIDs); err != nil {
					return fmt.Errorf("channel %d band %d effect %d: %w", c.ID, bi, ei, err)
				}
			}
		}
	}
	return nil
}

func validateEffect(e *Effect, library map[int32]*Effect) error {
	switch e.Type {
	case EffectReference:
		if _, ok := library[e.ReferenceID]; !ok {
			return fmt.Errorf("%w: effect reference %d", herrors.ReferenceUnresolved, e.ReferenceID)
		}
	case EffectTimeline:
		for _, child := range e.Timeline {
			if err := validateEffect(child, library); err != nil {
				return err
			}
		}
	case EffectBasis:
		var lastPos int32
		havePos := false
		for ki, kf := range e.Keyframes {
			if kf.AmplitudeMod != nil && (*kf.AmplitudeMod < -1 || *kf.AmplitudeMod > 1) {
				return fmt.Errorf("keyframe amplitude_modulation %v out of [-1,1]: %w", *kf.AmplitudeMod, herrors.RangeViolation)
			}
			if kf.RelativeMs != nil {
				if havePos && *kf.RelativeMs <= lastPos {
					return fmt.Errorf("keyframe %d position %d not strictly increasing after %d: %w", ki, *kf.RelativeMs, lastPos, herrors.Inconsistent)
				}
				lastPos, havePos = *kf.RelativeMs, true
			}
		}
	default:
		return fmt.Errorf("unknown effect type %d: %w", e.Type, herrors.RangeViolation)
	}
	return nil
}
