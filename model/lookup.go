package model

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/herrors"
)

// PerceptionByID returns the Perception with the given id, or
// ReferenceUnresolved if none matches.
func (h *Haptic) PerceptionByID(id int16) (*Perception, error) {
	for _, p := range h.Perceptions {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("model: %w: perception %d", herrors.ReferenceUnresolved, id)
}

// AvatarByID returns the Avatar with the given id, or ReferenceUnresolved.
func (h *Haptic) AvatarByID(id int16) (*Avatar, error) {
	for _, a := range h.Avatars {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("model: %w: avatar %d", herrors.ReferenceUnresolved, id)
}

// ChannelByID returns the Channel with the given id within this Perception.
func (p *Perception) ChannelByID(id int16) (*Channel, error) {
	for _, c := range p.Channels {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("model: %w: channel %d", herrors.ReferenceUnresolved, id)
}

// ReferenceDeviceByID returns the ReferenceDevice with the given id within
// this Perception.
func (p *Perception) ReferenceDeviceByID(id int16) (*ReferenceDevice, error) {
	for _, d := range p.ReferenceDevices {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("model: %w: reference device %d", herrors.ReferenceUnresolved, id)
}

// ResolveEffect returns the concrete Basis/Timeline effect that e denotes:
// e itself unless e.Type == EffectReference, in which case the library
// entry it names is returned. Reference chains are not allowed (a library
// effect is never itself of type EffectReference), so this never loops.
func (p *Perception) ResolveEffect(e *Effect) (*Effect, error) {
	if e.Type != EffectReference {
		return e, nil
	}
	for _, libEffect := range p.EffectLibrary {
		if libEffect.ID == e.ReferenceID {
			if libEffect.Type == EffectReference {
				return nil, fmt.Errorf("model: %w: library effect %d cannot itself be a reference", herrors.Inconsistent, libEffect.ID)
			}
			return libEffect, nil
		}
	}
	return nil, fmt.Errorf("model: %w: effect reference %d", herrors.ReferenceUnresolved, e.ReferenceID)
}
