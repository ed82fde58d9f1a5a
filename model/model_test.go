package model_test

import (
	"errors"
	"testing"

	"github.com/mpeghaptics/hmpg/herrors"
	"github.com/mpeghaptics/hmpg/model"
)

func simpleHaptic() *model.Haptic {
	amp := float32(0.5)
	return &model.Haptic{
		Version: "1.0",
		Avatars: []*model.Avatar{
			{ID: 0, Type: model.AvatarPressure},
		},
		Perceptions: []*model.Perception{
			{
				ID:       0,
				AvatarID: 0,
				Modality: model.ModalityVibration,
				EffectLibrary: []*model.Effect{
					{ID: 1, Type: model.EffectBasis, Keyframes: []*model.Keyframe{{AmplitudeMod: &amp}}},
				},
				ReferenceDevices: []*model.ReferenceDevice{
					{ID: 0, Name: "lra-generic"},
				},
				Channels: []*model.Channel{
					{
						ID:                0,
						ReferenceDeviceID: 0,
						Bands: []*model.Band{
							{
								BandType: model.BandTransient,
								Effects: []*model.Effect{
									{ID: 2, Type: model.EffectReference, ReferenceID: 1},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := simpleHaptic().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateDetectsDuplicateAvatarID(t *testing.T) {
	h := simpleHaptic()
	h.Avatars = append(h.Avatars, &model.Avatar{ID: 0})
	err := h.Validate()
	if !errors.Is(err, herrors.Inconsistent) {
		t.Fatalf("Validate() = %v, want Inconsistent", err)
	}
}

func TestValidateDetectsUnresolvedAvatarReference(t *testing.T) {
	h := simpleHaptic()
	h.Perceptions[0].AvatarID = 99
	err := h.Validate()
	if !errors.Is(err, herrors.ReferenceUnresolved) {
		t.Fatalf("Validate() = %v, want ReferenceUnresolved", err)
	}
}

func TestValidateDetectsUnresolvedEffectReference(t *testing.T) {
	h := simpleHaptic()
	h.Perceptions[0].Channels[0].Bands[0].Effects[0].ReferenceID = 99
	err := h.Validate()
	if !errors.Is(err, herrors.ReferenceUnresolved) {
		t.Fatalf("Validate() = %v, want ReferenceUnresolved", err)
	}
}

func TestValidateDetectsOutOfRangeAmplitude(t *testing.T) {
	h := simpleHaptic()
	bad := float32(1.5)
	h.Perceptions[0].EffectLibrary[0].Keyframes[0].AmplitudeMod = &bad
	err := h.Validate()
	if !errors.Is(err, herrors.RangeViolation) {
		t.Fatalf("Validate() = %v, want RangeViolation", err)
	}
}

func TestValidateDetectsNonMonotoneKeyframePositions(t *testing.T) {
	h := simpleHaptic()
	first, second := int32(10), int32(5)
	h.Perceptions[0].EffectLibrary[0].Keyframes = []*model.Keyframe{
		{RelativeMs: &first},
		{RelativeMs: &second},
	}
	err := h.Validate()
	if !errors.Is(err, herrors.Inconsistent) {
		t.Fatalf("Validate() = %v, want Inconsistent", err)
	}
}

func TestValidateDetectsEmptyWaveletBitstream(t *testing.T) {
	h := simpleHaptic()
	band := h.Perceptions[0].Channels[0].Bands[0]
	band.BandType = model.BandWaveletWave
	band.Effects = []*model.Effect{{Type: model.EffectBasis}}
	err := h.Validate()
	if !errors.Is(err, herrors.Inconsistent) {
		t.Fatalf("Validate() = %v, want Inconsistent", err)
	}
}

func TestResolveEffect(t *testing.T) {
	h := simpleHaptic()
	p := h.Perceptions[0]
	ref := p.Channels[0].Bands[0].Effects[0]
	resolved, err := p.ResolveEffect(ref)
	if err != nil {
		t.Fatalf("ResolveEffect: %v", err)
	}
	if resolved.ID != 1 {
		t.Fatalf("resolved effect id = %d, want 1", resolved.ID)
	}
}

func TestLookupHelpers(t *testing.T) {
	h := simpleHaptic()
	if _, err := h.PerceptionByID(0); err != nil {
		t.Fatalf("PerceptionByID(0): %v", err)
	}
	if _, err := h.PerceptionByID(42); !errors.Is(err, herrors.ReferenceUnresolved) {
		t.Fatalf("PerceptionByID(42) = %v, want ReferenceUnresolved", err)
	}
	p := h.Perceptions[0]
	if _, err := p.ChannelByID(0); err != nil {
		t.Fatalf("ChannelByID(0): %v", err)
	}
	if _, err := p.ReferenceDeviceByID(0); err != nil {
		t.Fatalf("ReferenceDeviceByID(0): %v", err)
	}
}

func TestModalityIsSpatial(t *testing.T) {
	if !model.ModalityTexture.IsSpatial() {
		t.Error("ModalityTexture should be spatial")
	}
	if model.ModalityVibration.IsSpatial() {
		t.Error("ModalityVibration should not be spatial")
	}
}
