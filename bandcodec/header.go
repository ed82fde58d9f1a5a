package bandcodec

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/herrors"
	"github.com/mpeghaptics/hmpg/model"
)

// WriteHeader writes a Band's header: {band_type: u16, curve_type: u16,
// [window_length: u32 if WaveletWave], lower_freq: u32, upper_freq: u32,
// effects_count: u32}. Transient bodies hold one record per keyframe,
// each decoding back as its own single-keyframe Effect, so effects_count
// is the keyframe total across all effects. WaveletWave bodies hold one
// record per Effect, so effects_count is len(band.Effects). Curve and
// VectorialWave bodies always collapse to a single Effect carrying every
// keyframe, so for those two effects_count instead carries that one
// effect's keyframe total, letting the body reader pre-allocate it.
func WriteHeader(w *bitio.Writer, band *model.Band) {
	w.WriteU16(uint16(band.BandType))
	w.WriteU16(uint16(band.CurveType))
	if band.BandType == model.BandWaveletWave {
		w.WriteU32(uint32(band.WindowLength))
	}
	w.WriteU32(uint32(band.LowerFreq))
	w.WriteU32(uint32(band.UpperFreq))

	switch band.BandType {
	case model.BandTransient:
		var keyframeCount uint32
		for _, e := range band.Effects {
			keyframeCount += uint32(len(e.Keyframes))
		}
		w.WriteU32(keyframeCount)
	case model.BandCurve, model.BandVectorialWave:
		var keyframeCount uint32
		if len(band.Effects) > 0 {
			keyframeCount = uint32(len(band.Effects[0].Keyframes))
		}
		w.WriteU32(keyframeCount)
	default:
		w.WriteU32(uint32(len(band.Effects)))
	}
}

// ReadHeader reads a Band's header into band, pre-populating band.Effects
// with empty placeholders the matching BandCodec.Decode fills in:
// Transient and WaveletWave pre-allocate one empty Effect per record,
// Curve and VectorialWave pre-allocate a single Effect with that many
// empty Keyframes.
func ReadHeader(r *bitio.Reader, band *model.Band) error {
	bandType, err := r.ReadU16()
	if err != nil {
		return fmt.Errorf("bandcodec: header: %w", err)
	}
	band.BandType = model.BandType(bandType)
	if !band.BandType.Valid() {
		return fmt.Errorf("bandcodec: header: band_type %d: %w", bandType, herrors.RangeViolation)
	}

	curveType, err := r.ReadU16()
	if err != nil {
		return fmt.Errorf("bandcodec: header: %w", err)
	}
	band.CurveType = model.CurveType(curveType)

	if band.BandType == model.BandWaveletWave {
		wl, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("bandcodec: header: %w", err)
		}
		band.WindowLength = int32(wl)
	}

	lower, err := r.ReadU32()
	if err != nil {
		return fmt.Errorf("bandcodec: header: %w", err)
	}
	band.LowerFreq = int32(lower)

	upper, err := r.ReadU32()
	if err != nil {
		return fmt.Errorf("bandcodec: header: %w", err)
	}
	band.UpperFreq = int32(upper)

	count, err := r.ReadU32()
	if err != nil {
		return fmt.Errorf("bandcodec: header: %w", err)
	}

	switch band.BandType {
	case model.BandTransient, model.BandWaveletWave:
		band.Effects = make([]*model.Effect, count)
		for i := range band.Effects {
			band.Effects[i] = &model.Effect{Type: model.EffectBasis}
		}
	case model.BandCurve, model.BandVectorialWave:
		if count > 0 {
			e := &model.Effect{Type: model.EffectBasis, Keyframes: make([]*model.Keyframe, count)}
			for i := range e.Keyframes {
				e.Keyframes[i] = &model.Keyframe{}
			}
			band.Effects = []*model.Effect{e}
		}
	default:
		band.Effects = nil
	}
	return nil
}
