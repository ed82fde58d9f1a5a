package streamer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/herrors"
	"github.com/mpeghaptics/hmpg/model"
)

// Decode reassembles a Haptic tree from a flat MIHS Unit stream produced
// by Encode. It is the reverse path named read_MIHS_unit in §4.8.
func Decode(data []byte) (*model.Haptic, error) {
	state := NewStreamState()
	r := bitio.NewReader(data)
	for !r.Exhausted() {
		if err := state.ReadUnit(r); err != nil {
			return nil, err
		}
	}
	return state.Haptic, nil
}

// ReadUnit consumes exactly one MIHS Unit from r, verifies its CRC
// trailer and, only once verified, folds its content into s.Haptic /
// s.bands. A CrcMismatch leaves s untouched, matching §7's "CRC failures
// at stream level are recoverable by the caller".
func (s *StreamState) ReadUnit(r *bitio.Reader) error {
	start := r.BytePos()

	typ, _, timingPayload, err := readNALu(r)
	if err != nil {
		return fmt.Errorf("streamer: timing nal: %w", err)
	}
	if typ != naluTiming {
		return fmt.Errorf("streamer: expected timing nal, got type %d: %w", typ, herrors.Inconsistent)
	}
	tr := bitio.NewReader(timingPayload)
	unitTypeByte, err := tr.ReadU8()
	if err != nil {
		return fmt.Errorf("streamer: timing unit_type: %w", err)
	}
	unitType := mihsUnitType(unitTypeByte)
	if !validMIHSType(unitType) {
		return errBadUnitType
	}
	if _, err := tr.ReadU8(); err != nil { // au type, informational only on read
		return fmt.Errorf("streamer: timing au_type: %w", err)
	}
	if _, err := tr.ReadI32(); err != nil { // timestamp, informational only on read
		return fmt.Errorf("streamer: timing timestamp: %w", err)
	}
	var sessionID uuid.UUID
	haveSession := false
	if unitType == mihsInitialization {
		sessionBytes := make([]byte, 16)
		for i := range sessionBytes {
			b, err := tr.ReadU8()
			if err != nil {
				return fmt.Errorf("streamer: timing session id: %w", err)
			}
			sessionBytes[i] = b
		}
		id, err := uuid.FromBytes(sessionBytes)
		if err != nil {
			return fmt.Errorf("streamer: timing session id: %v: %w", err, herrors.Inconsistent)
		}
		sessionID, haveSession = id, true
	}

	var contentNALs []rawNAL
	for {
		typ, _, payload, err := readNALu(r)
		if err != nil {
			return fmt.Errorf("streamer: unit content nal: %w", err)
		}
		if typ == naluCRC16 || typ == naluCRC32 {
			end := r.BytePos()
			covered := r.Slice(start, end-naluHeaderBytes-len(payload))
			if err := verifyCRC(typ, payload, covered); err != nil {
				return err
			}
			break
		}
		contentNALs = append(contentNALs, rawNAL{typ: typ, payload: payload})
	}

	if haveSession {
		s.SessionID = sessionID
	}
	return s.applyUnit(unitType, contentNALs)
}

type rawNAL struct {
	typ     naluType
	payload []byte
}

func verifyCRC(typ naluType, crcPayload, covered []byte) error {
	cr := bitio.NewReader(crcPayload)
	switch typ {
	case naluCRC16:
		want, err := cr.ReadU16()
		if err != nil {
			return fmt.Errorf("streamer: crc16 payload: %w", err)
		}
		if computeCRC16(covered) != want {
			return fmt.Errorf("streamer: crc16 over %d bytes: %w", len(covered), herrors.CrcMismatch)
		}
	case naluCRC32:
		want, err := cr.ReadU32()
		if err != nil {
			return fmt.Errorf("streamer: crc32 payload: %w", err)
		}
		if computeCRC32(covered) != want {
			return fmt.Errorf("streamer: crc32 over %d bytes: %w", len(covered), herrors.CrcMismatch)
		}
	}
	return nil
}

func (s *StreamState) applyUnit(unitType mihsUnitType, nals []rawNAL) error {
	switch unitType {
	case mihsInitialization:
		return s.applyInitialization(nals)
	case mihsTemporal, mihsSpatial:
		return s.applyData(nals)
	case mihsSilent:
		return nil
	default:
		return errBadUnitType
	}
}

func (s *StreamState) applyInitialization(nals []rawNAL) error {
	h := &model.Haptic{}
	channelByID := map[bandKey]*model.Channel{} // keyed by (perceptionID, channelID, 0), bandIndex unused

	for _, n := range nals {
		switch n.typ {
		case naluMetadataHaptics:
			r := bitio.NewReader(n.payload)
			var err error
			if h.Version, err = r.ReadString(); err != nil {
				return fmt.Errorf("streamer: init version: %w", err)
			}
			if h.Date, err = r.ReadString(); err != nil {
				return fmt.Errorf("streamer: init date: %w", err)
			}
			if h.Description, err = r.ReadString(); err != nil {
				return fmt.Errorf("streamer: init description: %w", err)
			}
			avatarCount, err := r.ReadU16()
			if err != nil {
				return fmt.Errorf("streamer: init avatar_count: %w", err)
			}
			h.Avatars = make([]*model.Avatar, avatarCount)
			for i := range h.Avatars {
				a := &model.Avatar{}
				if a.ID, err = r.ReadI16(); err != nil {
					return fmt.Errorf("streamer: avatar %d id: %w", i, err)
				}
				if a.Lod, err = r.ReadI32(); err != nil {
					return fmt.Errorf("streamer: avatar %d lod: %w", i, err)
				}
				typ, err := r.ReadU8()
				if err != nil {
					return fmt.Errorf("streamer: avatar %d type: %w", i, err)
				}
				a.Type = model.AvatarType(typ)
				if a.Type == model.AvatarCustom {
					if a.MeshURI, err = r.ReadString(); err != nil {
						return fmt.Errorf("streamer: avatar %d mesh_uri: %w", i, err)
					}
				}
				h.Avatars[i] = a
			}

		case naluMetadataPerception:
			r := bitio.NewReader(n.payload)
			p := &model.Perception{}
			var err error
			if p.ID, err = r.ReadI16(); err != nil {
				return fmt.Errorf("streamer: perception id: %w", err)
			}
			modality, err := r.ReadU16()
			if err != nil {
				return fmt.Errorf("streamer: perception modality: %w", err)
			}
			p.Modality = model.Modality(modality)
			if p.Description, err = r.ReadString(); err != nil {
				return fmt.Errorf("streamer: perception description: %w", err)
			}
			if p.AvatarID, err = r.ReadI32(); err != nil {
				return fmt.Errorf("streamer: perception avatar_id: %w", err)
			}
			if p.UnitExponent, err = r.ReadI8(); err != nil {
				return fmt.Errorf("streamer: perception unit_exponent: %w", err)
			}
			if p.PerceptionUnitExponent, err = r.ReadI8(); err != nil {
				return fmt.Errorf("streamer: perception perception_unit_exponent: %w", err)
			}
			h.Perceptions = append(h.Perceptions, p)

		case naluEffectLibrary:
			// An EffectLibrary NAL immediately follows its MetadataPerception
			// NAL in source order (see writeInitializationUnit), so the most
			// recently appended perception is the one it belongs to.
			if len(h.Perceptions) == 0 {
				return fmt.Errorf("streamer: effect library before any perception: %w", herrors.Inconsistent)
			}
			p := h.Perceptions[len(h.Perceptions)-1]
			r := bitio.NewReader(n.payload)
			count, err := r.ReadU16()
			if err != nil {
				return fmt.Errorf("streamer: library count: %w", err)
			}
			p.EffectLibrary = make([]*model.Effect, count)
			for i := range p.EffectLibrary {
				e, err := readLibraryEffect(r)
				if err != nil {
					return fmt.Errorf("streamer: library effect %d: %w", i, err)
				}
				p.EffectLibrary[i] = e
			}

		case naluMetadataChannel:
			// Likewise, a MetadataChannel NAL belongs to the most recently
			// declared perception.
			if len(h.Perceptions) == 0 {
				return fmt.Errorf("streamer: channel before any perception: %w", herrors.Inconsistent)
			}
			p := h.Perceptions[len(h.Perceptions)-1]
			r := bitio.NewReader(n.payload)
			c := &model.Channel{}
			var err error
			if c.ID, err = r.ReadI16(); err != nil {
				return fmt.Errorf("streamer: channel id: %w", err)
			}
			if c.Description, err = r.ReadString(); err != nil {
				return fmt.Errorf("streamer: channel description: %w", err)
			}
			if c.ReferenceDeviceID, err = r.ReadI16(); err != nil {
				return fmt.Errorf("streamer: channel reference_device_id: %w", err)
			}
			if c.Gain, err = r.ReadQuantF32(-10000, 10000, 32); err != nil {
				return fmt.Errorf("streamer: channel gain: %w", err)
			}
			if c.MixingWeight, err = r.ReadQuantF32(0, 10000, 32); err != nil {
				return fmt.Errorf("streamer: channel mixing_weight: %w", err)
			}
			if c.BodyPartMask, err = r.ReadU32(); err != nil {
				return fmt.Errorf("streamer: channel body_part_mask: %w", err)
			}
			if c.FrequencySampling, err = r.ReadU32(); err != nil {
				return fmt.Errorf("streamer: channel frequency_sampling: %w", err)
			}
			if c.HasSampleCount() {
				if c.SampleCount, err = r.ReadU32(); err != nil {
					return fmt.Errorf("streamer: channel sample_count: %w", err)
				}
			}
			p.Channels = append(p.Channels, c)
			channelByID[bandKey{perceptionID: p.ID, channelID: c.ID}] = c

		case naluMetadataBand:
			r := bitio.NewReader(n.payload)
			perceptionID, err := r.ReadI16()
			if err != nil {
				return fmt.Errorf("streamer: band perception_id: %w", err)
			}
			channelID, err := r.ReadI16()
			if err != nil {
				return fmt.Errorf("streamer: band channel_id: %w", err)
			}
			bandIndex, err := r.ReadU16()
			if err != nil {
				return fmt.Errorf("streamer: band index: %w", err)
			}
			bandType, err := r.ReadU8()
			if err != nil {
				return fmt.Errorf("streamer: band type: %w", err)
			}
			curveType, err := r.ReadU8()
			if err != nil {
				return fmt.Errorf("streamer: band curve_type: %w", err)
			}
			b := &model.Band{BandType: model.BandType(bandType), CurveType: model.CurveType(curveType)}
			if !b.BandType.Valid() {
				return fmt.Errorf("streamer: band_type %d: %w", bandType, herrors.RangeViolation)
			}
			if b.BandType == model.BandWaveletWave {
				if b.WindowLength, err = r.ReadI32(); err != nil {
					return fmt.Errorf("streamer: band window_length: %w", err)
				}
			}
			if b.LowerFreq, err = r.ReadI32(); err != nil {
				return fmt.Errorf("streamer: band lower_freq: %w", err)
			}
			if b.UpperFreq, err = r.ReadI32(); err != nil {
				return fmt.Errorf("streamer: band upper_freq: %w", err)
			}

			c, ok := channelByID[bandKey{perceptionID: perceptionID, channelID: channelID}]
			if !ok {
				return fmt.Errorf("streamer: band references unknown channel (%d,%d): %w", perceptionID, channelID, herrors.ReferenceUnresolved)
			}
			c.Bands = append(c.Bands, b)
			key := bandKey{perceptionID: perceptionID, channelID: channelID, bandIndex: bandIndex}
			s.bands[key] = b
		}
	}

	s.Haptic = h
	return nil
}

func (s *StreamState) applyData(nals []rawNAL) error {
	for _, n := range nals {
		if n.typ != naluData && n.typ != naluSpatialData {
			continue
		}
		r := bitio.NewReader(n.payload)
		perceptionID, err := r.ReadI16()
		if err != nil {
			return fmt.Errorf("streamer: data perception_id: %w", err)
		}
		channelID, err := r.ReadI16()
		if err != nil {
			return fmt.Errorf("streamer: data channel_id: %w", err)
		}
		bandIndex, err := r.ReadU16()
		if err != nil {
			return fmt.Errorf("streamer: data band_index: %w", err)
		}
		flags, err := r.ReadU8()
		if err != nil {
			return fmt.Errorf("streamer: data flags: %w", err)
		}
		e, err := readEffectPayload(r)
		if err != nil {
			return fmt.Errorf("streamer: data effect: %w", err)
		}

		key := bandKey{perceptionID: perceptionID, channelID: channelID, bandIndex: bandIndex}
		b, ok := s.bands[key]
		if !ok {
			return fmt.Errorf("streamer: data nal references unknown band (%d,%d,%d): %w", perceptionID, channelID, bandIndex, herrors.ReferenceUnresolved)
		}
		if flags&dataIsNew != 0 {
			e.ID = s.allocEffectID(key)
			b.Effects = append(b.Effects, e)
		} else if len(b.Effects) > 0 {
			last := b.Effects[len(b.Effects)-1]
			last.Keyframes = append(last.Keyframes, e.Keyframes...)
		}
	}
	return nil
}
