package streamer

import (
	"sort"

	"github.com/google/uuid"
	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/model"
)

const defaultLevel = 0

// Data NAL status flags (the byte following the (perception, channel,
// band) address triple).
const (
	dataIsNew = 1 << 0
	dataIsRAU = 1 << 1
)

// Encode packetizes h into a flat MIHS Unit stream: one Initialization
// unit, then, if any spatial-modality perception has effects, a single
// Spatial unit, then one unit per window of packetMs milliseconds up to the
// last temporal effect: a Temporal unit for a window holding effects, a
// Silent unit for an empty one.
func Encode(h *model.Haptic, packetMs int32) ([]byte, error) {
	if packetMs < 1 {
		packetMs = 1
	}
	state := NewStreamState()
	w := bitio.NewWriter()

	writeInitializationUnit(w, h, state)

	spatialItems := collectSpatialItems(h, state)
	if len(spatialItems) > 0 {
		writeDataUnit(w, mihsSpatial, auRAU, 0, spatialItems)
	}

	maxPos := maxTemporalPosition(h, state)
	rauSeen := make(map[bandKey]bool)
	for t := int32(0); t <= maxPos; t += packetMs {
		items := collectTemporalItems(h, state, t, t+packetMs)
		if len(items) == 0 {
			writeSilentUnit(w, t)
			continue
		}
		// Access Unit granularity is per (band, window), not per MIHS Unit
		// (§4.8): the first window touching a band is its RAU, every later
		// one a DAU. Each item carries its own flag; see writeDataUnit.
		for i := range items {
			items[i].rau = !rauSeen[items[i].key]
			rauSeen[items[i].key] = true
		}
		writeDataUnit(w, mihsTemporal, auRAU, t, items)
	}

	return w.Bytes(), nil
}

type dataItem struct {
	key       bandKey
	effect    *model.Effect
	timestamp int32
	rau       bool
}

func collectTemporalItems(h *model.Haptic, state *StreamState, from, to int32) []dataItem {
	var items []dataItem
	for _, p := range h.Perceptions {
		if p.Modality.IsSpatial() {
			continue
		}
		for _, c := range p.Channels {
			for bi, b := range c.Bands {
				for _, e := range b.Effects {
					if e.PositionMs >= from && e.PositionMs < to {
						items = append(items, dataItem{
							key:       bandKey{perceptionID: p.ID, channelID: c.ID, bandIndex: uint16(bi)},
							effect:    e,
							timestamp: e.PositionMs,
							rau:       true,
						})
					}
				}
			}
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].timestamp < items[j].timestamp })
	return items
}

func collectSpatialItems(h *model.Haptic, state *StreamState) []dataItem {
	var items []dataItem
	for _, p := range h.Perceptions {
		if !p.Modality.IsSpatial() {
			continue
		}
		for _, c := range p.Channels {
			for bi, b := range c.Bands {
				for _, e := range b.Effects {
					items = append(items, dataItem{
						key:    bandKey{perceptionID: p.ID, channelID: c.ID, bandIndex: uint16(bi)},
						effect: e,
						rau:    true,
					})
				}
			}
		}
	}
	return items
}

func maxTemporalPosition(h *model.Haptic, state *StreamState) int32 {
	var max int32
	for _, p := range h.Perceptions {
		if p.Modality.IsSpatial() {
			continue
		}
		for _, c := range p.Channels {
			for _, b := range c.Bands {
				for _, e := range b.Effects {
					if e.PositionMs > max {
						max = e.PositionMs
					}
				}
			}
		}
	}
	return max
}

func writeInitializationUnit(w *bitio.Writer, h *model.Haptic, state *StreamState) {
	start := len(w.Bytes())
	writeTimingWithSession(w, mihsInitialization, auRAU, 0, state.SessionID)

	hw := bitio.NewWriter()
	hw.WriteString(h.Version)
	hw.WriteString(h.Date)
	hw.WriteString(h.Description)
	hw.WriteU16(uint16(len(h.Avatars)))
	for _, a := range h.Avatars {
		hw.WriteI16(a.ID)
		hw.WriteI32(a.Lod)
		hw.WriteU8(uint8(a.Type))
		if a.Type == model.AvatarCustom {
			hw.WriteString(a.MeshURI)
		}
	}
	writeNALu(w, naluMetadataHaptics, defaultLevel, hw.Bytes())

	for _, p := range h.Perceptions {
		pw := bitio.NewWriter()
		pw.WriteI16(p.ID)
		pw.WriteU16(uint16(p.Modality))
		pw.WriteString(p.Description)
		pw.WriteI32(p.AvatarID)
		pw.WriteI8(p.UnitExponent)
		pw.WriteI8(p.PerceptionUnitExponent)
		writeNALu(w, naluMetadataPerception, defaultLevel, pw.Bytes())

		lw := bitio.NewWriter()
		lw.WriteU16(uint16(len(p.EffectLibrary)))
		for _, e := range p.EffectLibrary {
			writeLibraryEffect(lw, e)
		}
		writeNALu(w, naluEffectLibrary, defaultLevel, lw.Bytes())

		for _, c := range p.Channels {
			cw := bitio.NewWriter()
			cw.WriteI16(c.ID)
			cw.WriteString(c.Description)
			cw.WriteI16(c.ReferenceDeviceID)
			cw.WriteQuantF32(c.Gain, -10000, 10000, 32)
			cw.WriteQuantF32(c.MixingWeight, 0, 10000, 32)
			cw.WriteU32(c.BodyPartMask)
			cw.WriteU32(c.FrequencySampling)
			if c.HasSampleCount() {
				cw.WriteU32(c.SampleCount)
			}
			writeNALu(w, naluMetadataChannel, defaultLevel, cw.Bytes())

			for bi, b := range c.Bands {
				key := bandKey{perceptionID: p.ID, channelID: c.ID, bandIndex: uint16(bi)}
				state.bands[key] = b

				bw := bitio.NewWriter()
				bw.WriteI16(p.ID)
				bw.WriteI16(c.ID)
				bw.WriteU16(uint16(bi))
				bw.WriteU8(uint8(b.BandType))
				bw.WriteU8(uint8(b.CurveType))
				if b.BandType == model.BandWaveletWave {
					bw.WriteI32(b.WindowLength)
				}
				bw.WriteI32(b.LowerFreq)
				bw.WriteI32(b.UpperFreq)
				writeNALu(w, naluMetadataBand, defaultLevel, bw.Bytes())
			}
		}
	}

	writeCRCTrailer(w, start)
}

func writeTiming(w *bitio.Writer, unitType mihsUnitType, au auType, timestamp int32) {
	payload := bitio.NewWriter()
	payload.WriteU8(uint8(unitType))
	payload.WriteU8(uint8(au))
	payload.WriteI32(timestamp)
	writeNALu(w, naluTiming, defaultLevel, payload.Bytes())
}

// writeTimingWithSession is writeTiming plus the stream's session id in the
// Timing NAL's reserved tail, carried only on the Initialization unit so a
// receiver can tell a fresh stream from a resumed one (see DESIGN.md).
func writeTimingWithSession(w *bitio.Writer, unitType mihsUnitType, au auType, timestamp int32, session uuid.UUID) {
	payload := bitio.NewWriter()
	payload.WriteU8(uint8(unitType))
	payload.WriteU8(uint8(au))
	payload.WriteI32(timestamp)
	sessionBytes, _ := session.MarshalBinary()
	for _, b := range sessionBytes {
		payload.WriteU8(b)
	}
	writeNALu(w, naluTiming, defaultLevel, payload.Bytes())
}

func writeDataUnit(w *bitio.Writer, unitType mihsUnitType, au auType, timestamp int32, items []dataItem) {
	start := len(w.Bytes())
	writeTiming(w, unitType, au, timestamp)

	typ := naluData
	if unitType == mihsSpatial {
		typ = naluSpatialData
	}
	for _, it := range items {
		pw := bitio.NewWriter()
		pw.WriteI16(it.key.perceptionID)
		pw.WriteI16(it.key.channelID)
		pw.WriteU16(it.key.bandIndex)
		flags := uint8(dataIsNew) // the streamer always packs one whole effect per NAL
		if it.rau {
			flags |= dataIsRAU
		}
		pw.WriteU8(flags)
		writeEffectPayload(pw, it.effect)
		writeNALu(w, typ, defaultLevel, pw.Bytes())
	}

	writeCRCTrailer(w, start)
}

func writeSilentUnit(w *bitio.Writer, timestamp int32) {
	start := len(w.Bytes())
	writeTiming(w, mihsSilent, auRAU, timestamp)
	writeCRCTrailer(w, start)
}

// writeCRCTrailer hashes the unit's bytes written since start (Timing NAL
// through the last content NAL) and appends a CRC-16 NAL. §4.8 allows a
// per-unit choice between CRC-16 and CRC-32; this streamer always picks
// CRC-16, since nothing in this spec's unit sizes approaches the range
// where the wider polynomial earns its extra two bytes.
func writeCRCTrailer(w *bitio.Writer, start int) {
	payload := w.Slice(start, len(w.Bytes()))
	crc := computeCRC16(payload)
	cw := bitio.NewWriter()
	cw.WriteU16(crc)
	writeNALu(w, naluCRC16, defaultLevel, cw.Bytes())
}
