package streamer

import (
	"github.com/google/uuid"
	"github.com/mpeghaptics/hmpg/model"
)

// bandKey addresses a band within the tree the same way a Data NAL does:
// by the perception and channel ids declared in the Initialization unit,
// plus the band's index within its channel (model.Band carries no id of
// its own — see DESIGN.md).
type bandKey struct {
	perceptionID int16
	channelID    int16
	bandIndex    uint16
}

// StreamState is the reader-side "arena plus index maps" from spec §9
// Design Notes: a bandStreamsBuffer keyed by band id, owned exclusively by
// the reader that built it, never shared across goroutines. SessionID is
// stamped into every Initialization unit so a receiver can distinguish a
// fresh stream from a resumed one.
type StreamState struct {
	SessionID uuid.UUID
	Haptic    *model.Haptic

	bands map[bandKey]*model.Band
	// nextEffectID is the per-band monotonic allocator mentioned in spec §5;
	// it resets whenever a new StreamState is created (i.e. at stream start).
	nextEffectID map[bandKey]int32
}

// NewStreamState starts a fresh reader/writer state with a new session id.
func NewStreamState() *StreamState {
	return &StreamState{
		SessionID:    uuid.New(),
		bands:        make(map[bandKey]*model.Band),
		nextEffectID: make(map[bandKey]int32),
	}
}

func (s *StreamState) allocEffectID(key bandKey) int32 {
	id := s.nextEffectID[key]
	s.nextEffectID[key] = id + 1
	return id
}
