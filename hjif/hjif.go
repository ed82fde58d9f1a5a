// Package hjif implements whole-experience binary I/O for the haptic
// data model: file header, avatars, perceptions (effect library,
// reference devices, channels), and per-band bodies via bandcodec.
// All multi-byte integers are big-endian; floats travel as quantized
// unsigned integers over an advertised range (§4.7).
package hjif

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bandcodec"
	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/codec"
	"github.com/mpeghaptics/hmpg/herrors"
	"github.com/mpeghaptics/hmpg/model"
)

// Quantization ranges for the 32-bit floats the format carries in place
// of native IEEE-754 values, mirroring the reference encoder's bounds.
const (
	maxFrequency = 20000
	maxFloat     = 10000
	maxAmplitude = 1
	maxPhase     = 2 * 3.14159265358979323846
)

// Encode serializes a complete Haptic experience.
func Encode(h *model.Haptic) ([]byte, error) {
	w := bitio.NewWriter()
	w.WriteString(h.Version)
	w.WriteString(h.Date)
	w.WriteString(h.Description)
	writeAvatars(w, h.Avatars)
	if err := writePerceptions(w, h.Perceptions); err != nil {
		return nil, err
	}
	if err := writeBody(w, h.Perceptions); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Decode parses a complete Haptic experience.
func Decode(data []byte) (*model.Haptic, error) {
	r := bitio.NewReader(data)
	h := &model.Haptic{}

	var err error
	if h.Version, err = r.ReadString(); err != nil {
		return nil, fmt.Errorf("hjif: version: %w", err)
	}
	if h.Date, err = r.ReadString(); err != nil {
		return nil, fmt.Errorf("hjif: date: %w", err)
	}
	if h.Description, err = r.ReadString(); err != nil {
		return nil, fmt.Errorf("hjif: description: %w", err)
	}
	if h.Avatars, err = readAvatars(r); err != nil {
		return nil, err
	}
	if h.Perceptions, err = readPerceptions(r); err != nil {
		return nil, err
	}
	if err := readBody(r, h.Perceptions); err != nil {
		return nil, err
	}
	return h, nil
}

func writeAvatars(w *bitio.Writer, avatars []*model.Avatar) {
	w.WriteU16(uint16(len(avatars)))
	for _, a := range avatars {
		w.WriteI16(int16(a.ID))
		w.WriteI32(a.Lod)
		w.WriteU16(uint16(a.Type))
		if a.Type == model.AvatarCustom {
			w.WriteString(a.MeshURI)
		}
	}
}

func readAvatars(r *bitio.Reader) ([]*model.Avatar, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("hjif: avatars count: %w", err)
	}
	avatars := make([]*model.Avatar, count)
	for i := range avatars {
		id, err := r.ReadI16()
		if err != nil {
			return nil, fmt.Errorf("hjif: avatar %d id: %w", i, err)
		}
		lod, err := r.ReadI32()
		if err != nil {
			return nil, fmt.Errorf("hjif: avatar %d lod: %w", i, err)
		}
		typ, err := r.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("hjif: avatar %d type: %w", i, err)
		}
		a := &model.Avatar{ID: id, Lod: lod, Type: model.AvatarType(typ)}
		if !a.Type.Valid() {
			return nil, fmt.Errorf("hjif: avatar %d type %d: %w", i, typ, herrors.RangeViolation)
		}
		if a.Type == model.AvatarCustom {
			if a.MeshURI, err = r.ReadString(); err != nil {
				return nil, fmt.Errorf("hjif: avatar %d mesh_uri: %w", i, err)
			}
		}
		avatars[i] = a
	}
	return avatars, nil
}

func writeBody(w *bitio.Writer, perceptions []*model.Perception) error {
	for _, p := range perceptions {
		for _, c := range p.Channels {
			for _, b := range c.Bands {
				bandcodec.WriteHeader(w, b)
				bc, err := codec.GetByUID(int(b.BandType))
				if err != nil {
					return fmt.Errorf("hjif: band body: %w", err)
				}
				body, err := bc.Encode(b)
				if err != nil {
					return fmt.Errorf("hjif: band body: %w", err)
				}
				for _, by := range body {
					w.WriteU8(by)
				}
			}
		}
	}
	return nil
}

func readBody(r *bitio.Reader, perceptions []*model.Perception) error {
	for _, p := range perceptions {
		for _, c := range p.Channels {
			for _, b := range c.Bands {
				if err := bandcodec.ReadHeader(r, b); err != nil {
					return fmt.Errorf("hjif: band header: %w", err)
				}
				bc, err := codec.GetByUID(int(b.BandType))
				if err != nil {
					return fmt.Errorf("hjif: band body: %w", err)
				}
				if err := bc.Decode(r, b); err != nil {
					return fmt.Errorf("hjif: band body: %w", err)
				}
			}
		}
	}
	return nil
}
