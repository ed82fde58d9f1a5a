package hjif

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/model"
)

// Channel optional-field bits. Direction mirrors the reference encoder's
// single-bit mask; actuator_resolution/body_part_target/actuator_target
// are this format's own extension of that mask, carrying fields the
// reference encoder's Track didn't have.
const (
	chanDirectionBit         = 1 << 0
	chanActuatorResolution   = 1 << 1
	chanBodyPartTarget       = 1 << 2
	chanActuatorTarget       = 1 << 3
)

func writeChannelHeaders(w *bitio.Writer, channels []*model.Channel) error {
	w.WriteU16(uint16(len(channels)))
	for _, c := range channels {
		w.WriteI16(c.ID)
		w.WriteString(c.Description)
		w.WriteI16(c.ReferenceDeviceID)
		w.WriteQuantF32(c.Gain, -maxFloat, maxFloat, 32)
		w.WriteQuantF32(c.MixingWeight, 0, maxFloat, 32)
		w.WriteU32(c.BodyPartMask)

		mask := uint8(0)
		if c.Direction != nil {
			mask |= chanDirectionBit
		}
		if c.ActuatorResolution != nil {
			mask |= chanActuatorResolution
		}
		if c.BodyPartTarget != nil {
			mask |= chanBodyPartTarget
		}
		if c.ActuatorTarget != nil {
			mask |= chanActuatorTarget
		}
		w.WriteU8(mask)

		w.WriteU32(c.FrequencySampling)
		if c.HasSampleCount() {
			w.WriteU32(c.SampleCount)
		}
		if c.Direction != nil {
			w.WriteI8(c.Direction.X)
			w.WriteI8(c.Direction.Y)
			w.WriteI8(c.Direction.Z)
		}
		if c.ActuatorResolution != nil {
			w.WriteI32(*c.ActuatorResolution)
		}
		if c.BodyPartTarget != nil {
			w.WriteI32(*c.BodyPartTarget)
		}
		if c.ActuatorTarget != nil {
			w.WriteI32(*c.ActuatorTarget)
		}

		w.WriteI32(int32(len(c.Vertices)))
		for _, v := range c.Vertices {
			w.WriteI32(v)
		}

		w.WriteU16(uint16(len(c.Bands)))
	}
	return nil
}

func readChannelHeaders(r *bitio.Reader) ([]*model.Channel, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("channels count: %w", err)
	}
	channels := make([]*model.Channel, count)
	for i := range channels {
		c := &model.Channel{}
		if c.ID, err = r.ReadI16(); err != nil {
			return nil, fmt.Errorf("channel %d id: %w", i, err)
		}
		if c.Description, err = r.ReadString(); err != nil {
			return nil, fmt.Errorf("channel %d description: %w", i, err)
		}
		if c.ReferenceDeviceID, err = r.ReadI16(); err != nil {
			return nil, fmt.Errorf("channel %d reference_device_id: %w", i, err)
		}
		if c.Gain, err = r.ReadQuantF32(-maxFloat, maxFloat, 32); err != nil {
			return nil, fmt.Errorf("channel %d gain: %w", i, err)
		}
		if c.MixingWeight, err = r.ReadQuantF32(0, maxFloat, 32); err != nil {
			return nil, fmt.Errorf("channel %d mixing_weight: %w", i, err)
		}
		if c.BodyPartMask, err = r.ReadU32(); err != nil {
			return nil, fmt.Errorf("channel %d body_part_mask: %w", i, err)
		}
		optMask, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("channel %d optional_mask: %w", i, err)
		}
		if c.FrequencySampling, err = r.ReadU32(); err != nil {
			return nil, fmt.Errorf("channel %d frequency_sampling: %w", i, err)
		}
		if c.HasSampleCount() {
			if c.SampleCount, err = r.ReadU32(); err != nil {
				return nil, fmt.Errorf("channel %d sample_count: %w", i, err)
			}
		}
		if optMask&chanDirectionBit != 0 {
			x, err := r.ReadI8()
			if err != nil {
				return nil, fmt.Errorf("channel %d direction.x: %w", i, err)
			}
			y, err := r.ReadI8()
			if err != nil {
				return nil, fmt.Errorf("channel %d direction.y: %w", i, err)
			}
			z, err := r.ReadI8()
			if err != nil {
				return nil, fmt.Errorf("channel %d direction.z: %w", i, err)
			}
			c.Direction = &model.Direction{X: x, Y: y, Z: z}
		}
		if optMask&chanActuatorResolution != 0 {
			v, err := r.ReadI32()
			if err != nil {
				return nil, fmt.Errorf("channel %d actuator_resolution: %w", i, err)
			}
			c.ActuatorResolution = &v
		}
		if optMask&chanBodyPartTarget != 0 {
			v, err := r.ReadI32()
			if err != nil {
				return nil, fmt.Errorf("channel %d body_part_target: %w", i, err)
			}
			c.BodyPartTarget = &v
		}
		if optMask&chanActuatorTarget != 0 {
			v, err := r.ReadI32()
			if err != nil {
				return nil, fmt.Errorf("channel %d actuator_target: %w", i, err)
			}
			c.ActuatorTarget = &v
		}

		vertexCount, err := r.ReadI32()
		if err != nil {
			return nil, fmt.Errorf("channel %d vertex_count: %w", i, err)
		}
		c.Vertices = make([]int32, vertexCount)
		for j := range c.Vertices {
			if c.Vertices[j], err = r.ReadI32(); err != nil {
				return nil, fmt.Errorf("channel %d vertex %d: %w", i, j, err)
			}
		}

		bandCount, err := r.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("channel %d band_count: %w", i, err)
		}
		c.Bands = make([]*model.Band, bandCount)
		for j := range c.Bands {
			c.Bands[j] = &model.Band{}
		}

		channels[i] = c
	}
	return channels, nil
}
