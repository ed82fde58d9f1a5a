package hjif

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/model"
)

// Reference device option mask bits (§3, §4.7): one bit per optional
// field, MaxFreq through Type, plus BodyPartMask as the low bit.
const (
	rdBodyPartMask = 1 << 0
	rdMaxFreq      = 1 << 1
	rdMinFreq      = 1 << 2
	rdResFreq      = 1 << 3
	rdMaxAmp       = 1 << 4
	rdImpedance    = 1 << 5
	rdMaxVoltage   = 1 << 6
	rdMaxCurrent   = 1 << 7
	rdMaxDisp      = 1 << 8
	rdWeight       = 1 << 9
	rdSize         = 1 << 10
	rdCustom       = 1 << 11
	rdType         = 1 << 12
)

func writeReferenceDevices(w *bitio.Writer, devices []*model.ReferenceDevice) {
	w.WriteU16(uint16(len(devices)))
	for _, d := range devices {
		w.WriteI16(d.ID)
		w.WriteString(d.Name)

		mask := uint64(0)
		if d.BodyPartMask != 0 {
			mask |= rdBodyPartMask
		}
		if d.MaxFreq != nil {
			mask |= rdMaxFreq
		}
		if d.MinFreq != nil {
			mask |= rdMinFreq
		}
		if d.ResFreq != nil {
			mask |= rdResFreq
		}
		if d.MaxAmp != nil {
			mask |= rdMaxAmp
		}
		if d.Impedance != nil {
			mask |= rdImpedance
		}
		if d.MaxVoltage != nil {
			mask |= rdMaxVoltage
		}
		if d.MaxCurrent != nil {
			mask |= rdMaxCurrent
		}
		if d.MaxDisplacement != nil {
			mask |= rdMaxDisp
		}
		if d.Weight != nil {
			mask |= rdWeight
		}
		if d.Size != nil {
			mask |= rdSize
		}
		if d.Custom != nil {
			mask |= rdCustom
		}
		if d.Type != nil {
			mask |= rdType
		}
		_ = w.WriteBits(mask, 13)

		if d.BodyPartMask != 0 {
			w.WriteU32(d.BodyPartMask)
		}
		writeOptFreq(w, d.MaxFreq)
		writeOptFreq(w, d.MinFreq)
		writeOptFreq(w, d.ResFreq)
		writeOptUnit(w, d.MaxAmp)
		writeOptFloat(w, d.Impedance)
		writeOptFloat(w, d.MaxVoltage)
		writeOptFloat(w, d.MaxCurrent)
		writeOptFloat(w, d.MaxDisplacement)
		writeOptFloat(w, d.Weight)
		writeOptFloat(w, d.Size)
		if d.Custom != nil {
			w.WriteQuantF32(*d.Custom, -maxFloat, maxFloat, 32)
		}
		if d.Type != nil {
			w.WriteU8(uint8(*d.Type))
		}
	}
}

func writeOptFreq(w *bitio.Writer, v *float32) {
	if v != nil {
		w.WriteQuantF32(*v, 0, maxFrequency, 32)
	}
}

func writeOptUnit(w *bitio.Writer, v *float32) {
	if v != nil {
		w.WriteQuantF32(*v, 0, maxAmplitude, 32)
	}
}

func writeOptFloat(w *bitio.Writer, v *float32) {
	if v != nil {
		w.WriteQuantF32(*v, 0, maxFloat, 32)
	}
}

func readReferenceDevices(r *bitio.Reader) ([]*model.ReferenceDevice, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("reference_devices count: %w", err)
	}
	devices := make([]*model.ReferenceDevice, count)
	for i := range devices {
		d := &model.ReferenceDevice{}
		if d.ID, err = r.ReadI16(); err != nil {
			return nil, fmt.Errorf("reference_device %d id: %w", i, err)
		}
		if d.Name, err = r.ReadString(); err != nil {
			return nil, fmt.Errorf("reference_device %d name: %w", i, err)
		}
		mask, err := r.ReadBits(13)
		if err != nil {
			return nil, fmt.Errorf("reference_device %d mask: %w", i, err)
		}
		if mask&rdBodyPartMask != 0 {
			if d.BodyPartMask, err = r.ReadU32(); err != nil {
				return nil, fmt.Errorf("reference_device %d body_part_mask: %w", i, err)
			}
		}
		if d.MaxFreq, err = readOptFreq(r, mask, rdMaxFreq); err != nil {
			return nil, fmt.Errorf("reference_device %d max_freq: %w", i, err)
		}
		if d.MinFreq, err = readOptFreq(r, mask, rdMinFreq); err != nil {
			return nil, fmt.Errorf("reference_device %d min_freq: %w", i, err)
		}
		if d.ResFreq, err = readOptFreq(r, mask, rdResFreq); err != nil {
			return nil, fmt.Errorf("reference_device %d res_freq: %w", i, err)
		}
		if d.MaxAmp, err = readOptUnit(r, mask, rdMaxAmp); err != nil {
			return nil, fmt.Errorf("reference_device %d max_amp: %w", i, err)
		}
		if d.Impedance, err = readOptFloat(r, mask, rdImpedance); err != nil {
			return nil, fmt.Errorf("reference_device %d impedance: %w", i, err)
		}
		if d.MaxVoltage, err = readOptFloat(r, mask, rdMaxVoltage); err != nil {
			return nil, fmt.Errorf("reference_device %d max_voltage: %w", i, err)
		}
		if d.MaxCurrent, err = readOptFloat(r, mask, rdMaxCurrent); err != nil {
			return nil, fmt.Errorf("reference_device %d max_current: %w", i, err)
		}
		if d.MaxDisplacement, err = readOptFloat(r, mask, rdMaxDisp); err != nil {
			return nil, fmt.Errorf("reference_device %d max_displacement: %w", i, err)
		}
		if d.Weight, err = readOptFloat(r, mask, rdWeight); err != nil {
			return nil, fmt.Errorf("reference_device %d weight: %w", i, err)
		}
		if d.Size, err = readOptFloat(r, mask, rdSize); err != nil {
			return nil, fmt.Errorf("reference_device %d size: %w", i, err)
		}
		if mask&rdCustom != 0 {
			custom, err := r.ReadQuantF32(-maxFloat, maxFloat, 32)
			if err != nil {
				return nil, fmt.Errorf("reference_device %d custom: %w", i, err)
			}
			d.Custom = &custom
		}
		if mask&rdType != 0 {
			typ, err := r.ReadU8()
			if err != nil {
				return nil, fmt.Errorf("reference_device %d type: %w", i, err)
			}
			t := model.ReferenceDeviceType(typ)
			d.Type = &t
		}
		devices[i] = d
	}
	return devices, nil
}

func readOptFreq(r *bitio.Reader, mask uint64, bit uint64) (*float32, error) {
	if mask&bit == 0 {
		return nil, nil
	}
	v, err := r.ReadQuantF32(0, maxFrequency, 32)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readOptUnit(r *bitio.Reader, mask uint64, bit uint64) (*float32, error) {
	if mask&bit == 0 {
		return nil, nil
	}
	v, err := r.ReadQuantF32(0, maxAmplitude, 32)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readOptFloat(r *bitio.Reader, mask uint64, bit uint64) (*float32, error) {
	if mask&bit == 0 {
		return nil, nil
	}
	v, err := r.ReadQuantF32(0, maxFloat, 32)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
