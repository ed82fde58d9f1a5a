package bitio

// Fixed-width big-endian convenience wrappers. All multi-byte integers in
// HJIF/HMPG and MIHS framing are big-endian regardless of host byte order
// (spec §9), which WriteBits/ReadBits already guarantee since they are
// MSB-first irrespective of alignment. These wrappers write a Go integer
// type that already fits its declared width, so the Overflow check inside
// WriteBits can never trigger; the error is always nil and discarded.

func (w *Writer) WriteU8(v uint8)   { _ = w.WriteBits(uint64(v), 8) }
func (w *Writer) WriteU16(v uint16) { _ = w.WriteBits(uint64(v), 16) }
func (w *Writer) WriteU32(v uint32) { _ = w.WriteBits(uint64(v), 32) }

func (w *Writer) WriteI8(v int8)   { _ = w.WriteBits(uint64(uint8(v)), 8) }
func (w *Writer) WriteI16(v int16) { _ = w.WriteBits(uint64(uint16(v)), 16) }
func (w *Writer) WriteI32(v int32) { _ = w.WriteBits(uint64(uint32(v)), 32) }

func (w *Writer) WriteF32(v float32) { _ = w.WriteBits(uint64(float32bits(v)), 32) }

// WriteVarint writes v as an unsigned LEB128 varint (7 bits per byte, MSB
// of each byte set while more bytes follow). Used for BandCodec's
// WaveletWave bitstream_length field.
func (w *Writer) WriteVarint(v uint64) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		_ = w.WriteBits(uint64(b), 8)
		if v == 0 {
			return
		}
	}
}

func (r *Reader) ReadU8() (uint8, error) {
	v, err := r.ReadBits(8)
	return uint8(v), err
}

func (r *Reader) ReadU16() (uint16, error) {
	v, err := r.ReadBits(16)
	return uint16(v), err
}

func (r *Reader) ReadU32() (uint32, error) {
	v, err := r.ReadBits(32)
	return uint32(v), err
}

func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadBits(8)
	return int8(uint8(v)), err
}

func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadBits(16)
	return int16(uint16(v)), err
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadBits(32)
	return int32(uint32(v)), err
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadBits(32)
	if err != nil {
		return 0, err
	}
	return float32frombits(uint32(v)), nil
}

// ReadVarint reads an unsigned LEB128 varint.
func (r *Reader) ReadVarint() (uint64, error) {
	var v uint64
	var shift uint
	for {
		b, err := r.ReadBits(8)
		if err != nil {
			return 0, err
		}
		v |= (b & 0x7F) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}
