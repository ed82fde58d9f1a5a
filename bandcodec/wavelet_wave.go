package bandcodec

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/model"
)

// WaveletWaveCodec serializes a WaveletWave band: one record per effect,
// {position_ms: u32, bitstream_length: varint, bitstream_bytes}. The bitstream itself is
// produced and consumed by waveletcodec.EncodeBlock/DecodeBlock; this
// codec only frames it inside the band body alongside the effect's
// position.
type WaveletWaveCodec struct{}

func (WaveletWaveCodec) UID() int     { return int(model.BandWaveletWave) }
func (WaveletWaveCodec) Name() string { return "wavelet_wave" }

func (WaveletWaveCodec) Encode(band *model.Band) ([]byte, error) {
	w := bitio.NewWriter()
	for _, e := range band.Effects {
		w.WriteU32(uint32(e.PositionMs))
		w.WriteVarint(uint64(len(e.WaveletBitstream)))
		for _, b := range e.WaveletBitstream {
			w.WriteU8(b)
		}
	}
	return w.Bytes(), nil
}

func (WaveletWaveCodec) Decode(r *bitio.Reader, band *model.Band) error {
	for _, e := range band.Effects {
		pos, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("bandcodec: wavelet_wave: %w", err)
		}
		n, err := r.ReadVarint()
		if err != nil {
			return fmt.Errorf("bandcodec: wavelet_wave: %w", err)
		}
		bs := make([]byte, n)
		for i := range bs {
			b, err := r.ReadU8()
			if err != nil {
				return fmt.Errorf("bandcodec: wavelet_wave: %w", err)
			}
			bs[i] = b
		}
		e.PositionMs = int32(pos)
		e.WaveletBitstream = bs
	}
	return nil
}
