// Package waveletcodec orchestrates a single effect block through DWT,
// psychohaptic-driven bit allocation, dead-zone scalar quantization and
// SPIHT entropy coding, and the strict inverse on decode. It runs once per
// WaveletWave effect block; BandCodec only frames the resulting bitstream,
// and HJIFCodec and the streamer never touch wavelet, psychohaptic or spiht
// directly.
package waveletcodec

import (
	"fmt"
	"math"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/herrors"
	"github.com/mpeghaptics/hmpg/psychohaptic"
	"github.com/mpeghaptics/hmpg/spiht"
	"github.com/mpeghaptics/hmpg/wavelet"
)

// MaxBitsPerSubband is the per-subband allocation clamp (MAXBITS, §4.5).
const MaxBitsPerSubband = 15

// Result is everything WaveletCodec produces for one block: the bitstream
// to store in Effect.WaveletBitstream, and the scalar/maxbits pair a caller
// can store in Effect.WaveletScalar/WaveletMaxBits for inspection without
// re-parsing the bitstream header. EncodeBlock itself writes no Effect.
type Result struct {
	Bitstream []byte
	QMax      float64
	MaxBits   int32
}

// EncodeBlock runs one block of real samples through the full forward
// pipeline within budgetBits.
func EncodeBlock(blockTime []float64, fs int, budgetBits int, model psychohaptic.Model) (*Result, error) {
	dwtCoeffs, book := wavelet.Forward(blockTime)
	smr, bandEnergy := model.Analyze(blockTime, fs, book)

	qmax := 0.0
	for _, c := range dwtCoeffs {
		if a := math.Abs(c); a > qmax {
			qmax = a
		}
	}
	if qmax == 0 {
		qmax = 1e-12
	}

	numBands := len(book)
	levels := numBands - 1
	bitalloc := make([]int, numBands)
	quantized := make([]float64, len(dwtCoeffs))
	noiseEnergy := make([]float64, numBands)

	offs := wavelet.Offsets(book)
	requantizeBand := func(b int) {
		delta := qmax / math.Pow(2, float64(bitalloc[b]))
		maxLevel := math.Pow(2, float64(bitalloc[b])) - 1
		var sumSq float64
		for i := offs[b]; i < offs[b]+book[b]; i++ {
			x := dwtCoeffs[i]
			var q float64
			if bitalloc[b] > 0 {
				q = math.Floor(math.Abs(x)/delta+0.5)
				if q > maxLevel {
					q = maxLevel
				}
			}
			v := q * delta
			if x < 0 {
				v = -v
			}
			quantized[i] = v
			d := x - v
			sumSq += d * d
		}
		noiseEnergy[b] = sumSq
	}
	for b := range bitalloc {
		requantizeBand(b)
	}

	budget := budgetBits
	if budget > numBands*MaxBitsPerSubband {
		budget = numBands * MaxBitsPerSubband
	}

	for sum(bitalloc) < budget {
		best := -1
		bestMNR := math.Inf(1)
		for b := 0; b < numBands; b++ {
			if bitalloc[b] >= MaxBitsPerSubband {
				continue
			}
			ne := noiseEnergy[b]
			if ne <= 0 {
				ne = 1e-18
			}
			snr := 10 * math.Log10(bandEnergy[b]/ne)
			mnr := snr - smr[b]
			if mnr < bestMNR {
				bestMNR = mnr
				best = b
			}
		}
		if best == -1 {
			break
		}

		if best != 0 {
			nonRootSum := sum(bitalloc[1:])
			if nonRootSum+1 > MaxBitsPerSubband*levels {
				remaining := budget - sum(bitalloc)
				bitalloc[numBands-1] += remaining
				requantizeBand(numBands - 1)
				break
			}
		}
		bitalloc[best]++
		requantizeBand(best)
	}

	maxBits := 0
	for _, b := range bitalloc {
		if b > maxBits {
			maxBits = b
		}
	}

	intCoeffs := make([]int32, len(dwtCoeffs))
	for b := 0; b < numBands; b++ {
		delta := qmax / math.Pow(2, float64(bitalloc[b]))
		shift := uint(maxBits - bitalloc[b])
		for i := offs[b]; i < offs[b]+book[b]; i++ {
			level := int32(0)
			if bitalloc[b] > 0 {
				level = int32(math.Round(math.Abs(quantized[i]) / delta))
			}
			v := level << shift
			if quantized[i] < 0 {
				v = -v
			}
			intCoeffs[i] = v
		}
	}

	spihtBudget := budgetBits - headerBits
	bitstream, err := spiht.Encode(intCoeffs, book, spihtBudget)
	if err != nil {
		return nil, fmt.Errorf("waveletcodec: %w", err)
	}

	w := bitio.NewWriter()
	_ = w.WriteBits(uint64(encodeWavMax(qmax)), 8)
	_ = w.WriteBits(uint64(maxBits), 8)
	header := w.Bytes()

	return &Result{
		Bitstream: append(header, bitstream...),
		QMax:      qmax,
		MaxBits:   int32(maxBits),
	}, nil
}

// headerBits is the size, in bits, of the WAVMAX + maxbits header this
// package prepends to every SPIHT payload so each block's bitstream is
// self-describing; spec §4.5 only names the WAVMAX byte, the maxbits byte
// is this package's own addition to avoid a separate out-of-band channel.
const headerBits = 16

// DecodeBlock is the strict inverse of EncodeBlock.
func DecodeBlock(bitstream []byte, book []int, budgetBits int) ([]float64, error) {
	if len(bitstream) < 2 {
		return nil, fmt.Errorf("waveletcodec: %w: bitstream shorter than header", herrors.Truncated)
	}
	r := bitio.NewReader(bitstream)
	wavmaxField, err := r.ReadBits(8)
	if err != nil {
		return nil, fmt.Errorf("waveletcodec: %w", err)
	}
	maxBitsField, err := r.ReadBits(8)
	if err != nil {
		return nil, fmt.Errorf("waveletcodec: %w", err)
	}
	qmax := decodeWavMax(byte(wavmaxField))
	maxBits := int(maxBitsField)

	spihtBudget := budgetBits - headerBits
	intCoeffs, err := spiht.Decode(bitstream[r.BytePos():], book, spihtBudget)
	if err != nil {
		return nil, fmt.Errorf("waveletcodec: %w", err)
	}

	coeffs := make([]float64, len(intCoeffs))
	scale := qmax / math.Pow(2, float64(maxBits))
	for i, v := range intCoeffs {
		coeffs[i] = float64(v) * scale
	}

	return wavelet.Inverse(coeffs, book), nil
}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

// encodeWavMax packs qmax into the 8-bit WAVMAX header: mode 0 (top bit 0)
// uses 7 fractional bits for |qmax| < 1; mode 1 (top bit 1) uses 3 integer
// and 4 fractional bits otherwise.
func encodeWavMax(qmax float64) byte {
	if qmax < 1 {
		code := int(math.Round(qmax * 127))
		if code > 127 {
			code = 127
		}
		if code < 0 {
			code = 0
		}
		return byte(code)
	}
	code := int(math.Round(qmax * 16))
	if code > 127 {
		code = 127
	}
	return 0x80 | byte(code)
}

func decodeWavMax(b byte) float64 {
	mode := b >> 7
	data := b & 0x7F
	if mode == 0 {
		return float64(data) / 127
	}
	return float64(data) / 16
}
