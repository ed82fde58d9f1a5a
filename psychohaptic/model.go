// Package psychohaptic estimates, per wavelet sub-band, the signal-to-mask
// ratio WaveletCodec's bit-allocation loop needs to shape quantization
// noise below what a human could feel. It is the one black-box collaborator
// WaveletCodec treats through an interface rather than a concrete type, so
// the masking model can be swapped without touching the allocation loop.
package psychohaptic

import "math"

// Masking-curve constants from the reference peak-spreading function.
const (
	alpha = 20.0
	beta  = 20000.0
	gamma = 1200.0
)

// Model computes per-sub-band signal-to-mask ratio and energy for a block.
type Model interface {
	Analyze(block []float64, fs int, book []int) (smr []float64, bandEnergy []float64)
}

// DefaultModel implements Model with a direct DFT magnitude spectrum, a
// fixed perceptual threshold curve, and a peak-spreading masking function.
type DefaultModel struct{}

// Analyze returns SMR[b] = 10*log10(bandEnergy[b] / maskEnergy[b]) and
// bandEnergy[b] = sum(10^(|X[k]|/20)) for each sub-band b in book, where X
// is the dB-magnitude spectrum of block.
func (DefaultModel) Analyze(block []float64, fs int, book []int) (smr []float64, bandEnergy []float64) {
	magDB := dbMagnitudeSpectrum(block)
	threshold := maskingThreshold(magDB, fs, len(block))

	numBands := len(book)
	smr = make([]float64, numBands)
	bandEnergy = make([]float64, numBands)

	offset := 0
	n := len(block)
	for b, size := range book {
		lo, hi := binRangeForSubband(offset, size, numBands, n)
		offset += size

		var energy, maskEnergy float64
		count := 0
		for k := lo; k < hi && k < len(magDB); k++ {
			energy += math.Pow(10, magDB[k]/20)
			maskEnergy += math.Pow(10, threshold[k]/20)
			count++
		}
		if count == 0 {
			energy = 1e-12
			maskEnergy = 1e-12
		}
		bandEnergy[b] = energy
		if maskEnergy <= 0 {
			maskEnergy = 1e-12
		}
		smr[b] = 10 * math.Log10(energy/maskEnergy)
	}
	return smr, bandEnergy
}

// binRangeForSubband maps wavelet sub-band b (of numBands, sized per book)
// onto the corresponding slice of the half-spectrum FFT bins, in proportion
// to its share of the block.
func binRangeForSubband(offset, size, numBands, blockLen int) (lo, hi int) {
	half := blockLen/2 + 1
	lo = offset * half / blockLen
	hi = (offset + size) * half / blockLen
	if hi > half {
		hi = half
	}
	if lo >= hi {
		hi = lo + 1
	}
	return lo, hi
}

// dbMagnitudeSpectrum computes the dB magnitude of the one-sided DFT of x
// via a direct O(n^2) transform; block lengths here are small (wavelet
// block sizes), so an FFT is not warranted.
func dbMagnitudeSpectrum(x []float64) []float64 {
	n := len(x)
	half := n/2 + 1
	mag := make([]float64, half)
	for k := 0; k < half; k++ {
		var re, im float64
		for t := 0; t < n; t++ {
			theta := -2 * math.Pi * float64(k) * float64(t) / float64(n)
			re += x[t] * math.Cos(theta)
			im += x[t] * math.Sin(theta)
		}
		m := math.Hypot(re, im)
		if m < 1e-12 {
			m = 1e-12
		}
		mag[k] = 20 * math.Log10(m)
	}
	return mag
}

// maskingThreshold returns, per FFT bin, the pointwise max of a fixed
// perceptual threshold curve and the peak-spreading function applied to
// each detected spectral peak.
func maskingThreshold(magDB []float64, fs, blockLen int) []float64 {
	half := len(magDB)
	threshold := make([]float64, half)
	for k := range threshold {
		threshold[k] = fixedThresholdCurve(binFreq(k, fs, blockLen))
	}

	peaks := detectPeaks(magDB)
	for _, pk := range peaks {
		fPeak := binFreq(pk, fs, blockLen)
		peakLevel := magDB[pk]
		for k := range threshold {
			f := binFreq(k, fs, blockLen)
			spread := peakSpread(peakLevel, fPeak, f)
			if spread > threshold[k] {
				threshold[k] = spread
			}
		}
	}
	return threshold
}

func binFreq(k, fs, blockLen int) float64 {
	if blockLen == 0 {
		return 0
	}
	return float64(k) * float64(fs) / float64(blockLen)
}

// fixedThresholdCurve is a quadratic-in-log-frequency absolute threshold,
// clamped so it never drops below a floor at high frequency.
func fixedThresholdCurve(f float64) float64 {
	if f < 1 {
		f = 1
	}
	logf := math.Log10(f)
	curve := -40 + 14*logf*logf
	floor := -10.0
	if curve < floor {
		return floor
	}
	return curve
}

// peakSpread is the spreading function applied outward from a detected
// peak: peak_level - alpha + (alpha/beta)*f_peak - gamma*(f-f_peak)^2/f_peak^2.
func peakSpread(peakLevel, fPeak, f float64) float64 {
	if fPeak < 1 {
		fPeak = 1
	}
	d := f - fPeak
	return peakLevel - alpha + (alpha/beta)*fPeak - gamma*d*d/(fPeak*fPeak)
}

// detectPeaks finds local maxima no more than 40 dB below the block's
// overall maximum and with prominence >= 10 dB versus their immediate
// neighbors.
func detectPeaks(magDB []float64) []int {
	if len(magDB) == 0 {
		return nil
	}
	maxVal := magDB[0]
	for _, v := range magDB {
		if v > maxVal {
			maxVal = v
		}
	}

	var peaks []int
	for k := 1; k < len(magDB)-1; k++ {
		if magDB[k] < maxVal-40 {
			continue
		}
		if magDB[k] <= magDB[k-1] || magDB[k] <= magDB[k+1] {
			continue
		}
		prominence := magDB[k] - math.Min(magDB[k-1], magDB[k+1])
		if prominence >= 10 {
			peaks = append(peaks, k)
		}
	}
	return peaks
}
