package waveletcodec_test

import (
	"math"
	"testing"

	"github.com/mpeghaptics/hmpg/psychohaptic"
	"github.com/mpeghaptics/hmpg/wavelet"
	"github.com/mpeghaptics/hmpg/waveletcodec"
)

func sumSquares(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return s
}

func TestEncodeDecodeRoundTripErrorDecreasesWithBudget(t *testing.T) {
	bl := 64
	block := make([]float64, bl)
	for i := range block {
		block[i] = math.Sin(2*math.Pi*float64(i)/8) + 0.3*math.Sin(2*math.Pi*float64(i)/3)
	}
	model := psychohaptic.DefaultModel{}

	errorAt := func(budget int) float64 {
		res, err := waveletcodec.EncodeBlock(block, 8000, budget, model)
		if err != nil {
			t.Fatalf("EncodeBlock(budget=%d): %v", budget, err)
		}
		book := wavelet.Codebook(bl, wavelet.Levels(bl))
		recon, err := waveletcodec.DecodeBlock(res.Bitstream, book, budget)
		if err != nil {
			t.Fatalf("DecodeBlock(budget=%d): %v", budget, err)
		}
		if len(recon) != bl {
			t.Fatalf("len(recon) = %d, want %d", len(recon), bl)
		}
		diff := make([]float64, bl)
		for i := range block {
			diff[i] = block[i] - recon[i]
		}
		return sumSquares(diff) / sumSquares(block)
	}

	lowBudget := 16 + bl*2
	highBudget := 16 + bl*waveletcodec.MaxBitsPerSubband
	lowErr := errorAt(lowBudget)
	highErr := errorAt(highBudget)
	if highErr > lowErr {
		t.Errorf("higher-budget error %v should not exceed lower-budget error %v", highErr, lowErr)
	}
	if highErr > 1e-3 {
		t.Errorf("full-budget relative error %v exceeds 1e-3", highErr)
	}
}

func TestEncodeDirac(t *testing.T) {
	bl := 128
	block := make([]float64, bl)
	block[0] = 1
	model := psychohaptic.DefaultModel{}

	budget := 16 + 90
	res, err := waveletcodec.EncodeBlock(block, 8000, budget, model)
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	book := wavelet.Codebook(bl, wavelet.Levels(bl))
	recon, err := waveletcodec.DecodeBlock(res.Bitstream, book, budget)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if recon[0] < 0.5 {
		t.Errorf("recon[0] = %v, want a strong first sample", recon[0])
	}
	var tailSq float64
	for _, v := range recon[1:] {
		tailSq += v * v
	}
	rms := math.Sqrt(tailSq / float64(len(recon)-1))
	if rms > 0.5 {
		t.Errorf("tail RMS = %v, want small", rms)
	}
}
