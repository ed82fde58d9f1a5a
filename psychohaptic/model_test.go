package psychohaptic_test

import (
	"math"
	"testing"

	"github.com/mpeghaptics/hmpg/psychohaptic"
	"github.com/mpeghaptics/hmpg/wavelet"
)

func TestAnalyzeReturnsOneEntryPerSubband(t *testing.T) {
	bl := 64
	levels := wavelet.Levels(bl)
	book := wavelet.Codebook(bl, levels)

	block := make([]float64, bl)
	for i := range block {
		block[i] = math.Sin(2 * math.Pi * float64(i) / 16)
	}

	m := psychohaptic.DefaultModel{}
	smr, energy := m.Analyze(block, 8000, book)

	if len(smr) != len(book) || len(energy) != len(book) {
		t.Fatalf("len(smr)=%d len(energy)=%d, want %d", len(smr), len(energy), len(book))
	}
	for b, e := range energy {
		if e <= 0 {
			t.Errorf("bandEnergy[%d] = %v, want > 0", b, e)
		}
	}
}

func TestAnalyzeSilenceHasLowEnergy(t *testing.T) {
	bl := 32
	book := wavelet.Codebook(bl, wavelet.Levels(bl))
	block := make([]float64, bl)

	m := psychohaptic.DefaultModel{}
	_, energy := m.Analyze(block, 8000, book)
	for b, e := range energy {
		if e > 1e-6 {
			t.Errorf("bandEnergy[%d] = %v for a silent block, want ~0", b, e)
		}
	}
}
