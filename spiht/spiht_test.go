package spiht_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/mpeghaptics/hmpg/herrors"
	"github.com/mpeghaptics/hmpg/spiht"
	"github.com/mpeghaptics/hmpg/wavelet"
)

func testBook(blockLength int) []int {
	return wavelet.Codebook(blockLength, wavelet.Levels(blockLength))
}

func totalLen(book []int) int {
	n := 0
	for _, b := range book {
		n += b
	}
	return n
}

func TestEncodeDecodeRoundTripFullBudget(t *testing.T) {
	book := testBook(32)
	n := totalLen(book)
	rng := rand.New(rand.NewSource(7))

	coeffs := make([]int32, n)
	for i := range coeffs {
		coeffs[i] = int32(rng.Intn(2000) - 1000)
	}

	budget := n * 15
	bitstream, err := spiht.Encode(coeffs, book, budget)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	recon, err := spiht.Decode(bitstream, book, budget)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(recon) != n {
		t.Fatalf("len(recon) = %d, want %d", len(recon), n)
	}
	for i := range coeffs {
		if recon[i] != coeffs[i] {
			t.Errorf("coeff %d: recon = %d, want %d", i, recon[i], coeffs[i])
		}
	}
}

func TestEncodeDecodePartialBudgetReducesError(t *testing.T) {
	book := testBook(32)
	n := totalLen(book)
	rng := rand.New(rand.NewSource(3))
	coeffs := make([]int32, n)
	for i := range coeffs {
		coeffs[i] = int32(rng.Intn(4000) - 2000)
	}

	errAt := func(budget int) int64 {
		bitstream, err := spiht.Encode(coeffs, book, budget)
		if err != nil {
			t.Fatalf("Encode(budget=%d): %v", budget, err)
		}
		recon, err := spiht.Decode(bitstream, book, budget)
		if err != nil {
			t.Fatalf("Decode(budget=%d): %v", budget, err)
		}
		var sq int64
		for i := range coeffs {
			d := int64(coeffs[i]) - int64(recon[i])
			sq += d * d
		}
		return sq
	}

	lowBudget := n * 2
	highBudget := n * 14
	if errAt(highBudget) > errAt(lowBudget) {
		t.Errorf("higher budget should not increase squared error: low=%v high=%v", errAt(lowBudget), errAt(highBudget))
	}
}

func TestEncodeBudgetTooSmall(t *testing.T) {
	book := testBook(32)
	n := totalLen(book)
	coeffs := make([]int32, n)
	_, err := spiht.Encode(coeffs, book, book[0]-1)
	if !errors.Is(err, herrors.BudgetTooSmall) {
		t.Fatalf("Encode with tiny budget = %v, want BudgetTooSmall", err)
	}
}

func TestEncodeAllZeroBlock(t *testing.T) {
	book := testBook(16)
	n := totalLen(book)
	coeffs := make([]int32, n)
	bitstream, err := spiht.Encode(coeffs, book, n)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	recon, err := spiht.Decode(bitstream, book, n)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, v := range recon {
		if v != 0 {
			t.Errorf("coeff %d = %d, want 0", i, v)
		}
	}
}
