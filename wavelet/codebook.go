// Package wavelet implements the dyadic multilevel biorthogonal wavelet
// decomposition WaveletCodec uses to split an effect block into subbands
// before psychohaptic analysis and bit allocation. The lifting structure
// (predict then update, applied to successive low-pass halves) is the 5/3
// transform run in float64 rather than integer-reversible arithmetic,
// since haptic blocks are lossy-coded downstream and need a real-valued
// analysis/synthesis pair.
package wavelet

// Levels returns the number of decomposition levels for a block of the
// given length: L = floor(log2(blockLength/4)).
func Levels(blockLength int) int {
	if blockLength < 4 {
		return 0
	}
	l := 0
	n := blockLength / 4
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}

// Codebook returns the subband size vector for a block of blockLength
// samples decomposed to levels L: book[0] = book[1] = blockLength/2^L, and
// book[k] = 2*book[k-1] for k in [2, L]. len(book) == levels+1, and
// sum(book) == blockLength.
func Codebook(blockLength, levels int) []int {
	if levels == 0 {
		return []int{blockLength}
	}
	book := make([]int, levels+1)
	base := blockLength >> uint(levels)
	book[0] = base
	book[1] = base
	for k := 2; k <= levels; k++ {
		book[k] = 2 * book[k-1]
	}
	return book
}

// Offsets returns the starting index of each subband in the coefficient
// array implied by book, in the same order: LL first, then details from
// coarsest to finest.
func Offsets(book []int) []int {
	offs := make([]int, len(book))
	acc := 0
	for i, n := range book {
		offs[i] = acc
		acc += n
	}
	return offs
}
