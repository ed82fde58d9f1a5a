package wavelet

// Forward decomposes data (length must be even at every level down to the
// computed number of levels; Forward does not pad, so callers pass blocks
// of a suitable length) into a single coefficient array packed as
// [LL, detail_L, detail_{L-1}, ..., detail_1], alongside the codebook
// describing each subband's length. Round-tripping through Forward then
// Inverse reproduces the input to within float64 rounding (<=1e-10 for
// block lengths used by WaveletCodec).
func Forward(data []float64) (coeffs []float64, book []int) {
	n := len(data)
	levels := Levels(n)
	book = Codebook(n, levels)

	cur := append([]float64(nil), data...)
	details := make([][]float64, levels+1)
	for lvl := 1; lvl <= levels; lvl++ {
		low, high := split(cur)
		details[lvl] = high
		cur = low
	}

	coeffs = make([]float64, 0, n)
	coeffs = append(coeffs, cur...)
	for lvl := levels; lvl >= 1; lvl-- {
		coeffs = append(coeffs, details[lvl]...)
	}
	return coeffs, book
}

// Inverse reconstructs the original sample sequence from a coefficient
// array packed the way Forward produces it, using the accompanying
// codebook to locate each subband.
func Inverse(coeffs []float64, book []int) []float64 {
	levels := len(book) - 1
	offs := Offsets(book)

	cur := append([]float64(nil), coeffs[offs[0]:offs[0]+book[0]]...)
	for i := 1; i <= levels; i++ {
		high := coeffs[offs[i] : offs[i]+book[i]]
		cur = merge(cur, high)
	}
	return cur
}

// split performs one level of the predict/update lifting step, producing
// the next level's low-pass and high-pass halves: predict the odd samples
// from their even neighbors, then update the even samples from the new
// high-pass values. This is the 5/3 biorthogonal lifting scheme run in
// float64 with symmetric (reflected) boundary extension, so the inverse
// is an exact algebraic one rather than a rounding approximation.
func split(data []float64) (low, high []float64) {
	n := len(data)
	half := n / 2
	even := make([]float64, half)
	odd := make([]float64, half)
	for i := 0; i < half; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	high = make([]float64, half)
	for i := 0; i < half; i++ {
		e1 := even[i]
		if i+1 < half {
			e1 = even[i+1]
		}
		high[i] = odd[i] - (even[i]+e1)/2
	}

	low = make([]float64, half)
	for i := 0; i < half; i++ {
		hPrev := high[i]
		if i-1 >= 0 {
			hPrev = high[i-1]
		}
		low[i] = even[i] + (hPrev+high[i])/4
	}
	return low, high
}

// merge is the exact inverse of split.
func merge(low, high []float64) []float64 {
	half := len(low)
	even := make([]float64, half)
	odd := make([]float64, half)

	for i := 0; i < half; i++ {
		hPrev := high[i]
		if i-1 >= 0 {
			hPrev = high[i-1]
		}
		even[i] = low[i] - (hPrev+high[i])/4
	}
	for i := 0; i < half; i++ {
		e1 := even[i]
		if i+1 < half {
			e1 = even[i+1]
		}
		odd[i] = high[i] + (even[i]+e1)/2
	}

	data := make([]float64, half*2)
	for i := 0; i < half; i++ {
		data[2*i] = even[i]
		data[2*i+1] = odd[i]
	}
	return data
}
