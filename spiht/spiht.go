package spiht

import (
	"fmt"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/herrors"
)

// Encode packs coeffs (addressed through the subband tree implied by book)
// into a bitstream within budgetBits, using progressive bitplane sorting
// and refinement passes coded through an adaptive arithmetic back-end.
// Encoding stops the instant the budget is spent, leaving a prefix of the
// full embedded bitstream; that is SPIHT's intended truncation behavior,
// not a partial failure.
func Encode(coeffs []int32, book []int, budgetBits int) ([]byte, error) {
	minHeader := book[0]
	if budgetBits < minHeader {
		return nil, fmt.Errorf("spiht: budget %d below minimum %d: %w", budgetBits, minHeader, herrors.BudgetTooSmall)
	}

	t := newTree(book)
	n0 := startBitplane(coeffs)
	n := n0

	lip := t.roots()
	var lis []setEntry
	for _, r := range lip {
		if t.hasDescendants(r) {
			lis = append(lis, setEntry{r, true})
		}
	}
	var lsp []coord

	enc := newRangeEncoder()
	ctxs := newContexts()
	bitsUsed := 0
	spent := func() bool { return bitsUsed >= budgetBits }
	emit := func(pr *prob, bit int) { enc.encodeBit(pr, bit); bitsUsed++ }

outer:
	for n >= 0 {
		threshold := int32(1) << uint(n)
		lspBefore := append([]coord(nil), lsp...)

		var nextLIP []coord
		for _, c := range lip {
			if spent() {
				nextLIP = append(nextLIP, c)
				continue
			}
			idx := t.absIndex(c)
			sig := abs32(coeffs[idx]) >= threshold
			emit(ctxs.significance, boolBit(sig))
			if sig {
				emit(ctxs.sign, boolBit(coeffs[idx] < 0))
				lsp = append(lsp, c)
			} else {
				nextLIP = append(nextLIP, c)
			}
		}
		lip = nextLIP

		i := 0
		var keptLIS []setEntry
		for i < len(lis) {
			e := lis[i]
			i++
			if spent() {
				keptLIS = append(keptLIS, e)
				continue
			}
			var sig bool
			if e.typeA {
				sig = t.significantDescendants(e.coord, coeffs, threshold)
			} else {
				sig = t.significantGrandchildren(e.coord, coeffs, threshold)
			}
			emit(ctxs.setSignificance, boolBit(sig))
			if !sig {
				keptLIS = append(keptLIS, e)
				continue
			}
			if e.typeA {
				for _, k := range t.children(e.coord) {
					if spent() {
						lip = append(lip, k)
						continue
					}
					kidx := t.absIndex(k)
					kidSig := abs32(coeffs[kidx]) >= threshold
					emit(ctxs.significance, boolBit(kidSig))
					if kidSig {
						emit(ctxs.sign, boolBit(coeffs[kidx] < 0))
						lsp = append(lsp, k)
					} else {
						lip = append(lip, k)
					}
				}
				if t.hasGrandchildren(e.coord) {
					lis = append(lis, setEntry{e.coord, false})
				}
			} else {
				for _, k := range t.children(e.coord) {
					lis = append(lis, setEntry{k, true})
				}
			}
		}
		lis = keptLIS

		for _, c := range lspBefore {
			if spent() {
				break outer
			}
			idx := t.absIndex(c)
			bit := int((abs32(coeffs[idx]) >> uint(n)) & 1)
			emit(ctxs.refinement, bit)
		}

		n--
	}

	body := enc.flush()
	w := bitio.NewWriter()
	_ = w.WriteBits(uint64(n0Field(n0)), 6)
	header := w.Bytes()
	return append(header, body...), nil
}

// Decode is the strict inverse of Encode, given the same book and
// budgetBits.
func Decode(data []byte, book []int, budgetBits int) ([]int32, error) {
	minHeader := book[0]
	if budgetBits < minHeader {
		return nil, fmt.Errorf("spiht: budget %d below minimum %d: %w", budgetBits, minHeader, herrors.BudgetTooSmall)
	}

	r := bitio.NewReader(data)
	field, err := r.ReadBits(6)
	if err != nil {
		return nil, fmt.Errorf("spiht: reading bitplane header: %w", err)
	}
	r.PadToByte()
	n := n0FromField(int(field))

	t := newTree(book)
	total := 0
	for _, sz := range book {
		total += sz
	}
	coeffs := make([]int32, total)

	dec := newRangeDecoder(data[r.BytePos():])
	ctxs := newContexts()
	bitsUsed := 0
	spent := func() bool { return bitsUsed >= budgetBits }
	read := func(pr *prob) int { bit := dec.decodeBit(pr); bitsUsed++; return bit }

	lip := t.roots()
	var lis []setEntry
	for _, c := range lip {
		if t.hasDescendants(c) {
			lis = append(lis, setEntry{c, true})
		}
	}
	var lsp []coord

outer:
	for n >= 0 {
		threshold := int32(1) << uint(n)
		lspBefore := append([]coord(nil), lsp...)

		var nextLIP []coord
		for _, c := range lip {
			if spent() {
				nextLIP = append(nextLIP, c)
				continue
			}
			idx := t.absIndex(c)
			sig := read(ctxs.significance) == 1
			if sig {
				neg := read(ctxs.sign) == 1
				if neg {
					coeffs[idx] = -threshold
				} else {
					coeffs[idx] = threshold
				}
				lsp = append(lsp, c)
			} else {
				nextLIP = append(nextLIP, c)
			}
		}
		lip = nextLIP

		i := 0
		var keptLIS []setEntry
		for i < len(lis) {
			e := lis[i]
			i++
			if spent() {
				keptLIS = append(keptLIS, e)
				continue
			}
			sig := read(ctxs.setSignificance) == 1
			if !sig {
				keptLIS = append(keptLIS, e)
				continue
			}
			if e.typeA {
				for _, k := range t.children(e.coord) {
					if spent() {
						lip = append(lip, k)
						continue
					}
					kidx := t.absIndex(k)
					kidSig := read(ctxs.significance) == 1
					if kidSig {
						neg := read(ctxs.sign) == 1
						if neg {
							coeffs[kidx] = -threshold
						} else {
							coeffs[kidx] = threshold
						}
						lsp = append(lsp, k)
					} else {
						lip = append(lip, k)
					}
				}
				if t.hasGrandchildren(e.coord) {
					lis = append(lis, setEntry{e.coord, false})
				}
			} else {
				for _, k := range t.children(e.coord) {
					lis = append(lis, setEntry{k, true})
				}
			}
		}
		lis = keptLIS

		for _, c := range lspBefore {
			if spent() {
				break outer
			}
			idx := t.absIndex(c)
			bit := read(ctxs.refinement)
			if coeffs[idx] < 0 {
				coeffs[idx] -= int32(bit) << uint(n)
			} else {
				coeffs[idx] += int32(bit) << uint(n)
			}
		}

		n--
	}

	return coeffs, nil
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// startBitplane returns floor(log2(max|coeffs|)), or -1 if all coeffs are 0.
func startBitplane(coeffs []int32) int {
	var maxAbs int32
	for _, c := range coeffs {
		if a := abs32(c); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		return -1
	}
	n := 0
	for (int32(1) << uint(n+1)) <= maxAbs {
		n++
	}
	return n
}

// n0Field/n0FromField map the starting bitplane (which may be -1) onto the
// unsigned 6-bit header field and back.
func n0Field(n int) int   { return n + 1 }
func n0FromField(f int) int { return f - 1 }
