package spiht

// coord addresses one coefficient by its subband level (0 = the coarsest
// band, i.e. the wavelet LL output) and its position within that level's
// band.
type coord struct {
	level, pos int
}

// setEntry is one LIS member: the set it represents is D(node) (all
// descendants) when typeA is true, or L(node) (descendants excluding
// direct children) when false.
type setEntry struct {
	coord
	typeA bool
}

// tree derives the 1D spatial-orientation-tree structure implied by a
// wavelet codebook: the coarsest band's entries are tree roots, each with
// one child at the same position in the next band (since book[0] ==
// book[1]); from there on each node at level k, position p has children
// at level k+1, positions 2p and 2p+1 (book[k+1] == 2*book[k]).
type tree struct {
	book    []int
	offsets []int
	finest  int
}

func newTree(book []int) *tree {
	offsets := make([]int, len(book))
	acc := 0
	for i, n := range book {
		offsets[i] = acc
		acc += n
	}
	return &tree{book: book, offsets: offsets, finest: len(book) - 1}
}

func (t *tree) absIndex(c coord) int { return t.offsets[c.level] + c.pos }

func (t *tree) roots() []coord {
	roots := make([]coord, t.book[0])
	for i := range roots {
		roots[i] = coord{0, i}
	}
	return roots
}

// children returns node's direct offspring, or nil at the finest band.
func (t *tree) children(c coord) []coord {
	if c.level == t.finest {
		return nil
	}
	if c.level == 0 {
		if len(t.book) == 1 {
			return nil
		}
		return []coord{{1, c.pos}}
	}
	return []coord{{c.level + 1, 2 * c.pos}, {c.level + 1, 2*c.pos + 1}}
}

// hasDescendants reports whether node has any offspring at all.
func (t *tree) hasDescendants(c coord) bool { return len(t.children(c)) > 0 }

// hasGrandchildren reports whether L(node) is non-empty, i.e. node's
// direct children themselves have children.
func (t *tree) hasGrandchildren(c coord) bool {
	kids := t.children(c)
	if len(kids) == 0 {
		return false
	}
	return len(t.children(kids[0])) > 0
}

// significantDescendants tests D(node): whether any descendant coefficient
// (children and below) has magnitude >= threshold.
func (t *tree) significantDescendants(c coord, coeffs []int32, threshold int32) bool {
	for _, k := range t.children(c) {
		if abs32(coeffs[t.absIndex(k)]) >= threshold {
			return true
		}
		if t.significantDescendants(k, coeffs, threshold) {
			return true
		}
	}
	return false
}

// significantGrandchildren tests L(node): whether any descendant of node's
// children (i.e. grandchildren and below) has magnitude >= threshold.
func (t *tree) significantGrandchildren(c coord, coeffs []int32, threshold int32) bool {
	for _, k := range t.children(c) {
		if t.significantDescendants(k, coeffs, threshold) {
			return true
		}
	}
	return false
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
