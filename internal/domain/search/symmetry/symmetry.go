// Package symmetry describes the structural restrictions that shrink the search space.
package symmetry

import "math"

// Symmetry ties positions of the second half of a sequence to the first half.
type Symmetry string

// Symmetry constants.
const (
	// None leaves every position except the first free.
	None Symmetry = "none"
	// Palindromic writes v[n-1-i] = v[i].
	Palindromic Symmetry = "palindromic"
	// II writes v[n/2+i] = (-1)^i v[i].
	II Symmetry = "ii"
	// III writes v[n/2+i] = (-1)^(i/2) v[i].
	III Symmetry = "iii"
	// IV writes v[n/2+i] = -v[i].
	IV Symmetry = "iv"
)

// All lists the supported symmetries.
var All = []Symmetry{None, Palindromic, II, III, IV}

// IsValid checks if the symmetry is one of the supported values.
func (s Symmetry) IsValid() bool {
	switch s {
	case None, Palindromic, II, III, IV:
		return true
	}
	return false
}

// Supports reports whether the symmetry can be applied to sequences of the given size.
// The half-shift symmetries need an even size.
func (s Symmetry) Supports(size int) bool {
	switch s {
	case II, III, IV:
		return size%2 == 0
	}
	return s.IsValid()
}

// Depth returns the exclusive upper bound of free positions: the search
// assigns indices 1..Depth-1 and the symmetry fills the rest.
func (s Symmetry) Depth(size int) int {
	if s == None {
		return size
	}
	return (size + 1) / 2
}

// Mirror returns the position tied to index and whether the mirrored value is negated.
// ok is false when the symmetry ties nothing to index.
func (s Symmetry) Mirror(size, index int) (pos int, negate, ok bool) {
	switch s {
	case Palindromic:
		return size - 1 - index, false, true
	case II:
		return size/2 + index, index%2 == 1, true
	case III:
		return size/2 + index, (index/2)%2 == 1, true
	case IV:
		return size/2 + index, true, true
	}
	return 0, false, false
}

// Leaves returns the number of complete assignments visited by an
// exhaustive search over an alphabet of the given size, saturating at math.MaxUint64.
func (s Symmetry) Leaves(size, alphabetSize int) uint64 {
	free := s.Depth(size) - 1
	if free <= 0 {
		return 1
	}
	leaves := uint64(1)
	for range free {
		if leaves > math.MaxUint64/uint64(alphabetSize) {
			return math.MaxUint64
		}
		leaves *= uint64(alphabetSize)
	}
	return leaves
}
