package quaternion

import "fmt"

// Size is the number of alphabet symbols.
const Size = 16

// Labels holds the display label of every alphabet element, in declaration order.
const Labels = "+-iIjJkKqQxXyYzZ"

// LegacyLabels is the older labelling, accepted on input only. Its last six
// symbols are not ASCII.
const LegacyLabels = "+-iIoOuUqQìÌòÒùÙ"

// alphabet is the fixed 16-element set of unit quaternions used as sequence
// symbols: ±1, ±i, ±j, ±k, ±q and q·(±i), q·(±j), q·(±k) with q = 1/2(1+i+j+k).
var alphabet = [Size]Quaternion{
	One, One.Neg(),
	I, I.Neg(),
	J, J.Neg(),
	K, K.Neg(),
	Half, Half.Neg(),
	Half.Mul(I), Half.Mul(I.Neg()),
	Half.Mul(J), Half.Mul(J.Neg()),
	Half.Mul(K), Half.Mul(K.Neg()),
}

var (
	indexByElement = make(map[Quaternion]int, Size)
	indexByLabel   [256]int8
	indexByLegacy  = make(map[rune]int, Size)
)

func init() {
	for i := range indexByLabel {
		indexByLabel[i] = -1
	}
	for i, q := range alphabet {
		if _, dup := indexByElement[q]; dup {
			panic(fmt.Sprintf("quaternion: duplicate alphabet element %s", q))
		}
		indexByElement[q] = i
		indexByLabel[Labels[i]] = int8(i)
	}
	i := 0
	for _, r := range LegacyLabels {
		indexByLegacy[r] = i
		i++
	}
	if i != Size {
		panic(fmt.Sprintf("quaternion: %d legacy labels, want %d", i, Size))
	}
}

// Alphabet returns a copy of the alphabet in declaration order.
func Alphabet() [Size]Quaternion {
	return alphabet
}

// At returns the alphabet element with the given declaration index.
func At(i int) Quaternion {
	return alphabet[i]
}

// Index returns the declaration index of q, or false if q is not in the alphabet.
func Index(q Quaternion) (int, bool) {
	i, ok := indexByElement[q]
	return i, ok
}

// Contains reports whether q belongs to the alphabet.
func Contains(q Quaternion) bool {
	_, ok := indexByElement[q]
	return ok
}

// Label returns the display label of an alphabet element.
// It panics if q is not in the alphabet.
func Label(q Quaternion) byte {
	i, ok := indexByElement[q]
	if !ok {
		panic(fmt.Sprintf("quaternion: %s is not an alphabet element", q))
	}
	return Labels[i]
}

// FromLabel returns the alphabet element displayed as c.
func FromLabel(c byte) (Quaternion, bool) {
	i := indexByLabel[c]
	if i < 0 {
		return Zero, false
	}
	return alphabet[i], true
}

// FromRune is FromLabel extended with the LegacyLabels aliases.
func FromRune(r rune) (Quaternion, bool) {
	if r < 0x80 {
		if q, ok := FromLabel(byte(r)); ok {
			return q, true
		}
	}
	i, ok := indexByLegacy[r]
	if !ok {
		return Zero, false
	}
	return alphabet[i], true
}
