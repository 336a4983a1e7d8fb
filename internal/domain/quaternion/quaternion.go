// Package quaternion implements exact arithmetic over the Hurwitz quaternions
// and the 16-element alphabet used by the sequence search.
package quaternion

import (
	"strconv"
	"strings"
)

// Quaternion is an immutable Hurwitz quaternion w + xi + yj + zk whose
// components are either all integers or all halves of odd integers.
// Components are stored doubled so that equality is exact.
type Quaternion struct {
	w, x, y, z int
}

// Well-known elements.
var (
	Zero = Quaternion{}
	One  = Quaternion{w: 2}
	I    = Quaternion{x: 2}
	J    = Quaternion{y: 2}
	K    = Quaternion{z: 2}
	// Half is q = 1/2(1+i+j+k).
	Half = Quaternion{w: 1, x: 1, y: 1, z: 1}
)

// New creates a quaternion with integer components.
func New(w, x, y, z int) Quaternion {
	return Quaternion{w: 2 * w, x: 2 * x, y: 2 * y, z: 2 * z}
}

// NewHalf creates 1/2(w + xi + yj + zk). All arguments must be odd.
func NewHalf(w, x, y, z int) Quaternion {
	for _, c := range [...]int{w, x, y, z} {
		if c%2 == 0 {
			panic("quaternion: NewHalf requires odd numerators, got " + strconv.Itoa(c))
		}
	}
	return Quaternion{w: w, x: x, y: y, z: z}
}

// Add returns the componentwise sum a + b.
func (a Quaternion) Add(b Quaternion) Quaternion {
	return Quaternion{w: a.w + b.w, x: a.x + b.x, y: a.y + b.y, z: a.z + b.z}
}

// Sub returns a - b.
func (a Quaternion) Sub(b Quaternion) Quaternion {
	return a.Add(b.Neg())
}

// Mul returns the Hamilton product a·b. Multiplication is not commutative.
func (a Quaternion) Mul(b Quaternion) Quaternion {
	// Both operands are doubled, so the raw product is scaled by 4.
	// The Hurwitz order is closed under multiplication, hence the halving is exact.
	return Quaternion{
		w: (a.w*b.w - a.x*b.x - a.y*b.y - a.z*b.z) / 2,
		x: (a.w*b.x + a.x*b.w + a.y*b.z - a.z*b.y) / 2,
		y: (a.w*b.y - a.x*b.z + a.y*b.w + a.z*b.x) / 2,
		z: (a.w*b.z + a.x*b.y - a.y*b.x + a.z*b.w) / 2,
	}
}

// Scale multiplies every component by an integer.
func (a Quaternion) Scale(n int) Quaternion {
	return Quaternion{w: n * a.w, x: n * a.x, y: n * a.y, z: n * a.z}
}

// Conj negates the imaginary part.
func (a Quaternion) Conj() Quaternion {
	return Quaternion{w: a.w, x: -a.x, y: -a.y, z: -a.z}
}

// Neg returns -a.
func (a Quaternion) Neg() Quaternion {
	return Quaternion{w: -a.w, x: -a.x, y: -a.y, z: -a.z}
}

// Equal reports exact componentwise equality.
func (a Quaternion) Equal(b Quaternion) bool {
	return a == b
}

// IsZero reports whether a is the zero quaternion.
func (a Quaternion) IsZero() bool {
	return a == Zero
}

// IsReal reports whether the imaginary part vanishes.
func (a Quaternion) IsReal() bool {
	return a.x == 0 && a.y == 0 && a.z == 0
}

// Norm returns the squared norm a·conj(a) as a real number.
func (a Quaternion) Norm() float64 {
	return float64(a.w*a.w+a.x*a.x+a.y*a.y+a.z*a.z) / 4
}

// Components returns w, x, y, z.
func (a Quaternion) Components() (w, x, y, z float64) {
	return float64(a.w) / 2, float64(a.x) / 2, float64(a.y) / 2, float64(a.z) / 2
}

// String renders the quaternion as "w+xi+yj+zk", omitting zero terms.
func (a Quaternion) String() string {
	if a.IsZero() {
		return "0"
	}

	var sb strings.Builder
	terms := [...]struct {
		v    int
		unit string
	}{{a.w, ""}, {a.x, "i"}, {a.y, "j"}, {a.z, "k"}}

	for _, t := range terms {
		if t.v == 0 {
			continue
		}
		if t.v < 0 {
			sb.WriteByte('-')
		} else if sb.Len() > 0 {
			sb.WriteByte('+')
		}
		abs := t.v
		if abs < 0 {
			abs = -abs
		}
		if abs != 2 || t.unit == "" {
			sb.WriteString(formatHalf(abs))
		}
		sb.WriteString(t.unit)
	}
	return sb.String()
}

// formatHalf renders a doubled non-negative value.
func formatHalf(doubled int) string {
	if doubled%2 == 0 {
		return strconv.Itoa(doubled / 2)
	}
	return strconv.FormatFloat(float64(doubled)/2, 'f', 1, 64)
}
