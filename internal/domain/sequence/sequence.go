// Package sequence holds quaternion sequences over the alphabet and their
// autocorrelation predicates.
package sequence

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/qseq/internal/domain"
	"github.com/kailas-cloud/qseq/internal/domain/quaternion"
)

// Sequence is a mutable, fixed-length sequence of alphabet elements.
type Sequence struct {
	values []quaternion.Quaternion
}

// New creates a sequence of the given length filled with the identity.
func New(size int) *Sequence {
	if size < 0 {
		panic(fmt.Sprintf("sequence: negative size %d", size))
	}
	values := make([]quaternion.Quaternion, size)
	for i := range values {
		values[i] = quaternion.One
	}
	return &Sequence{values: values}
}

// FromValues creates a sequence holding a copy of values.
// Every value must belong to the alphabet.
func FromValues(values []quaternion.Quaternion) *Sequence {
	for i, v := range values {
		if !quaternion.Contains(v) {
			panic(fmt.Sprintf("sequence: value %s at %d is not an alphabet element", v, i))
		}
	}
	return &Sequence{values: append([]quaternion.Quaternion(nil), values...)}
}

// Parse builds a sequence from its label string, e.g. "+ii+". Symbols from
// quaternion.LegacyLabels are accepted too, so "+oo+" parses as "+jj+".
func Parse(s string) (*Sequence, error) {
	values := make([]quaternion.Quaternion, 0, len(s))
	for _, r := range s {
		q, ok := quaternion.FromRune(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", domain.ErrInvalidSymbol, r, len(values))
		}
		values = append(values, q)
	}
	return &Sequence{values: values}, nil
}

// Len returns the sequence length.
func (s *Sequence) Len() int { return len(s.values) }

// Value returns the element at index.
func (s *Sequence) Value(index int) quaternion.Quaternion { return s.values[index] }

// Values returns a copy of the elements.
func (s *Sequence) Values() []quaternion.Quaternion {
	return append([]quaternion.Quaternion(nil), s.values...)
}

// SetValue replaces the element at index. It panics if index is out of range.
func (s *Sequence) SetValue(value quaternion.Quaternion, index int) {
	if index < 0 || index >= len(s.values) {
		panic(fmt.Sprintf("sequence: index %d out of range [0,%d)", index, len(s.values)))
	}
	s.values[index] = value
}

// Clone returns an independent copy.
func (s *Sequence) Clone() *Sequence {
	return &Sequence{values: s.Values()}
}

// PeriodicAutocorrelation returns sum_i v[i]·conj(v[(i+t) mod n]).
func (s *Sequence) PeriodicAutocorrelation(t int) quaternion.Quaternion {
	n := len(s.values)
	sum := quaternion.Zero
	for i := 0; i < n; i++ {
		sum = sum.Add(s.values[i].Mul(s.values[(i+t)%n].Conj()))
	}
	return sum
}

// OddPeriodicAutocorrelation returns sum_i (-1)^floor((i+t)/n) v[i]·conj(v[(i+t) mod n]).
func (s *Sequence) OddPeriodicAutocorrelation(t int) quaternion.Quaternion {
	n := len(s.values)
	sum := quaternion.Zero
	for i := 0; i < n; i++ {
		term := s.values[i].Mul(s.values[(i+t)%n].Conj())
		if ((i+t)/n)%2 == 1 {
			term = term.Neg()
		}
		sum = sum.Add(term)
	}
	return sum
}

// IsPQS reports whether the periodic autocorrelation vanishes for every t in [1,n).
func (s *Sequence) IsPQS() bool {
	for t := 1; t < len(s.values); t++ {
		if !s.PeriodicAutocorrelation(t).IsZero() {
			return false
		}
	}
	return true
}

// IsOPQS reports whether the odd-periodic autocorrelation vanishes for every t in [1,n).
func (s *Sequence) IsOPQS() bool {
	for t := 1; t < len(s.values); t++ {
		if !s.OddPeriodicAutocorrelation(t).IsZero() {
			return false
		}
	}
	return true
}

// IsSymmetric reports whether v[t] == v[n-t] for every t in [1,(n+1)/2).
// Position 0 is excluded, so the tail is mirrored around it: +iji is
// symmetric, +ii+ is not.
func (s *Sequence) IsSymmetric() bool {
	n := len(s.values)
	for t := 1; t < (n+1)/2; t++ {
		if s.values[t] != s.values[n-t] {
			return false
		}
	}
	return true
}

// IsPalindrome reports whether v[t] == v[n-1-t] for every t.
func (s *Sequence) IsPalindrome() bool {
	n := len(s.values)
	for t := range n / 2 {
		if s.values[t] != s.values[n-1-t] {
			return false
		}
	}
	return true
}

// SubOPQS returns the longest centered subsequence, obtained by dropping
// start elements from each end for start in [1, (n-1)/2 - 1], that is itself
// an OPQS.
func (s *Sequence) SubOPQS() (*Sequence, bool) {
	n := len(s.values)
	for start := 1; start < (n-1)/2; start++ {
		sub := &Sequence{values: s.values[start : n-start]}
		if sub.IsOPQS() {
			return sub.Clone(), true
		}
	}
	return nil, false
}

// String renders the sequence as its concatenated labels.
func (s *Sequence) String() string {
	var sb strings.Builder
	sb.Grow(len(s.values))
	for _, v := range s.values {
		sb.WriteByte(quaternion.Label(v))
	}
	return sb.String()
}
