// Package predicate names the orthogonality conditions a solution must satisfy.
package predicate

import "github.com/kailas-cloud/qseq/internal/domain/sequence"

// Predicate is an orthogonality condition on a complete sequence.
type Predicate string

// Predicate constants.
const (
	// OddPeriodic requires vanishing odd-periodic autocorrelation (OPQS).
	OddPeriodic Predicate = "odd_periodic"
	// Periodic requires vanishing periodic autocorrelation (PQS).
	Periodic Predicate = "periodic"
)

// IsValid checks if the predicate is one of the supported values.
func (p Predicate) IsValid() bool {
	return p == OddPeriodic || p == Periodic
}

// Holds evaluates the predicate on s.
func (p Predicate) Holds(s *sequence.Sequence) bool {
	if p == Periodic {
		return s.IsPQS()
	}
	return s.IsOPQS()
}
