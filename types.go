package qseq

import (
	"time"

	"github.com/kailas-cloud/qseq/internal/domain/quaternion"
	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/result"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
	searchuc "github.com/kailas-cloud/qseq/internal/usecase/search"
)

// Predicate is the orthogonality condition a solution satisfies.
type Predicate string

// Predicates.
const (
	OddPeriodic Predicate = Predicate(predicate.OddPeriodic)
	Periodic    Predicate = Predicate(predicate.Periodic)
)

// Symmetry restricts the second half of a sequence to a function of the first.
type Symmetry string

// Symmetries. II, III and IV need an even length.
const (
	NoSymmetry  Symmetry = Symmetry(symmetry.None)
	Palindromic Symmetry = Symmetry(symmetry.Palindromic)
	II          Symmetry = Symmetry(symmetry.II)
	III         Symmetry = Symmetry(symmetry.III)
	IV          Symmetry = Symmetry(symmetry.IV)
)

// Quaternion is a [w, x, y, z] value.
type Quaternion [4]float64

// Result is the outcome of a search.
type Result struct {
	Size      int
	Predicate Predicate
	Symmetry  Symmetry
	Solutions []string
	Count     int
	Leaves    uint64
	Truncated bool // stopped by a budget or cancellation; counts are partial
	Cached    bool
	Elapsed   time.Duration
}

// CachedRun describes a search held in the result cache.
type CachedRun struct {
	Size      int
	Predicate Predicate
	Symmetry  Symmetry
	Count     int
	Leaves    uint64
	Elapsed   time.Duration
	StoredAt  time.Time
}

// Analysis is the autocorrelation profile of a sequence, indexed by shift.
type Analysis struct {
	Sequence    string
	PQS         bool
	OPQS        bool
	Symmetric   bool // v[t] == v[n-t] for t >= 1
	Palindrome  bool // v[t] == v[n-1-t]
	Periodic    []Quaternion
	OddPeriodic []Quaternion
}

// Symbol is one element of the alphabet.
type Symbol struct {
	Label byte
	Value Quaternion
}

func fromResult(r *result.Result) Result {
	return Result{
		Size:      r.Size(),
		Predicate: Predicate(r.Predicate()),
		Symmetry:  Symmetry(r.Symmetry()),
		Solutions: r.Solutions(),
		Count:     r.Count(),
		Leaves:    r.Leaves(),
		Truncated: r.Truncated(),
		Cached:    r.Cached(),
		Elapsed:   r.Elapsed(),
	}
}

func fromSummary(s result.Summary) CachedRun {
	return CachedRun{
		Size:      s.Size,
		Predicate: Predicate(s.Predicate),
		Symmetry:  Symmetry(s.Symmetry),
		Count:     s.Count,
		Leaves:    s.Leaves,
		Elapsed:   s.Elapsed,
		StoredAt:  s.StoredAt,
	}
}

func fromAnalysis(a searchuc.Analysis) Analysis {
	return Analysis{
		Sequence:    a.Sequence,
		PQS:         a.PQS,
		OPQS:        a.OPQS,
		Symmetric:   a.Symmetric,
		Palindrome:  a.Palindrome,
		Periodic:    fromQuaternions(a.Periodic),
		OddPeriodic: fromQuaternions(a.OddPeriodic),
	}
}

func fromQuaternions(qs []quaternion.Quaternion) []Quaternion {
	out := make([]Quaternion, len(qs))
	for i, q := range qs {
		out[i] = fromQuaternion(q)
	}
	return out
}

func fromQuaternion(q quaternion.Quaternion) Quaternion {
	w, x, y, z := q.Components()
	return Quaternion{w, x, y, z}
}
