package result

import (
	"time"

	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
)

// Result is the outcome of a search run.
type Result struct {
	size      int
	predicate predicate.Predicate
	symmetry  symmetry.Symmetry
	solutions []string
	leaves    uint64
	truncated bool
	elapsed   time.Duration
	cached    bool
}

// New creates a search result. solutions must already be in enumeration order.
func New(
	size int, p predicate.Predicate, s symmetry.Symmetry,
	solutions []string, leaves uint64, truncated bool, elapsed time.Duration,
) Result {
	return Result{
		size: size, predicate: p, symmetry: s,
		solutions: solutions, leaves: leaves, truncated: truncated, elapsed: elapsed,
	}
}

// Size returns the searched sequence length.
func (r *Result) Size() int { return r.size }

// Predicate returns the orthogonality condition searched for.
func (r *Result) Predicate() predicate.Predicate { return r.predicate }

// Symmetry returns the structural restriction used.
func (r *Result) Symmetry() symmetry.Symmetry { return r.symmetry }

// Count returns the number of solutions found.
func (r *Result) Count() int { return len(r.solutions) }

// Solutions returns the rendered solutions in enumeration order.
func (r *Result) Solutions() []string { return r.solutions }

// Leaves returns the number of complete assignments evaluated.
func (r *Result) Leaves() uint64 { return r.leaves }

// Truncated reports whether the run stopped before exhausting the search space.
func (r *Result) Truncated() bool { return r.truncated }

// Elapsed returns the wall-clock duration of the run.
func (r *Result) Elapsed() time.Duration { return r.elapsed }

// Cached reports whether the result was served from the result cache.
func (r *Result) Cached() bool { return r.cached }

// WithCached returns a copy marked as served from cache.
func (r Result) WithCached() Result {
	r.cached = true
	return r
}

// Summary describes a cached run without its solutions.
type Summary struct {
	Size      int
	Predicate predicate.Predicate
	Symmetry  symmetry.Symmetry
	Count     int
	Leaves    uint64
	Elapsed   time.Duration
	StoredAt  time.Time
}

// Summarize returns the summary of r stored at the given time.
func (r *Result) Summarize(storedAt time.Time) Summary {
	return Summary{
		Size:      r.size,
		Predicate: r.predicate,
		Symmetry:  r.symmetry,
		Count:     len(r.solutions),
		Leaves:    r.leaves,
		Elapsed:   r.elapsed,
		StoredAt:  storedAt,
	}
}
