package request

import (
	"fmt"
	"runtime"

	"github.com/kailas-cloud/qseq/internal/domain"
	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
)

// MaxWorkers caps the worker pool of a single search.
const MaxWorkers = 256

// Request is a validated search query.
type Request struct {
	size         int
	predicate    predicate.Predicate
	symmetry     symmetry.Symmetry
	maxSolutions int
	maxLeaves    uint64
	workers      int
}

// New validates and normalizes search parameters.
// Defaults: predicate=odd_periodic, symmetry=palindromic, workers=GOMAXPROCS.
// maxSolutions and maxLeaves of zero mean unlimited.
func New(
	size int,
	p predicate.Predicate,
	s symmetry.Symmetry,
	maxSolutions int,
	maxLeaves uint64,
	workers int,
) (Request, error) {
	if size < 1 {
		return Request{}, fmt.Errorf("%w: %d (must be >= 1)", domain.ErrInvalidSize, size)
	}
	if p == "" {
		p = predicate.OddPeriodic
	}
	if !p.IsValid() {
		return Request{}, fmt.Errorf("%w: %q", domain.ErrUnknownPredicate, p)
	}
	if s == "" {
		s = symmetry.Palindromic
	}
	if !s.IsValid() {
		return Request{}, fmt.Errorf("%w: %q", domain.ErrUnknownSymmetry, s)
	}
	if !s.Supports(size) {
		return Request{}, fmt.Errorf("%w: %q requires an even size, got %d", domain.ErrUnsupportedSymmetry, s, size)
	}
	if maxSolutions < 0 {
		return Request{}, fmt.Errorf("%w: max_solutions must be >= 0", domain.ErrInvalidBudget)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	return Request{
		size:         size,
		predicate:    p,
		symmetry:     s,
		maxSolutions: maxSolutions,
		maxLeaves:    maxLeaves,
		workers:      workers,
	}, nil
}

// Size returns the target sequence length.
func (r *Request) Size() int { return r.size }

// Predicate returns the orthogonality condition.
func (r *Request) Predicate() predicate.Predicate { return r.predicate }

// Symmetry returns the structural restriction.
func (r *Request) Symmetry() symmetry.Symmetry { return r.symmetry }

// MaxSolutions returns the solution budget (0 = unlimited).
func (r *Request) MaxSolutions() int { return r.maxSolutions }

// MaxLeaves returns the leaf budget (0 = unlimited).
func (r *Request) MaxLeaves() uint64 { return r.maxLeaves }

// Workers returns the worker pool size.
func (r *Request) Workers() int { return r.workers }

// Exhaustive reports whether the request carries no early-stop budget.
func (r *Request) Exhaustive() bool { return r.maxSolutions == 0 && r.maxLeaves == 0 }

// Key identifies the search space independently of budgets and workers.
func (r *Request) Key() string {
	return fmt.Sprintf("%s:%s:%d", r.predicate, r.symmetry, r.size)
}
