package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qseq/internal/domain"
	"github.com/kailas-cloud/qseq/internal/domain/quaternion"
	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/result"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
	"github.com/kailas-cloud/qseq/internal/domain/sequence"
	"github.com/kailas-cloud/qseq/internal/metrics"
)

// Run status labels.
const (
	statusComplete  = "complete"
	statusTruncated = "truncated"
	statusCancelled = "cancelled"
	statusCached    = "cached"
)

const (
	selfTestSize  = 4
	selfTestCount = 6
)

// Service validates search requests, serves cached results and instruments runs.
type Service struct {
	runner  Runner
	cache   ResultCache
	maxSize int
	logger  *zap.Logger

	mu      sync.Mutex
	largest map[string]int
}

// New creates a search service. cache can be nil.
func New(runner Runner, cache ResultCache, logger *zap.Logger) *Service {
	return &Service{runner: runner, cache: cache, logger: logger}
}

// WithMaxSize limits the sequence length accepted by Search (0 = unlimited).
func (s *Service) WithMaxSize(maxSize int) *Service {
	if maxSize > 0 {
		s.maxSize = maxSize
	}
	return s
}

// MaxSize returns the configured length limit (0 = unlimited).
func (s *Service) MaxSize() int { return s.maxSize }

// Search runs a search or serves it from cache. Any run that finishes
// untruncated is complete and gets cached, whatever its budgets. Lookups
// skip requests capped by MaxSolutions, whose answer is a subset.
// A cancelled ctx yields a truncated result, not an error.
func (s *Service) Search(ctx context.Context, req request.Request, emit EmitFunc) (result.Result, error) {
	if s.maxSize > 0 && req.Size() > s.maxSize {
		return result.Result{}, domain.NewSizeLimit(req.Size(), s.maxSize)
	}

	p, sym := string(req.Predicate()), string(req.Symmetry())

	if res, ok := s.fromCache(ctx, req); ok {
		metrics.SearchRunsTotal.WithLabelValues(p, sym, statusCached).Inc()
		if emit != nil {
			for _, sol := range res.Solutions() {
				emit(sol)
			}
		}
		return res, nil
	}

	s.logger.Debug("Search started",
		zap.String("key", req.Key()),
		zap.Int("workers", req.Workers()),
		zap.Int("max_solutions", req.MaxSolutions()),
		zap.Uint64("max_leaves", req.MaxLeaves()),
	)

	res := s.runner.Run(ctx, req, emit)

	status := statusComplete
	switch {
	case res.Truncated() && ctx.Err() != nil:
		status = statusCancelled
	case res.Truncated():
		status = statusTruncated
	}

	metrics.SearchRunsTotal.WithLabelValues(p, sym, status).Inc()
	metrics.SearchDuration.WithLabelValues(p, sym).Observe(res.Elapsed().Seconds())
	metrics.SearchLeavesTotal.WithLabelValues(p, sym).Add(float64(res.Leaves()))
	metrics.SearchSolutionsTotal.WithLabelValues(p, sym).Add(float64(res.Count()))

	s.logger.Info("Search finished",
		zap.String("key", req.Key()),
		zap.String("status", status),
		zap.Int("count", res.Count()),
		zap.Uint64("leaves", res.Leaves()),
		zap.Duration("elapsed", res.Elapsed()),
	)

	if status == statusComplete {
		s.recordLargest(req)
		if s.cache != nil {
			if err := s.cache.Put(ctx, req, res); err != nil {
				s.logger.Warn("Failed to cache search result", zap.String("key", req.Key()), zap.Error(err))
			}
		}
	}

	return res, nil
}

func (s *Service) fromCache(ctx context.Context, req request.Request) (result.Result, bool) {
	if s.cache == nil || req.MaxSolutions() > 0 {
		return result.Result{}, false
	}
	res, err := s.cache.Get(ctx, req)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("Failed to read cached search result", zap.String("key", req.Key()), zap.Error(err))
		}
		return result.Result{}, false
	}
	return res, true
}

// recordLargest raises the largest-complete-size gauge; it never lowers it.
func (s *Service) recordLargest(req request.Request) {
	key := string(req.Predicate()) + ":" + string(req.Symmetry())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.largest == nil {
		s.largest = make(map[string]int)
	}
	if req.Size() <= s.largest[key] {
		return
	}
	s.largest[key] = req.Size()
	metrics.SearchLargestSize.WithLabelValues(string(req.Predicate()), string(req.Symmetry())).Set(float64(req.Size()))
}

// SelfTest runs the length-4 palindromic OPQS search, which has exactly six
// solutions, bypassing the cache.
func (s *Service) SelfTest(ctx context.Context) error {
	req, err := request.New(selfTestSize, predicate.OddPeriodic, symmetry.Palindromic, 0, 0, 1)
	if err != nil {
		return fmt.Errorf("build self-test request: %w", err)
	}
	res := s.runner.Run(ctx, req, nil)
	if res.Truncated() {
		return fmt.Errorf("self-test interrupted: %w", context.Cause(ctx))
	}
	if res.Count() != selfTestCount {
		return fmt.Errorf("self-test found %d solutions, want %d", res.Count(), selfTestCount)
	}
	return nil
}

// Cached lists the search spaces held in the result cache.
func (s *Service) Cached(ctx context.Context) ([]result.Summary, error) {
	if s.cache == nil {
		return nil, nil
	}
	list, err := s.cache.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cached results: %w", err)
	}
	return list, nil
}

// Forget evicts a search space from the result cache.
func (s *Service) Forget(ctx context.Context, req request.Request) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, req); err != nil {
		return fmt.Errorf("forget %s: %w", req.Key(), err)
	}
	s.logger.Info("Cached result evicted", zap.String("key", req.Key()))
	return nil
}

// SweepParams configures a range of searches.
type SweepParams struct {
	From, To  int
	Predicate predicate.Predicate
	Symmetry  symmetry.Symmetry
	Workers   int
}

// Sweep searches every size in [From, To], skipping sizes the symmetry does
// not support, and calls fn after each run. It stops at the first error or
// when ctx is done.
func (s *Service) Sweep(ctx context.Context, p SweepParams, fn func(result.Result)) error {
	if p.From < 1 || p.To < p.From {
		return fmt.Errorf("%w: range [%d, %d]", domain.ErrInvalidSize, p.From, p.To)
	}
	sym := p.Symmetry
	if sym == "" {
		sym = symmetry.Palindromic
	}

	for size := p.From; size <= p.To; size++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sweep interrupted at size %d: %w", size, err)
		}
		if sym.IsValid() && !sym.Supports(size) {
			continue
		}
		req, err := request.New(size, p.Predicate, sym, 0, 0, p.Workers)
		if err != nil {
			return fmt.Errorf("build request for size %d: %w", size, err)
		}
		res, err := s.Search(ctx, req, nil)
		if err != nil {
			return fmt.Errorf("search size %d: %w", size, err)
		}
		fn(res)
	}
	return nil
}

// Analysis describes the autocorrelation profile of a sequence.
type Analysis struct {
	Sequence    string
	PQS         bool
	OPQS        bool
	Symmetric   bool // v[t] == v[n-t] for t >= 1
	Palindrome  bool // v[t] == v[n-1-t]
	Periodic    []quaternion.Quaternion
	OddPeriodic []quaternion.Quaternion
}

// Check parses a label string and computes its autocorrelation profile for every shift.
func (s *Service) Check(labels string) (Analysis, error) {
	seq, err := parseNonEmpty(labels)
	if err != nil {
		return Analysis{}, err
	}

	n := seq.Len()
	a := Analysis{
		Sequence:    seq.String(),
		PQS:         seq.IsPQS(),
		OPQS:        seq.IsOPQS(),
		Symmetric:   seq.IsSymmetric(),
		Palindrome:  seq.IsPalindrome(),
		Periodic:    make([]quaternion.Quaternion, n),
		OddPeriodic: make([]quaternion.Quaternion, n),
	}
	for t := range n {
		a.Periodic[t] = seq.PeriodicAutocorrelation(t)
		a.OddPeriodic[t] = seq.OddPeriodicAutocorrelation(t)
	}
	return a, nil
}

// Shrink returns the longest centered OPQS embedded in the sequence.
func (s *Service) Shrink(labels string) (string, bool, error) {
	seq, err := parseNonEmpty(labels)
	if err != nil {
		return "", false, err
	}
	sub, ok := seq.SubOPQS()
	if !ok {
		return "", false, nil
	}
	return sub.String(), true, nil
}

func parseNonEmpty(labels string) (*sequence.Sequence, error) {
	if labels == "" {
		return nil, domain.ErrEmptySequence
	}
	seq, err := sequence.Parse(labels)
	if err != nil {
		return nil, fmt.Errorf("parse sequence: %w", err)
	}
	return seq, nil
}
