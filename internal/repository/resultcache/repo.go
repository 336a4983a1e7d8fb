package resultcache

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qseq/internal/db"
	"github.com/kailas-cloud/qseq/internal/domain"
	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/result"
)

var (
	resultKeyPrefix = domain.KeyPrefix + "result:"
	runsKey         = domain.KeyPrefix + "runs"
)

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo caches complete search results and indexes them in the runs hash.
type Repo struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a result cache. ttl <= 0 keeps entries until deleted.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Repo {
	return &Repo{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger, now: time.Now}
}

// Get returns the cached result for req's search space marked as cached,
// or domain.ErrNotFound. Undecodable entries count as misses.
func (r *Repo) Get(ctx context.Context, req request.Request) (result.Result, error) {
	key := resultKey(req)

	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			r.incCache("miss")
			return result.Result{}, domain.ErrNotFound
		}
		return result.Result{}, fmt.Errorf("get cached result: %w", err)
	}

	res, err := decodeResult(data, req)
	if err != nil {
		r.logger.Warn("Discarding unreadable cached result", zap.String("key", key), zap.Error(err))
		r.incCache("miss")
		return result.Result{}, domain.ErrNotFound
	}

	r.incCache("hit")
	return res.WithCached(), nil
}

// Put stores a complete result and records it in the runs index.
func (r *Repo) Put(ctx context.Context, req request.Request, res result.Result) error {
	if res.Truncated() {
		return fmt.Errorf("refusing to cache truncated result for %s", req.Key())
	}

	data, err := encodeResult(res)
	if err != nil {
		return err
	}
	if err := r.store.SetWithTTL(ctx, resultKey(req), data, r.ttl); err != nil {
		return fmt.Errorf("store result: %w", err)
	}

	summary, err := encodeSummary(res.Summarize(r.now()))
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, runsKey, map[string]string{req.Key(): summary}); err != nil {
		return fmt.Errorf("index result: %w", err)
	}
	return nil
}

// List returns the summaries of every indexed run ordered by predicate,
// symmetry and size. Malformed index fields are skipped. Fields whose result
// has expired are skipped and removed from the index.
func (r *Repo) List(ctx context.Context) ([]result.Summary, error) {
	m, err := r.store.HGetAll(ctx, runsKey)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	keys, err := r.store.Scan(ctx, resultKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan results: %w", err)
	}
	live := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		live[k] = struct{}{}
	}

	out := make([]result.Summary, 0, len(m))
	var stale []string
	for field, value := range m {
		if _, ok := live[resultKeyPrefix+field]; !ok {
			stale = append(stale, field)
			continue
		}
		s, err := decodeSummary(field, value)
		if err != nil {
			r.logger.Warn("Skipping malformed run index entry", zap.String("field", field), zap.Error(err))
			continue
		}
		out = append(out, s)
	}

	if len(stale) > 0 {
		if err := r.store.HDel(ctx, runsKey, stale...); err != nil {
			r.logger.Warn("Failed to prune expired runs", zap.Strings("fields", stale), zap.Error(err))
		}
	}

	slices.SortFunc(out, func(a, b result.Summary) int {
		return cmp.Or(
			cmp.Compare(a.Predicate, b.Predicate),
			cmp.Compare(a.Symmetry, b.Symmetry),
			cmp.Compare(a.Size, b.Size),
		)
	})
	return out, nil
}

// Delete evicts req's search space from the cache and the runs index.
func (r *Repo) Delete(ctx context.Context, req request.Request) error {
	if err := r.store.Del(ctx, resultKey(req)); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if err := r.store.HDel(ctx, runsKey, req.Key()); err != nil {
		return fmt.Errorf("unindex result: %w", err)
	}
	return nil
}

func (r *Repo) incCache(result string) {
	if r.cacheTotal != nil {
		r.cacheTotal.WithLabelValues(result).Inc()
	}
}

func resultKey(req request.Request) string {
	return resultKeyPrefix + req.Key()
}
