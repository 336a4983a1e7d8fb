package qseq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qseq/internal/db"
	dbRedis "github.com/kailas-cloud/qseq/internal/db/redis"
	"github.com/kailas-cloud/qseq/internal/domain/quaternion"
	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/result"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
	"github.com/kailas-cloud/qseq/internal/metrics"
	"github.com/kailas-cloud/qseq/internal/repository/resultcache"
	searchuc "github.com/kailas-cloud/qseq/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the qseq entry point.
type Client struct {
	store   db.Store
	svc     *searchuc.Service
	workers int
}

// New creates a Client. Without WithRedis or WithValkey results are not cached.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if cfg.metricsReg != nil {
		if err := registerMetrics(cfg.metricsReg); err != nil {
			return nil, err
		}
	}

	var store db.Store
	if cfg.driver != "" {
		s, err := createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("qseq: database not ready: %w", err)
		}
		store = s
	}

	return wireClient(store, cfg), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis", "valkey":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("qseq: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("qseq: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	var cache searchuc.ResultCache
	if store != nil {
		cache = resultcache.New(store, cfg.ttl, metrics.ResultCacheTotal, cfg.logger)
	}
	svc := searchuc.New(searchuc.NewEngine(), cache, cfg.logger).WithMaxSize(cfg.maxSize)
	return &Client{store: store, svc: svc, workers: cfg.workers}
}

// registerMetrics registers the search collectors, tolerating ones already present.
func registerMetrics(reg prometheus.Registerer) error {
	for _, c := range metrics.SearchCollectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("qseq: register metric: %w", err)
		}
	}
	return nil
}

// Close releases the cache connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cache connectivity. It is a no-op without a cache.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search starts building a search for sequences of the given length.
func (c *Client) Search(size int) *SearchBuilder {
	return &SearchBuilder{client: c, size: size, workers: c.workers}
}

// Sweep searches every supported length in [from, to] and returns the results in order.
func (c *Client) Sweep(ctx context.Context, from, to int, p Predicate, s Symmetry) ([]Result, error) {
	var out []Result
	err := c.svc.Sweep(ctx, searchuc.SweepParams{
		From:      from,
		To:        to,
		Predicate: predicate.Predicate(p),
		Symmetry:  symmetry.Symmetry(s),
		Workers:   c.workers,
	}, func(r result.Result) {
		out = append(out, fromResult(&r))
	})
	if err != nil {
		return out, fmt.Errorf("sweep: %w", err)
	}
	return out, nil
}

// Check computes the autocorrelation profile of a label string.
func (c *Client) Check(labels string) (Analysis, error) {
	a, err := c.svc.Check(labels)
	if err != nil {
		return Analysis{}, fmt.Errorf("check: %w", err)
	}
	return fromAnalysis(a), nil
}

// Shrink returns the longest centered OPQS strictly inside a label string.
func (c *Client) Shrink(labels string) (string, bool, error) {
	sub, ok, err := c.svc.Shrink(labels)
	if err != nil {
		return "", false, fmt.Errorf("shrink: %w", err)
	}
	return sub, ok, nil
}

// Cached lists the searches held in the result cache.
func (c *Client) Cached(ctx context.Context) ([]CachedRun, error) {
	list, err := c.svc.Cached(ctx)
	if err != nil {
		return nil, fmt.Errorf("cached: %w", err)
	}
	out := make([]CachedRun, len(list))
	for i, s := range list {
		out[i] = fromSummary(s)
	}
	return out, nil
}

// Forget evicts a search from the result cache.
func (c *Client) Forget(ctx context.Context, size int, p Predicate, s Symmetry) error {
	req, err := request.New(size, predicate.Predicate(p), symmetry.Symmetry(s), 0, 0, 1)
	if err != nil {
		return fmt.Errorf("forget: %w", err)
	}
	if err := c.svc.Forget(ctx, req); err != nil {
		return fmt.Errorf("forget: %w", err)
	}
	return nil
}

// Alphabet returns the 16 symbols in enumeration order.
func Alphabet() []Symbol {
	alphabet := quaternion.Alphabet()
	out := make([]Symbol, len(alphabet))
	for i, q := range alphabet {
		out[i] = Symbol{Label: quaternion.Labels[i], Value: fromQuaternion(q)}
	}
	return out
}
