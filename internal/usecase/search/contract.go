package search

import (
	"context"

	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/result"
)

// ResultCache stores complete search results by search space.
type ResultCache interface {
	// Get returns domain.ErrNotFound when the search space was never completed.
	Get(ctx context.Context, req request.Request) (result.Result, error)
	Put(ctx context.Context, req request.Request, res result.Result) error
	List(ctx context.Context) ([]result.Summary, error)
	Delete(ctx context.Context, req request.Request) error
}

// Runner executes a single search.
type Runner interface {
	Run(ctx context.Context, req request.Request, emit EmitFunc) result.Result
}
