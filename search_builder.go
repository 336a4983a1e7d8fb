package qseq

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
)

// SearchBuilder is a fluent builder for a single search.
type SearchBuilder struct {
	client *Client
	size   int

	predicate Predicate
	symmetry  Symmetry
	workers   int
	limit     int
	maxLeaves uint64
}

// Predicate sets the orthogonality condition. Defaults to OddPeriodic.
func (b *SearchBuilder) Predicate(p Predicate) *SearchBuilder {
	b.predicate = p
	return b
}

// Symmetry sets the structural restriction. Defaults to Palindromic.
func (b *SearchBuilder) Symmetry(s Symmetry) *SearchBuilder {
	b.symmetry = s
	return b
}

// Workers overrides the client's worker count.
func (b *SearchBuilder) Workers(n int) *SearchBuilder {
	b.workers = n
	return b
}

// Limit stops the search after n solutions. Which n are returned is not
// fixed when more than one worker runs.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// MaxLeaves stops the search after n complete assignments.
func (b *SearchBuilder) MaxLeaves(n uint64) *SearchBuilder {
	b.maxLeaves = n
	return b
}

// Do runs the search and returns every solution found.
func (b *SearchBuilder) Do(ctx context.Context) (Result, error) {
	return b.Stream(ctx, nil)
}

// Stream runs the search, calling fn with each solution as it is found.
// Calls to fn are serialized. Cancelling ctx ends the search early with a
// truncated result.
func (b *SearchBuilder) Stream(ctx context.Context, fn func(solution string)) (Result, error) {
	req, err := request.New(b.size,
		predicate.Predicate(b.predicate), symmetry.Symmetry(b.symmetry),
		b.limit, b.maxLeaves, b.workers,
	)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}

	res, err := b.client.svc.Search(ctx, req, fn)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}
	return fromResult(&res), nil
}
