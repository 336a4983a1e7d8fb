package qseq

import "github.com/kailas-cloud/qseq/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidSymbol       = domain.ErrInvalidSymbol
	ErrInvalidSize         = domain.ErrInvalidSize
	ErrSizeTooLarge        = domain.ErrSizeTooLarge
	ErrUnknownSymmetry     = domain.ErrUnknownSymmetry
	ErrUnsupportedSymmetry = domain.ErrUnsupportedSymmetry
	ErrUnknownPredicate    = domain.ErrUnknownPredicate
	ErrInvalidBudget       = domain.ErrInvalidBudget
	ErrEmptySequence       = domain.ErrEmptySequence
)
