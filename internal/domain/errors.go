package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSymbol signals a character outside the alphabet labels.
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrInvalidSize signals a non-positive sequence length.
	ErrInvalidSize = errors.New("invalid size")
	// ErrSizeTooLarge signals a search length above the configured limit.
	ErrSizeTooLarge = errors.New("size too large")
	// ErrUnknownSymmetry signals an unrecognised symmetry name.
	ErrUnknownSymmetry = errors.New("unknown symmetry")
	// ErrUnsupportedSymmetry signals a symmetry that cannot apply to the requested size.
	ErrUnsupportedSymmetry = errors.New("symmetry not supported for size")
	// ErrUnknownPredicate signals an unrecognised orthogonality predicate.
	ErrUnknownPredicate = errors.New("unknown predicate")
	// ErrInvalidBudget signals a negative solution or leaf budget.
	ErrInvalidBudget = errors.New("invalid budget")
	// ErrEmptySequence signals an empty sequence where one is required.
	ErrEmptySequence = errors.New("empty sequence")
)

// SizeLimitError wraps ErrSizeTooLarge with the configured maximum.
type SizeLimitError struct {
	Size int
	Max  int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("%s: %d exceeds maximum %d", ErrSizeTooLarge.Error(), e.Size, e.Max)
}

func (e *SizeLimitError) Unwrap() error { return ErrSizeTooLarge }

// NewSizeLimit creates a size limit error.
func NewSizeLimit(size, maxSize int) error {
	return &SizeLimitError{Size: size, Max: maxSize}
}
