package domain

import (
	"errors"
	"fmt"
)

var (
	ErrLoanNotFound     = errors.New("loan not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// kinds is ordered so that a caller mistake wins over a lookup miss, and a
// lookup miss over a conflict or an infrastructure failure.
var kinds = []error{ErrInvalidInput, ErrLoanNotFound, ErrDocumentNotFound, ErrConflict, ErrTemporary}

// KindOf returns the first kind err carries, or nil when err is untyped.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
