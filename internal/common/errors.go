package common

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Services wrap these with fmt.Errorf("...: %w", err)
// so handlers can classify failures with errors.Is while keeping context.
var (
	// ErrValidation covers malformed input: missing customer, empty
	// line-item list, non-positive quantity, unknown tax tier.
	ErrValidation = errors.New("validation failed")

	// ErrProductNotFound means a requested product code has no catalog entry.
	ErrProductNotFound = errors.New("product not found")

	// ErrCustomerNotFound means the customer reference resolved to nothing.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrOrderNotFound means the order id resolved to nothing.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInsufficientStock means a reconciliation would drive a product's
	// stock negative. The whole operation is rejected; no partial commit.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// DependencyError marks an infrastructure failure (database, cache, object
// storage) as distinct from domain validation failures.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency unavailable during %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// WrapDependency wraps an infrastructure error; nil passes through.
func WrapDependency(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DependencyError{Op: op, Err: err}
}

// IsDependencyError reports whether err is (or wraps) a DependencyError.
func IsDependencyError(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}
