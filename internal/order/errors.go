package order

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers malformed input: empty item lists, missing ids,
	// absent payment methods.
	ErrValidation = errors.New("invalid order input")

	// ErrNotFound is returned when no order matches the caller's read scope.
	ErrNotFound = errors.New("order not found")

	// ErrNotFoundOrProcessed is deliberately ambiguous: an order outside the
	// caller's action scope and an order past its required precondition look
	// identical, so existence never leaks across scope boundaries.
	ErrNotFoundOrProcessed = errors.New("order not found or already processed")

	// ErrForbidden means the resource is reachable but the caller's role may
	// not perform the operation at all.
	ErrForbidden = errors.New("operation not permitted for role")

	ErrAlreadyCancelled = errors.New("order is already cancelled")
	ErrTerminalState    = errors.New("order is in a terminal state")

	ErrItemUnavailable    = errors.New("menu item not found or unavailable")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrRestaurantNotFound = errors.New("restaurant not found")
)

// InfraError marks a storage-level failure that survived the repository's
// retry attempts. Retryable reports whether another attempt could have
// succeeded (timeouts, lost connections) as opposed to a permanent fault.
type InfraError struct {
	Op        string
	Retryable bool
	Cause     error
}

func (e *InfraError) Error() string {
	return fmt.Sprintf("order storage failure in %s: %v", e.Op, e.Cause)
}

func (e *InfraError) Unwrap() error {
	return e.Cause
}

func newInfraError(op string, retryable bool, cause error) *InfraError {
	return &InfraError{Op: op, Retryable: retryable, Cause: cause}
}

func IsInfraError(err error) bool {
	var ie *InfraError
	return errors.As(err, &ie)
}
