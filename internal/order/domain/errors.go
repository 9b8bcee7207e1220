package domain

import "errors"

// Workflow failure kinds. Each is a distinct, errors.Is-matchable sentinel so
// the presentation layer can map them to individual responses instead of a
// generic 500. Causes are attached by wrapping, e.g.
// fmt.Errorf("%w: %v", ErrStockReductionFailed, err).
var (
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrStockReductionFailed   = errors.New("stock reduction failed")
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)
