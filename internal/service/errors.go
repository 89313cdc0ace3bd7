package service

import "errors"

// Failure taxonomy for the billing flow. Handlers translate these into
// status codes; anything not matched is an internal error.
var (
	// ErrValidation: the draft is missing customer, items, staff or mode.
	// Nothing was written; the user corrects and resubmits.
	ErrValidation = errors.New("validation failed")

	// ErrLookupNotFound: no unit exists in the state the action requires.
	ErrLookupNotFound = errors.New("product not found or not in the required state")

	// ErrPersistence: a write failed before anything was committed; safe to
	// retry.
	ErrPersistence = errors.New("failed to persist bill")

	// ErrPaymentAuth: payment confirmation signature mismatch. Hard fail,
	// no state change.
	ErrPaymentAuth = errors.New("payment signature verification failed")

	// ErrAlreadyReconciled: the order handle maps to nothing, so either the
	// confirmation was already applied or the order expired. Idempotent
	// no-op on retry.
	ErrAlreadyReconciled = errors.New("payment order not found or already reconciled")
)
