/**
 * @description
 * Error taxonomy for the entitlement and payment flows. Handlers map these
 * onto HTTP status codes; everything else surfaces as an internal error.
 */
package app

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSignature means the payment callback failed HMAC verification.
	// Treated as a potential tamper attempt; no state is changed.
	ErrInvalidSignature = errors.New("invalid payment signature")
	// ErrRecordNotFound means no pending record matches the callback's user
	// and order (already completed, wrong user, or order id typo).
	ErrRecordNotFound = errors.New("pending payment record not found")
	// ErrReferenceNotFound means the referenced plan or content is missing.
	ErrReferenceNotFound = errors.New("referenced plan or content not found")
)

// ValidationError reports a missing or malformed request field. The client
// must correct the request and resend.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid field: %s", e.Field)
}

// PersistenceError reports a store write failure after payment verification
// already succeeded. The gateway-side payment is real at this point, so the
// failure must surface prominently for out-of-band reconciliation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
