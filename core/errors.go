package core

import "errors"

var (
	// ErrInvalidRequest rejects a request before any side effect.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInsufficientFunds rejects a debit or transfer whose wallet cannot
	// cover the amount. No row is written.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnknownExternalUser rejects a reference the external directory
	// does not know.
	ErrUnknownExternalUser = errors.New("unknown external user")
	// ErrExternalUnavailable surfaces after the bounded retries against
	// the external service are exhausted.
	ErrExternalUnavailable = errors.New("external service unavailable")
	// ErrExternalMalformedResponse marks a response body that could not be
	// decoded. It is handled like unavailability.
	ErrExternalMalformedResponse = errors.New("external service returned malformed response")
	// ErrPartialReconciliation marks the divergence window: the external
	// system reflects the update but the local debit did not apply.
	ErrPartialReconciliation = errors.New("external balance updated but local debit not applied")
)
