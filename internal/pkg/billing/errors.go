package billing

import "errors"

var (
	// ErrConfigMissing means the webhook secret (or another required
	// credential) is not configured. Operator-actionable, surfaced as 500.
	ErrConfigMissing = errors.New("billing: webhook secret is not configured")

	// ErrSignatureInvalid means the signature header is missing, malformed,
	// or does not match the payload.
	ErrSignatureInvalid = errors.New("billing: invalid webhook signature")

	// ErrUnresolvedUser means an event could not be attributed to a known
	// user. Logged and skipped; the delivery is still acknowledged.
	ErrUnresolvedUser = errors.New("billing: event cannot be resolved to a user")

	// ErrUnknownSubscription means an invoice event references a
	// subscription we have never stored.
	ErrUnknownSubscription = errors.New("billing: unknown subscription reference")

	ErrInvalidPayload = errors.New("billing: invalid webhook payload")
)
