package social

import "errors"

var (
	// ErrConfigMissing means the platform client credentials are not
	// configured. Operator-actionable, surfaced as 500.
	ErrConfigMissing = errors.New("social: client credentials are not configured")

	// ErrNotConnected means the user has no stored connection. No publish
	// attempt is recorded for this case.
	ErrNotConnected = errors.New("social: no connection for user")

	// ErrTokenExpired is the distinguished expiry case. Never retried
	// automatically; the user must reconnect.
	ErrTokenExpired = errors.New("social: access token expired")

	// ErrStateMismatch means the OAuth callback state was missing, already
	// consumed, or does not belong to this user. No exchange is performed.
	ErrStateMismatch = errors.New("social: oauth state mismatch")

	// ErrContentTooLong rejects content above the platform's post limit
	// before the confirm step.
	ErrContentTooLong = errors.New("social: content exceeds platform limit")
)
