package social

import "time"

// expiryMargin keeps a publish call started just before expiry from failing
// mid-flight. A token inside the margin counts as expired.
const expiryMargin = 5 * time.Minute

// IsExpired reports whether a stored token is unusable at the given moment:
// true iff expiresAt <= now + 5 minutes. There is no refresh grant; an
// expired token always requires a full reconnect.
func IsExpired(expiresAt, now time.Time) bool {
	return !expiresAt.After(now.Add(expiryMargin))
}
