package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// signatureTolerance bounds how old a signed timestamp may be. Replays inside
// the window are caught by event-id deduplication, not here.
const signatureTolerance = 5 * time.Minute

// VerifyWebhookSignature checks the provider's signature header against the
// raw request body. The header carries a unix timestamp and an HMAC-SHA256
// of "<timestamp>.<body>" in the form "t=<unix>,v1=<hex>".
//
// The body must be the exact bytes received on the wire; re-serialized JSON
// will not match.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) error {
	secret := strings.TrimSpace(webhookSecret)
	if secret == "" {
		return ErrConfigMissing
	}

	ts, sig, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return err
	}

	age := time.Since(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureInvalid)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	expected := mac.Sum(nil)

	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return fmt.Errorf("%w: malformed hex digest", ErrSignatureInvalid)
	}
	if !hmac.Equal(expected, decoded) {
		return fmt.Errorf("%w: digest mismatch", ErrSignatureInvalid)
	}
	return nil
}

// SignPayload produces a signature header for the given body, as the billing
// provider would. Used by the webhook endpoint tests and local tooling.
func SignPayload(payload []byte, webhookSecret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func parseSignatureHeader(header string) (int64, string, error) {
	h := strings.TrimSpace(header)
	if h == "" {
		return 0, "", fmt.Errorf("%w: missing signature header", ErrSignatureInvalid)
	}

	var ts int64
	var sig string
	var err error
	for _, part := range strings.Split(h, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("%w: malformed timestamp", ErrSignatureInvalid)
			}
		case "v1":
			sig = v
		}
	}

	if ts == 0 || sig == "" {
		return 0, "", fmt.Errorf("%w: incomplete signature header", ErrSignatureInvalid)
	}
	return ts, sig, nil
}
