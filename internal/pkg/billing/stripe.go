package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/postpilot/postpilot/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

// Retry budget for idempotent GETs against the billing API. Mutating calls
// are never retried here.
const (
	subscriptionFetchRetries = 2
	retryBaseDelay           = 200 * time.Millisecond
)

// StripeClient fetches subscription details from the billing provider's API.
// Webhook payloads for checkout completions do not carry price or period
// data, so the router re-reads the subscription after checkout.
type StripeClient struct {
	APIKey     string
	APIBaseURL string

	HTTPClient *http.Client
}

func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		APIKey:     strings.TrimSpace(env.GetEnv("STRIPE_API_KEY", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetSubscription retrieves the current state of a provider subscription.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff within the fixed budget.
func (c *StripeClient) GetSubscription(ctx context.Context, subscriptionRef string) (*SubscriptionObject, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("STRIPE_API_KEY is not configured")
	}
	ref := strings.TrimSpace(subscriptionRef)
	if ref == "" {
		return nil, errors.New("subscription reference is required")
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/subscriptions/" + ref

	var lastErr error
	for attempt := 0; attempt <= subscriptionFetchRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		sub, retryable, err := c.fetchSubscription(ctx, url)
		if err == nil {
			return sub, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (c *StripeClient) fetchSubscription(ctx context.Context, url string) (*SubscriptionObject, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("subscription fetch failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("subscription fetch failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out SubscriptionObject
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, false, errors.New("subscription response missing id")
	}
	return &out, false, nil
}
