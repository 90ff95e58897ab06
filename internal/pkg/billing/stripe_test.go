package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStripeClient(baseURL string) *StripeClient {
	return &StripeClient{
		APIKey:     "sk_test_123",
		APIBaseURL: baseURL,
		HTTPClient: http.DefaultClient,
	}
}

func TestStripeClientGetSubscription(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/subscriptions/sub_abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "sub_abc",
			"status": "active",
			"current_period_end": 1756339200,
			"items": {"data": [{"price": {"id": "price_pro_m", "interval": "month"}}]}
		}`))
	}))
	defer srv.Close()

	sub, err := testStripeClient(srv.URL).GetSubscription(context.Background(), "sub_abc")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "sub_abc", sub.ID)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, "price_pro_m", sub.PriceID())
}

func TestStripeClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id": "sub_abc", "status": "active"}`))
	}))
	defer srv.Close()

	sub, err := testStripeClient(srv.URL).GetSubscription(context.Background(), "sub_abc")
	require.NoError(t, err)
	assert.Equal(t, "sub_abc", sub.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestStripeClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "No such subscription"}}`))
	}))
	defer srv.Close()

	_, err := testStripeClient(srv.URL).GetSubscription(context.Background(), "sub_missing")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStripeClientGivesUpAfterRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testStripeClient(srv.URL).GetSubscription(context.Background(), "sub_abc")
	require.Error(t, err)
	assert.Equal(t, int32(1+subscriptionFetchRetries), calls.Load())
}

func TestStripeClientRequiresConfig(t *testing.T) {
	c := &StripeClient{HTTPClient: http.DefaultClient}
	_, err := c.GetSubscription(context.Background(), "sub_abc")
	require.Error(t, err)

	c.APIKey = "sk_test_123"
	_, err = c.GetSubscription(context.Background(), "")
	require.Error(t, err)
}

func TestStripeClientHonorsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testStripeClient(srv.URL).GetSubscription(ctx, "sub_abc")
	require.Error(t, err)
}
