package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventCheckoutCompleted(t *testing.T) {
	payload := []byte(`{
		"id": "evt_checkout_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_1",
				"client_reference_id": "42",
				"customer": "cus_abc",
				"subscription": "sub_abc",
				"metadata": {"user_id": "42"}
			}
		}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, "evt_checkout_1", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	require.NotNil(t, event.Checkout)
	assert.Equal(t, "42", event.Checkout.ClientReferenceID)
	assert.Equal(t, "cus_abc", event.Checkout.Customer)
	assert.Equal(t, "sub_abc", event.Checkout.Subscription)
	assert.Nil(t, event.Subscription)
	assert.Nil(t, event.Invoice)
}

func TestParseEventSubscriptionUpdated(t *testing.T) {
	payload := []byte(`{
		"id": "evt_sub_1",
		"type": "customer.subscription.updated",
		"data": {
			"object": {
				"id": "sub_abc",
				"customer": "cus_abc",
				"status": "active",
				"current_period_end": 1756339200,
				"metadata": {"user_id": "42"},
				"items": {"data": [{"price": {"id": "price_pro_m", "interval": "month"}}]}
			}
		}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	require.NotNil(t, event.Subscription)
	assert.Equal(t, "sub_abc", event.Subscription.ID)
	assert.Equal(t, "price_pro_m", event.Subscription.PriceID())

	end := event.Subscription.PeriodEnd()
	require.NotNil(t, end)
	assert.Equal(t, time.Unix(1756339200, 0).UTC(), *end)
}

func TestParseEventInvoicePaid(t *testing.T) {
	payload := []byte(`{
		"id": "evt_inv_1",
		"type": "invoice.paid",
		"data": {
			"object": {
				"id": "in_1",
				"customer": "cus_abc",
				"subscription": "sub_abc",
				"amount_paid": 1900,
				"currency": "eur",
				"hosted_invoice_url": "https://pay.example.com/in_1"
			}
		}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	require.NotNil(t, event.Invoice)
	assert.Equal(t, int64(1900), event.Invoice.AmountPaid)
	assert.Equal(t, "eur", event.Invoice.Currency)
	assert.Equal(t, "sub_abc", event.Invoice.Subscription)
}

func TestParseEventUnknownType(t *testing.T) {
	payload := []byte(`{"id":"evt_x","type":"customer.created","data":{"object":{"id":"cus_1"}}}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, EventType("customer.created"), event.Type)
	assert.Nil(t, event.Checkout)
	assert.Nil(t, event.Subscription)
	assert.Nil(t, event.Invoice)
}

func TestParseEventInvalid(t *testing.T) {
	cases := map[string][]byte{
		"malformed json":    []byte(`{"id":`),
		"missing type":      []byte(`{"id":"evt_1","data":{"object":{}}}`),
		"empty body":        []byte(``),
		"no data for known": []byte(`{"id":"evt_1","type":"invoice.paid"}`),
	}
	for name, payload := range cases {
		_, err := ParseEvent(payload)
		assert.True(t, errors.Is(err, ErrInvalidPayload), "%s: expected ErrInvalidPayload, got %v", name, err)
	}
}

func TestSubscriptionObjectNilAccessors(t *testing.T) {
	var sub *SubscriptionObject
	assert.Equal(t, "", sub.PriceID())
	assert.Nil(t, sub.PeriodEnd())

	empty := &SubscriptionObject{}
	assert.Equal(t, "", empty.PriceID())
	assert.Nil(t, empty.PeriodEnd())
}
