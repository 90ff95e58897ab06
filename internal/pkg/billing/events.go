package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventType enumerates the provider event types this service acts on. Any
// other type is acknowledged and ignored.
type EventType string

const (
	EventCheckoutCompleted    EventType = "checkout.session.completed"
	EventSubscriptionUpdated  EventType = "customer.subscription.updated"
	EventSubscriptionDeleted  EventType = "customer.subscription.deleted"
	EventInvoicePaid          EventType = "invoice.paid"
	EventInvoicePaymentFailed EventType = "invoice.payment_failed"
)

// Event is the discriminated union decoded from a verified webhook payload.
// Exactly one of the payload pointers is set, matching Type; handlers never
// touch the raw JSON again after this point.
type Event struct {
	ID   string
	Type EventType

	Checkout     *CheckoutSession
	Subscription *SubscriptionObject
	Invoice      *InvoiceObject
}

// CheckoutSession carries the fields of a completed hosted checkout.
type CheckoutSession struct {
	ID                string            `json:"id"`
	ClientReferenceID string            `json:"client_reference_id"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	Metadata          map[string]string `json:"metadata"`
}

// SubscriptionObject mirrors the provider's subscription resource, reduced
// to the fields subscription sync needs.
type SubscriptionObject struct {
	ID               string            `json:"id"`
	Customer         string            `json:"customer"`
	Status           string            `json:"status"`
	CurrentPeriodEnd int64             `json:"current_period_end"`
	Metadata         map[string]string `json:"metadata"`
	Items            struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
}

// SubscriptionItem is one line item on a subscription. There is exactly one
// for our single-seat plans.
type SubscriptionItem struct {
	Price Price `json:"price"`
}

// Price identifies the purchased price point.
type Price struct {
	ID       string `json:"id"`
	Interval string `json:"interval"`
}

// PriceID returns the first item's price identifier, or "".
func (s *SubscriptionObject) PriceID() string {
	if s == nil || len(s.Items.Data) == 0 {
		return ""
	}
	return s.Items.Data[0].Price.ID
}

// PeriodEnd converts the epoch field to a time, or nil when absent.
func (s *SubscriptionObject) PeriodEnd() *time.Time {
	if s == nil || s.CurrentPeriodEnd == 0 {
		return nil
	}
	t := time.Unix(s.CurrentPeriodEnd, 0).UTC()
	return &t
}

// InvoiceObject mirrors the provider's invoice resource.
type InvoiceObject struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Subscription     string `json:"subscription"`
	AmountPaid       int64  `json:"amount_paid"`
	AmountDue        int64  `json:"amount_due"`
	Currency         string `json:"currency"`
	Description      string `json:"description"`
	HostedInvoiceURL string `json:"hosted_invoice_url"`
}

type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a verified raw payload into a typed Event. Unknown
// event types parse successfully with no payload attached; malformed JSON
// or a missing data object for a known type is an ErrInvalidPayload.
func ParseEvent(payload []byte) (*Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	if strings.TrimSpace(env.Type) == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrInvalidPayload)
	}

	ev := &Event{
		ID:   strings.TrimSpace(env.ID),
		Type: EventType(env.Type),
	}

	switch ev.Type {
	case EventCheckoutCompleted:
		ev.Checkout = &CheckoutSession{}
		if err := decodeObject(env.Data.Object, ev.Checkout); err != nil {
			return nil, err
		}
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		ev.Subscription = &SubscriptionObject{}
		if err := decodeObject(env.Data.Object, ev.Subscription); err != nil {
			return nil, err
		}
	case EventInvoicePaid, EventInvoicePaymentFailed:
		ev.Invoice = &InvoiceObject{}
		if err := decodeObject(env.Data.Object, ev.Invoice); err != nil {
			return nil, err
		}
	default:
		// Acknowledged, not processed.
	}

	return ev, nil
}

func decodeObject(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data object", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return errors.Join(ErrInvalidPayload, err)
	}
	return nil
}
