package billing

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/postpilot/postpilot/app/models"
	"github.com/postpilot/postpilot/internal/pkg/entitlements"
)

// SubscriptionFetcher retrieves the authoritative subscription state from
// the billing provider. Satisfied by *StripeClient.
type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, subscriptionRef string) (*SubscriptionObject, error)
}

// Service processes verified billing webhook deliveries.
type Service struct {
	repo          Repository
	fetcher       SubscriptionFetcher
	prices        PriceTable
	webhookSecret string
}

func NewService(repo Repository, fetcher SubscriptionFetcher, prices PriceTable, webhookSecret string) *Service {
	return &Service{
		repo:          repo,
		fetcher:       fetcher,
		prices:        prices,
		webhookSecret: webhookSecret,
	}
}

// WebhookResult describes how a delivery was handled.
type WebhookResult struct {
	EventID string
	Type    EventType

	// Duplicate is set when the event was already recorded; nothing was
	// processed again.
	Duplicate bool

	// Ignored is set for event types we record but do not act on.
	Ignored bool
}

// HandleWebhook verifies, records and dispatches one webhook delivery.
//
// Signature and payload failures are returned to the caller so the HTTP
// layer can reject the delivery. Business failures during dispatch (unknown
// user, unknown subscription, provider fetch errors) are recorded on the
// stored event and swallowed: the delivery is acknowledged either way, since
// the provider redelivering the same broken event would not fix it.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (*WebhookResult, error) {
	if err := VerifyWebhookSignature(payload, signatureHeader, s.webhookSecret); err != nil {
		return nil, err
	}

	event, err := ParseEvent(payload)
	if err != nil {
		return nil, err
	}
	if event.ID == "" {
		return nil, fmt.Errorf("%w: missing event id", ErrInvalidPayload)
	}

	record := &models.BillingWebhookEvent{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(payload),
		SignatureValid:  true,
	}
	created, stored, err := s.repo.CreateWebhookEventIfNotExists(record)
	if err != nil {
		return nil, fmt.Errorf("record webhook event: %w", err)
	}

	result := &WebhookResult{EventID: event.ID, Type: event.Type}
	if !created {
		result.Duplicate = true
		return result, nil
	}

	dispatchErr := s.dispatch(ctx, event, result)
	processingError := ""
	if dispatchErr != nil {
		processingError = dispatchErr.Error()
		log.Printf("[Billing] event %s (%s) failed: %v", event.ID, event.Type, dispatchErr)
	}
	if err := s.repo.MarkWebhookProcessed(stored.ID, processingError); err != nil {
		log.Printf("[Billing] could not mark event %s processed: %v", event.ID, err)
	}
	return result, nil
}

func (s *Service) dispatch(ctx context.Context, event *Event, result *WebhookResult) error {
	switch event.Type {
	case EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event.Checkout)
	case EventSubscriptionUpdated:
		return s.handleSubscriptionUpdated(ctx, event.Subscription)
	case EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(event.Subscription)
	case EventInvoicePaid:
		return s.handleInvoice(event.Invoice, models.PaymentStatusSucceeded)
	case EventInvoicePaymentFailed:
		return s.handleInvoice(event.Invoice, models.PaymentStatusFailed)
	default:
		result.Ignored = true
		return nil
	}
}

// handleCheckoutCompleted attributes a fresh checkout to a user and pulls
// the authoritative subscription state from the provider, since the checkout
// session itself does not carry the purchased price.
func (s *Service) handleCheckoutCompleted(ctx context.Context, checkout *CheckoutSession) error {
	userID, err := resolveCheckoutUser(checkout)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetUserByID(userID); err != nil {
		return fmt.Errorf("%w: user %d: %v", ErrUnresolvedUser, userID, err)
	}

	subRef := strings.TrimSpace(checkout.Subscription)
	if subRef == "" {
		return fmt.Errorf("%w: checkout session has no subscription", ErrInvalidPayload)
	}

	sub, err := s.fetcher.GetSubscription(ctx, subRef)
	if err != nil {
		return fmt.Errorf("fetch subscription %s: %w", subRef, err)
	}

	fields := map[string]any{
		"plan":               string(s.prices.MapPrice(sub.PriceID())),
		"status":             normalizeBillingStatus(sub.Status),
		"subscription_ref":   subRef,
		"current_period_end": sub.PeriodEnd(),
	}
	if customer := strings.TrimSpace(checkout.Customer); customer != "" {
		fields["customer_ref"] = customer
	}
	return s.repo.MergeSubscription(userID, fields)
}

func (s *Service) handleSubscriptionUpdated(ctx context.Context, sub *SubscriptionObject) error {
	userID, err := s.resolveSubscriptionUser(sub)
	if err != nil {
		return err
	}

	// Update events may carry only a subset of the subscription. Absent
	// fields keep their stored values, so only populated ones are merged.
	fields := map[string]any{}
	if priceID := sub.PriceID(); priceID != "" {
		fields["plan"] = string(s.prices.MapPrice(priceID))
	}
	if status := normalizeBillingStatus(sub.Status); status != "" {
		fields["status"] = status
	}
	if ref := strings.TrimSpace(sub.ID); ref != "" {
		fields["subscription_ref"] = ref
	}
	if end := sub.PeriodEnd(); end != nil {
		fields["current_period_end"] = end
	}
	if customer := strings.TrimSpace(sub.Customer); customer != "" {
		fields["customer_ref"] = customer
	}
	if len(fields) == 0 {
		return nil
	}
	return s.repo.MergeSubscription(userID, fields)
}

// handleSubscriptionDeleted downgrades immediately. The period-end grace
// window is the provider's job; once it sends the deletion the entitlement
// is gone.
func (s *Service) handleSubscriptionDeleted(sub *SubscriptionObject) error {
	userID, err := s.resolveSubscriptionUser(sub)
	if err != nil {
		return err
	}
	return s.repo.MergeSubscription(userID, map[string]any{
		"plan":               string(entitlements.PlanFree),
		"status":             models.BillingStatusCanceled,
		"current_period_end": (*time.Time)(nil),
	})
}

func (s *Service) handleInvoice(invoice *InvoiceObject, status string) error {
	if invoice == nil {
		return fmt.Errorf("%w: missing invoice object", ErrInvalidPayload)
	}
	subRef := strings.TrimSpace(invoice.Subscription)
	if subRef == "" {
		return fmt.Errorf("%w: invoice has no subscription", ErrUnknownSubscription)
	}
	stored, err := s.repo.GetSubscriptionByRef(subRef)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownSubscription, subRef)
	}

	amount := invoice.AmountPaid
	if status == models.PaymentStatusFailed {
		amount = invoice.AmountDue
	}
	return s.repo.AppendPaymentRecord(&models.PaymentRecord{
		UserID:      stored.UserID,
		Amount:      amount,
		Currency:    strings.ToLower(strings.TrimSpace(invoice.Currency)),
		Status:      status,
		Description: invoice.Description,
		InvoiceURL:  invoice.HostedInvoiceURL,
	})
}

// resolveCheckoutUser reads the user ID we placed on the checkout session
// at creation time, either as client_reference_id or metadata.
func resolveCheckoutUser(checkout *CheckoutSession) (uint, error) {
	if checkout == nil {
		return 0, fmt.Errorf("%w: missing checkout object", ErrInvalidPayload)
	}
	raw := strings.TrimSpace(checkout.ClientReferenceID)
	if raw == "" {
		raw = strings.TrimSpace(checkout.Metadata["user_id"])
	}
	return parseUserID(raw)
}

// resolveSubscriptionUser prefers the user_id metadata stamped at checkout
// and falls back to the stored subscription reference.
func (s *Service) resolveSubscriptionUser(sub *SubscriptionObject) (uint, error) {
	if sub == nil {
		return 0, fmt.Errorf("%w: missing subscription object", ErrInvalidPayload)
	}
	if raw := strings.TrimSpace(sub.Metadata["user_id"]); raw != "" {
		return parseUserID(raw)
	}
	stored, err := s.repo.GetSubscriptionByRef(strings.TrimSpace(sub.ID))
	if err != nil {
		return 0, fmt.Errorf("%w: subscription %s", ErrUnresolvedUser, sub.ID)
	}
	return stored.UserID, nil
}

func parseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: user reference %q", ErrUnresolvedUser, raw)
	}
	return uint(id), nil
}

// normalizeBillingStatus keeps the provider's status text as-is apart from
// whitespace and casing. The status vocabulary belongs to the provider;
// rewriting unknown values would lose information (unpaid, paused, ...).
func normalizeBillingStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
