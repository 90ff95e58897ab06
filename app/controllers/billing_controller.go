package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot/internal/pkg/billing"
)

// BillingController exposes the provider webhook endpoint.
type BillingController struct {
	svc *billing.Service
}

func NewBillingController(svc *billing.Service) *BillingController {
	return &BillingController{svc: svc}
}

// HandleWebhook receives one billing event delivery.
//
// The raw body goes to the service untouched; re-serialized JSON would break
// the signature check. The provider retries on non-2xx, so only signature
// failures (400) and config/unexpected errors (500) reject the delivery;
// per-event business failures are logged and acknowledged.
func (bc *BillingController) HandleWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	ctx, cancel := context.WithTimeout(c.UserContext(), 15*time.Second)
	defer cancel()

	result, err := bc.svc.HandleWebhook(ctx, rawBody, signature)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrConfigMissing):
			log.Printf("[Billing] webhook rejected: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "config_missing"})
		case errors.Is(err, billing.ErrSignatureInvalid):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
		case errors.Is(err, billing.ErrInvalidPayload):
			// 400 is reserved for signature failures. A body that verified
			// but does not parse is our problem; 500 keeps the provider
			// redelivering until a fix ships.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "invalid_payload"})
		default:
			log.Printf("[Billing] webhook processing failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_failed"})
		}
	}

	resp := fiber.Map{"received": true}
	if result.Duplicate {
		resp["duplicate"] = true
	}
	if result.Ignored {
		resp["ignored"] = true
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}
