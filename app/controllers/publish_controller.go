package controllers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot/internal/pkg/social"
)

// Error codes surfaced to the front end. TOKEN_EXPIRED is distinguished so
// the caller prompts a reconnect instead of a generic retry.
const (
	CodeTokenExpired   = "TOKEN_EXPIRED"
	CodeNotConnected   = "NOT_CONNECTED"
	CodeContentTooLong = "CONTENT_TOO_LONG"
	CodeConfigMissing  = "CONFIG_MISSING"
	CodePlatformError  = "PLATFORM_ERROR"
)

// PublishController exposes the trusted-backend exchange and publish
// endpoints plus the preview used before confirming.
type PublishController struct {
	svc       *social.Service
	publisher *social.Publisher
	validate  *validator.Validate
}

func NewPublishController(svc *social.Service, publisher *social.Publisher) *PublishController {
	return &PublishController{
		svc:       svc,
		publisher: publisher,
		validate:  validator.New(),
	}
}

type exchangeRequest struct {
	Code        string `json:"code" validate:"required"`
	RedirectURI string `json:"redirectUri" validate:"required,url"`
}

// HandleExchange trades an authorization code for a token and profile.
// Reachable only behind the service-key middleware; the token never goes
// through untrusted client code.
func (pc *PublishController) HandleExchange(c *fiber.Ctx) error {
	var req exchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if err := pc.validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	result, err := pc.svc.Exchange(c.UserContext(), req.Code, req.RedirectURI)
	if err != nil {
		if errors.Is(err, social.ErrConfigMissing) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error(), "code": CodeConfigMissing})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error(), "code": CodePlatformError})
	}

	return c.JSON(fiber.Map{
		"accessToken":       result.AccessToken,
		"expiresAt":         result.ExpiresAt.UTC().Format(time.RFC3339),
		"externalAccountId": result.ExternalAccountID,
		"profileName":       result.ProfileName,
		"profilePicture":    result.ProfilePicture,
		"email":             result.Email,
	})
}

type publishRequest struct {
	UserID  uint   `json:"userId" validate:"required,min=1"`
	Content string `json:"content" validate:"required"`
}

// HandlePublish runs one confirmed publish for a user. Failures carry the
// underlying platform message verbatim since the end user decides whether
// to retry or reconnect.
func (pc *PublishController) HandlePublish(c *fiber.Ctx) error {
	var req publishRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if err := pc.validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	attempt, err := pc.publisher.Publish(c.UserContext(), req.UserID, req.Content)
	if err != nil {
		status, code := publishErrorCode(err)
		resp := fiber.Map{"success": false, "error": err.Error(), "code": code}
		if attempt != nil {
			resp["attemptId"] = attempt.UUID
		}
		return c.Status(status).JSON(resp)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"attemptId": attempt.UUID,
		"postId":    attempt.ExternalPostID,
		"postUrl":   attempt.PostURL,
	})
}

type previewRequest struct {
	UserID  uint   `json:"userId" validate:"required,min=1"`
	Content string `json:"content" validate:"required"`
}

// HandlePreview returns the pre-confirm summary for the publish flow.
func (pc *PublishController) HandlePreview(c *fiber.Ctx) error {
	var req previewRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if err := pc.validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	preview, err := pc.publisher.Preview(req.UserID, req.Content)
	if err != nil {
		if errors.Is(err, social.ErrNotConnected) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "code": CodeNotConnected})
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "preview failed")
	}
	return c.JSON(preview)
}

func publishErrorCode(err error) (int, string) {
	switch {
	case errors.Is(err, social.ErrTokenExpired):
		return fiber.StatusUnauthorized, CodeTokenExpired
	case errors.Is(err, social.ErrNotConnected):
		return fiber.StatusConflict, CodeNotConnected
	case errors.Is(err, social.ErrContentTooLong):
		return fiber.StatusUnprocessableEntity, CodeContentTooLong
	case errors.Is(err, social.ErrConfigMissing):
		return fiber.StatusInternalServerError, CodeConfigMissing
	default:
		return fiber.StatusBadGateway, CodePlatformError
	}
}
