package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/postpilot/postpilot/internal/pkg/env"
	"github.com/postpilot/postpilot/internal/pkg/social"
	"github.com/postpilot/postpilot/internal/pkg/usercontext"
)

const connectReturnPath = "/account/connections"

// ConnectController drives the browser-facing connect/callback/disconnect
// flow for the social publishing connection.
type ConnectController struct {
	svc *social.Service
}

func NewConnectController(svc *social.Service) *ConnectController {
	return &ConnectController{svc: svc}
}

func connectRedirectURI() string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base + "/connect/social/callback"
}

// HandleConnect starts the authorization flow and redirects the browser to
// the platform.
func (cc *ConnectController) HandleConnect(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	authorizeURL, err := cc.svc.BeginConnect(ctx, userCtx.UserID, connectRedirectURI())
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Could not start the connection flow"}).Redirect(connectReturnPath)
	}
	return c.Redirect(authorizeURL, fiber.StatusSeeOther)
}

// HandleCallback completes the flow. The state is consumed exactly once; a
// back-button replay lands in the state-mismatch branch without a second
// exchange.
func (cc *ConnectController) HandleCallback(c *fiber.Ctx) error {
	if oauthErr := strings.TrimSpace(c.Query("error")); oauthErr != "" {
		msg := c.Query("error_description", oauthErr)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Connection failed: " + msg}).Redirect(connectReturnPath)
	}

	state := strings.TrimSpace(c.Query("state"))
	code := strings.TrimSpace(c.Query("code"))
	if state == "" || code == "" {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Connection failed: missing code or state"}).Redirect(connectReturnPath)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 20*time.Second)
	defer cancel()

	_, conn, err := cc.svc.CompleteConnect(ctx, state, code, connectRedirectURI())
	if err != nil {
		if errors.Is(err, social.ErrStateMismatch) {
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Connection failed: invalid or expired state"}).Redirect(connectReturnPath)
		}
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Connection failed: could not complete the exchange"}).Redirect(connectReturnPath)
	}

	msg := "Connected as " + conn.ProfileName
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": msg}).Redirect(connectReturnPath)
}

// HandleDisconnect deletes the stored connection.
func (cc *ConnectController) HandleDisconnect(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	if err := cc.svc.Disconnect(userCtx.UserID); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Could not disconnect the account"}).Redirect(connectReturnPath)
	}
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Account disconnected"}).Redirect(connectReturnPath)
}
