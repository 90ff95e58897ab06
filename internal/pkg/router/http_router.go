package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot/app/controllers"
	"github.com/postpilot/postpilot/internal/pkg/middleware"
	"github.com/postpilot/postpilot/internal/pkg/oauth"
	"github.com/postpilot/postpilot/internal/pkg/session"
)

type HttpRouter struct {
	deps Dependencies
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}

func (h *HttpRouter) InstallRouter(app *fiber.App) {
	session.NewSessionStore(h.deps.Cache)
	oauth.Setup(h.deps.Cache)

	app.Use(middleware.UserContextMiddleware)

	auth := controllers.NewAuthController(h.deps.DB)
	billingCtl := controllers.NewBillingController(h.deps.BillingService)
	connect := controllers.NewConnectController(h.deps.SocialService)

	// Auth shell
	app.Post("/register", auth.HandleRegister)
	app.Post("/login", auth.HandleLogin)
	app.Post("/logout", auth.HandleLogout)
	app.Get("/auth/:provider", auth.HandleOAuthLogin)
	app.Get("/auth/:provider/callback", auth.HandleOAuthCallback)

	// Billing provider deliveries
	app.Post("/webhooks/billing", billingCtl.HandleWebhook)

	// Social connection flow (browser)
	app.Get("/connect/social", middleware.RequireAuth, connect.HandleConnect)
	app.Get("/connect/social/callback", connect.HandleCallback)
	app.Post("/connect/social/disconnect", middleware.RequireAuth, connect.HandleDisconnect)
}
