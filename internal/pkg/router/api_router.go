package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/postpilot/postpilot/app/controllers"
	"github.com/postpilot/postpilot/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Dependencies
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func (a *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	publish := controllers.NewPublishController(a.deps.SocialService, a.deps.Publisher)
	users := controllers.NewApiUserController(a.deps.DB, a.deps.SocialService)

	// Trusted-backend surface; every route requires the shared service key.
	internal := api.Group("/internal", middleware.RequireServiceKey())

	internal.Post("/social/exchange", publish.HandleExchange)
	internal.Post("/social/preview", publish.HandlePreview)
	internal.Post("/social/publish", publish.HandlePublish)

	internal.Get("/users/:id/subscription", users.HandleGetSubscription)
	internal.Get("/users/:id/payments", users.HandleListPayments)
	internal.Get("/users/:id/connection", users.HandleGetConnection)
	internal.Get("/users/:id/publish-attempts", users.HandleListPublishAttempts)
}
