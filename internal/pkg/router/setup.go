package router

import (
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/postpilot/postpilot/internal/pkg/billing"
	"github.com/postpilot/postpilot/internal/pkg/social"
)

// Dependencies carries the explicitly constructed services the routers wire
// into controllers. Everything is built once in main and passed down.
type Dependencies struct {
	DB             *gorm.DB
	Cache          *goredis.Client
	BillingService *billing.Service
	SocialService  *social.Service
	Publisher      *social.Publisher
}

type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter registers all routes. The HTTP router goes first so the
// session store, oauth providers, and the user context middleware exist
// before the API routes that depend on them.
func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, routers ...Router) {
	for _, r := range routers {
		r.InstallRouter(app)
	}
}
