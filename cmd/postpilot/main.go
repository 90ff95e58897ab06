package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/postpilot/postpilot/internal/pkg/billing"
	"github.com/postpilot/postpilot/internal/pkg/cache"
	"github.com/postpilot/postpilot/internal/pkg/database"
	"github.com/postpilot/postpilot/internal/pkg/env"
	"github.com/postpilot/postpilot/internal/pkg/router"
	"github.com/postpilot/postpilot/internal/pkg/social"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()

	db, err := database.Setup()
	if err != nil {
		log.Fatalf("database setup failed: %v", err)
	}
	cacheClient := cache.Setup()

	// Domain services, constructed once and injected.
	billingSvc := billing.NewService(
		billing.NewRepository(db),
		billing.NewStripeClientFromEnv(),
		billing.LoadPriceTable(),
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
	)

	socialRepo := social.NewRepository(db)
	platform := social.NewLinkedInClientFromEnv()
	socialSvc := social.NewService(socialRepo, platform, social.NewRedisStateStore(cacheClient))
	publisher := social.NewPublisher(socialRepo, platform)

	// Find the project root for the docs file.
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/postpilot to project root
		"../../../", // Fallback
	}
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	router.InstallRouter(app, router.Dependencies{
		DB:             db,
		Cache:          cacheClient,
		BillingService: billingSvc,
		SocialService:  socialSvc,
		Publisher:      publisher,
	})

	return app
}
