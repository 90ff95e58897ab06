package cache

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/postpilot/postpilot/internal/pkg/env"
)

// Setup connects to the Redis/Dragonfly cache server and returns the client.
// The client is injected into the packages that need it (session store,
// OAuth state store); there is no lazily-initialized package global.
func Setup() *redis.Client {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	// Test the connection; a cache outage should not prevent startup.
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("Warning: could not connect to cache: %v", err)
	}

	return client
}
