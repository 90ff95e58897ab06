package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/postpilot/postpilot/app/models"
	"github.com/postpilot/postpilot/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// Setup opens the MySQL connection and runs auto-migration. The returned
// handle is constructed exactly once in main and passed down explicitly;
// nothing in this package holds it.
func Setup() (*gorm.DB, error) {
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	var db *gorm.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                      dsn,
			DefaultStringSize:        256,
			DisableDatetimePrecision: true,
			DontSupportRenameIndex:   true,
			DontSupportRenameColumn:  true,
		}), &gorm.Config{})
		if err == nil {
			if err := db.AutoMigrate(
				&models.User{},
				&models.Subscription{},
				&models.PaymentRecord{},
				&models.SocialConnection{},
				&models.PublishAttempt{},
				&models.BillingWebhookEvent{},
			); err != nil {
				return nil, fmt.Errorf("auto-migration failed: %w", err)
			}
			return db, nil
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", maxRetries, err)
}
