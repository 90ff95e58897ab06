package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/postpilot/postpilot/app/models"
	"github.com/postpilot/postpilot/internal/pkg/session"
	"github.com/postpilot/postpilot/internal/pkg/usercontext"
)

const (
	AUTH_KEY      string = "authenticated"
	USER_ID       string = "user_id"
	USER_NAME     string = "username"
	USER_IS_ADMIN string = "isAdmin"
	FROM_PROTECTED string = "from_protected"
)

// loginUser writes the session for an authenticated user and caches the
// plan for the user context middleware.
func loginUser(c *fiber.Ctx, db *gorm.DB, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(AUTH_KEY, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		return err
	}

	plan := "free"
	var sub models.Subscription
	if err := db.Where("user_id = ?", user.ID).First(&sub).Error; err == nil && sub.Plan != "" {
		plan = sub.Plan
	}
	_ = session.SetSessionValue(c, usercontext.KeyPlan, plan)

	_ = db.Model(user).UpdateColumn("last_login_at", time.Now()).Error
	return nil
}

// seedFreeSubscription creates the implicit free-plan subscription row at
// signup. Idempotent against a pre-existing row.
func seedFreeSubscription(db *gorm.DB, userID uint) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.Subscription{UserID: userID, Plan: "free"}).Error
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}
