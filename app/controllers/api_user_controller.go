package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/postpilot/postpilot/app/models"
	"github.com/postpilot/postpilot/internal/pkg/entitlements"
	"github.com/postpilot/postpilot/internal/pkg/social"
)

// ApiUserController is the read surface the front end polls: subscription
// state, payment history, connection status, publish history.
type ApiUserController struct {
	db  *gorm.DB
	svc *social.Service
}

func NewApiUserController(db *gorm.DB, svc *social.Service) *ApiUserController {
	return &ApiUserController{db: db, svc: svc}
}

func (uc *ApiUserController) userIDParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, errors.New("invalid user id")
	}
	return uint(id), nil
}

func (uc *ApiUserController) HandleGetSubscription(c *fiber.Ctx) error {
	userID, err := uc.userIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	var sub models.Subscription
	if err := uc.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Users created before implicit seeding existed.
			sub = models.Subscription{UserID: userID, Plan: string(entitlements.PlanFree)}
		} else {
			return jsonError(c, fiber.StatusInternalServerError, "internal_error", "subscription lookup failed")
		}
	}

	plan := entitlements.Normalize(sub.Plan)
	return c.JSON(fiber.Map{
		"subscription":             sub,
		"plan":                     plan,
		"monthly_generation_limit": entitlements.MonthlyGenerationLimit(plan),
	})
}

func (uc *ApiUserController) HandleListPayments(c *fiber.Ctx) error {
	userID, err := uc.userIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var payments []models.PaymentRecord
	if err := uc.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&payments).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "payment lookup failed")
	}
	return c.JSON(fiber.Map{"payments": payments})
}

func (uc *ApiUserController) HandleGetConnection(c *fiber.Ctx) error {
	userID, err := uc.userIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	conn, err := uc.svc.GetConnection(userID)
	if err != nil {
		if errors.Is(err, social.ErrNotConnected) {
			return c.JSON(fiber.Map{"connected": false})
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "connection lookup failed")
	}
	return c.JSON(fiber.Map{"connected": true, "connection": conn})
}

func (uc *ApiUserController) HandleListPublishAttempts(c *fiber.Ctx) error {
	userID, err := uc.userIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	attempts, err := uc.svc.ListPublishAttempts(userID, c.QueryInt("limit", 50))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "publish attempt lookup failed")
	}
	return c.JSON(fiber.Map{"attempts": attempts})
}
