package controllers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/postpilot/postpilot/app/models"
	"github.com/postpilot/postpilot/internal/pkg/session"
)

// AuthController handles register/login/logout plus the Goth sign-in flow.
type AuthController struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		db:       db,
		validate: validator.New(),
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if err := ac.validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	if err := ac.db.Create(user).Error; err != nil {
		return jsonError(c, fiber.StatusConflict, "registration_failed", "email may already be registered")
	}

	if err := seedFreeSubscription(ac.db, user.ID); err != nil {
		log.Printf("[Auth] could not seed subscription for user %d: %v", user.ID, err)
	}

	if err := loginUser(c, ac.db, user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "session_failed", "could not create session")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if err := ac.validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	// Do not tell the caller which part of the login failed.
	var user models.User
	if err := ac.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "login_failed", "there is a problem with the login process")
	}
	if !models.CheckPasswordHash(req.Password, user.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "login_failed", "there is a problem with the login process")
	}
	if user.Status != models.STATUS_ACTIVE {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "account is not active")
	}

	if err := loginUser(c, ac.db, &user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "session_failed", "could not create session")
	}
	return c.JSON(user)
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("[Auth] session destroy failed: %v", err)
		}
	}
	c.Locals(FROM_PROTECTED, false)
	return c.JSON(fiber.Map{"logged_out": true})
}

// HandleOAuthLogin starts the Goth provider flow (/auth/:provider).
func (ac *AuthController) HandleOAuthLogin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in,
// creating an account on first sign-in.
func (ac *AuthController) HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "oauth_failed", err.Error())
	}

	var user models.User
	res := ac.db.Where("email = ?", u.Email).First(&user)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		// Password is a random placeholder; these accounts log in via the
		// provider only.
		placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
		hash, _ := models.HashPassword(placeholder)
		email := u.Email
		if email == "" {
			email = fmt.Sprintf("%s_%s@%s.oauth.local", u.Provider, u.UserID, u.Provider)
		}
		user = models.User{
			Name:      firstNonEmpty(u.Name, u.NickName, u.Email, "User"),
			Email:     email,
			Password:  hash,
			Role:      models.ROLE_USER,
			Status:    models.STATUS_ACTIVE,
			AvatarURL: u.AvatarURL,
		}
		if err := ac.db.Create(&user).Error; err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "registration_failed", "could not create user")
		}
		if err := seedFreeSubscription(ac.db, user.ID); err != nil {
			log.Printf("[Auth] could not seed subscription for user %d: %v", user.ID, err)
		}
	} else if res.Error != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "user lookup failed")
	}

	if user.Status != models.STATUS_ACTIVE {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "account is not active")
	}

	if err := loginUser(c, ac.db, &user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "session_failed", "could not create session")
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
