package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/jaguarlabs/jaguar/app/models"
	"github.com/jaguarlabs/jaguar/app/repository"
	"github.com/jaguarlabs/jaguar/internal/pkg/middleware"
	"github.com/jaguarlabs/jaguar/internal/pkg/session"
	"github.com/jaguarlabs/jaguar/internal/pkg/usercontext"
)

type registerBody struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Country      string `json:"country"`
	AgeConfirmed bool   `json:"ageConfirmed"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account. Duplicate emails get a 409 so the
// client can offer a login instead.
func HandleRegister(c *fiber.Ctx) error {
	var body registerBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !body.AgeConfirmed {
		return jsonError(c, fiber.StatusBadRequest, "You must confirm you are at least 18 years old")
	}

	user, err := models.CreateUser(body.Name, body.Email, body.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	user.Phone = strings.TrimSpace(body.Phone)
	user.Address = strings.TrimSpace(body.Address)
	user.Country = strings.TrimSpace(body.Country)
	user.AgeConfirmed = true

	users := repository.GetGlobalFactory().GetUserRepository()
	if existing, err := users.GetByEmail(user.Email); err == nil && existing != nil {
		if !existing.IsClaimableStub() {
			return jsonError(c, fiber.StatusConflict, "An account with this email already exists")
		}
		// The buyer paid before registering; reconciliation left an inactive
		// stub carrying the purchased role. Registration claims it.
		claimStub(existing, user)
		if err := users.Update(existing); err != nil {
			log.Printf("stub claim failed for email=%s: %v", existing.Email, err)
			return jsonError(c, fiber.StatusInternalServerError, "Could not create account")
		}
		if err := startSession(c, existing); err != nil {
			log.Printf("session create failed after register: %v", err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"user": existing,
		})
	}
	if err := users.Create(user); err != nil {
		log.Printf("user create failed for email=%s: %v", user.Email, err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not create account")
	}

	if err := startSession(c, user); err != nil {
		log.Printf("session create failed after register: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": user,
	})
}

// HandleLogin authenticates by email and password and opens a session.
func HandleLogin(c *fiber.Ctx) error {
	var body loginBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.TrimSpace(strings.ToLower(body.Email))
	if email == "" || body.Password == "" {
		return jsonError(c, fiber.StatusBadRequest, "Email and password are required")
	}

	users := repository.GetGlobalFactory().GetUserRepository()
	user, err := users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		log.Printf("user lookup failed for email=%s: %v", email, err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	if !user.CheckPassword(body.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "Account is disabled")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := users.Update(user); err != nil {
		log.Printf("last-login update failed for user=%d: %v", user.ID, err)
	}

	if err := startSession(c, user); err != nil {
		log.Printf("session create failed after login: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not create session")
	}

	role := user.Role
	if middleware.IsAdminEmail(user.Email) {
		role = models.ROLE_ADMIN
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": user,
		"role": role,
	})
}

// HandleLogout destroys the session.
func HandleLogout(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store != nil {
		if sess, err := store.Get(c); err == nil {
			if err := sess.Destroy(); err != nil {
				log.Printf("session destroy failed: %v", err)
			}
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// claimStub activates a reconciler-created stub with the registrant's
// credentials. The role stays untouched: it is what the payment granted.
func claimStub(stub, reg *models.User) {
	stub.Name = reg.Name
	stub.Password = reg.Password
	stub.Phone = reg.Phone
	stub.Address = reg.Address
	stub.Country = reg.Country
	stub.AgeConfirmed = reg.AgeConfirmed
	stub.Status = models.STATUS_ACTIVE
}

func startSession(c *fiber.Ctx, user *models.User) error {
	store := session.GetSessionStore()
	if store == nil {
		return errors.New("session store not initialized")
	}
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyEmail, user.Email)
	sess.Set(usercontext.KeyRole, user.Role)
	return sess.Save()
}
