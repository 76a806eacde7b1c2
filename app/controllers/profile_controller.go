package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jaguarlabs/jaguar/app/models"
	"github.com/jaguarlabs/jaguar/app/repository"
	"github.com/jaguarlabs/jaguar/internal/pkg/middleware"
	"github.com/jaguarlabs/jaguar/internal/pkg/usercontext"
)

// HandleGetRole returns the caller's effective role. The admin allowlist is
// applied here as well so a configured admin sees the elevated role even if
// their stored row says otherwise.
func HandleGetRole(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	role := userCtx.Role
	if middleware.IsAdminEmail(userCtx.Email) {
		role = models.ROLE_ADMIN
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"role":  role,
		"email": userCtx.Email,
	})
}

type completeProfileBody struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Country string `json:"country"`
}

// HandleCompleteProfile fills in the profile fields that a webhook-created
// stub account is missing.
func HandleCompleteProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	var body completeProfileBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	users := repository.GetGlobalFactory().GetUserRepository()
	user, err := users.GetByID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "User not found")
	}

	if name := strings.TrimSpace(body.Name); name != "" {
		user.Name = name
	}
	if phone := strings.TrimSpace(body.Phone); phone != "" {
		user.Phone = phone
	}
	if address := strings.TrimSpace(body.Address); address != "" {
		user.Address = address
	}
	if country := strings.TrimSpace(body.Country); country != "" {
		user.Country = country
	}

	if err := user.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := users.Update(user); err != nil {
		log.Printf("profile update failed for user=%d: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not update profile")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user})
}

// HandleMySubscriptions lists the caller's subscription rows.
func HandleMySubscriptions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	subs, err := repository.GetGlobalFactory().GetSubscriptionRepository().ListByEmail(userCtx.Email)
	if err != nil {
		log.Printf("subscription list failed for email=%s: %v", userCtx.Email, err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"subscriptions": subs})
}
