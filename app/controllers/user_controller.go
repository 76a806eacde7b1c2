package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/jaguarlabs/jaguar/app/models"
	"github.com/jaguarlabs/jaguar/app/repository"
	"github.com/jaguarlabs/jaguar/internal/pkg/entitlements"
	"github.com/jaguarlabs/jaguar/internal/pkg/secrets"
	"github.com/jaguarlabs/jaguar/internal/pkg/tiers"
	"github.com/jaguarlabs/jaguar/internal/pkg/usercontext"
)

type mt5CredentialsBody struct {
	Login    string `json:"login"`
	Server   string `json:"server"`
	Password string `json:"password"`
}

// HandleSubmitMT5Credentials accepts a broker account for bot trading. Only
// tiers with bot access may submit; each user has at most one pending or
// active submission.
func HandleSubmitMT5Credentials(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	if !roleHasBotAccess(userCtx.Role) {
		return jsonError(c, fiber.StatusForbidden, "Bot trading requires a VIP plan or higher")
	}

	var body mt5CredentialsBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	login := strings.TrimSpace(body.Login)
	server := strings.TrimSpace(body.Server)
	if login == "" || server == "" || body.Password == "" {
		return jsonError(c, fiber.StatusBadRequest, "login, server and password are required")
	}

	creds := repository.GetGlobalFactory().GetBotCredentialRepository()
	if existing, err := creds.GetByUserID(userCtx.UserID); err == nil && existing != nil {
		if existing.Status != models.BotCredentialStatusRejected {
			return jsonError(c, fiber.StatusConflict, "A submission is already on file")
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("bot credential lookup failed for user=%d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}

	sealed, err := secrets.Seal(body.Password)
	if err != nil {
		log.Printf("credential sealing failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Credential storage is not configured")
	}

	cred := models.NewBotCredential(userCtx.UserID, login, server, sealed)
	if err := creds.Create(cred); err != nil {
		log.Printf("bot credential insert failed for user=%d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not save credentials")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid":   cred.UUID,
		"status": cred.Status,
	})
}

// HandleMyMT5Credentials returns the caller's submission status. The broker
// password never leaves the server.
func HandleMyMT5Credentials(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	cred, err := repository.GetGlobalFactory().GetBotCredentialRepository().GetByUserID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "No submission on file")
		}
		log.Printf("bot credential lookup failed for user=%d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"credential": cred})
}

func roleHasBotAccess(role string) bool {
	if entitlements.Rank(role) >= entitlements.Rank(models.ROLE_ADMIN) {
		return true
	}
	tier, ok := tiers.ByID(role)
	return ok && tier.Features.BotAccess
}
