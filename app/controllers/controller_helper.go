package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jaguarlabs/jaguar/internal/pkg/env"
)

// jsonError writes a JSON error response in the shared shape
func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// publicBaseURL returns the externally visible base URL without a trailing
// slash, used for gateway redirect URLs.
func publicBaseURL() string {
	base := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000")
	return strings.TrimRight(base, "/")
}

func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		v := strings.TrimSpace(c.Get(k))
		if v != "" {
			return v
		}
	}
	return ""
}
