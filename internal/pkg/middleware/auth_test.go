package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaguarlabs/jaguar/internal/pkg/usercontext"
)

func newAuthTestApp(ctx *usercontext.UserContext, handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if ctx != nil {
			c.Locals("USER_CONTEXT", *ctx)
		}
		return c.Next()
	})
	app.Get("/protected", handler, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func testStatus(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, testStatus(t, newAuthTestApp(nil, RequireAuth)))

	member := &usercontext.UserContext{UserID: 1, Role: "premium", IsLoggedIn: true}
	assert.Equal(t, http.StatusOK, testStatus(t, newAuthTestApp(member, RequireAuth)))
}

func TestRequireAdmin(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, testStatus(t, newAuthTestApp(nil, RequireAdmin)))

	member := &usercontext.UserContext{UserID: 1, Role: "vip", IsLoggedIn: true}
	assert.Equal(t, http.StatusForbidden, testStatus(t, newAuthTestApp(member, RequireAdmin)))

	admin := &usercontext.UserContext{UserID: 2, Role: "admin", IsLoggedIn: true, IsAdmin: true}
	assert.Equal(t, http.StatusOK, testStatus(t, newAuthTestApp(admin, RequireAdmin)))
}

func TestIsAdminEmail(t *testing.T) {
	assert.False(t, IsAdminEmail("nobody@example.com"), "empty allowlist elevates no one")

	t.Setenv("SUPER_ADMIN_EMAIL", "Boss@Example.com")
	assert.True(t, IsAdminEmail("boss@example.com"))
	assert.True(t, IsAdminEmail(" BOSS@EXAMPLE.COM "))
	assert.False(t, IsAdminEmail("other@example.com"))
	assert.False(t, IsAdminEmail(""))
}
