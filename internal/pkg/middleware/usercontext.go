package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jaguarlabs/jaguar/app/models"
	"github.com/jaguarlabs/jaguar/app/repository"
	"github.com/jaguarlabs/jaguar/internal/pkg/env"
	"github.com/jaguarlabs/jaguar/internal/pkg/session"
	"github.com/jaguarlabs/jaguar/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session into a UserContext stored in
// Locals. Runs on every request; anonymous requests get the default context.
func UserContextMiddleware(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store == nil {
		return c.Next()
	}

	sess, err := store.Get(c)
	if err != nil {
		return c.Next()
	}

	authenticated, _ := sess.Get(usercontext.AuthKey).(bool)
	if !authenticated {
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	userID, _ := sess.Get(usercontext.KeyUserID).(uint)
	username, _ := sess.Get(usercontext.KeyUsername).(string)
	email, _ := sess.Get(usercontext.KeyEmail).(string)
	role, _ := sess.Get(usercontext.KeyRole).(string)

	// Re-read the role from the database so payments reconciled since login
	// take effect without a fresh session.
	if userID != 0 {
		if user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userID); err == nil {
			role = user.Role
			email = user.Email
		}
	}

	if IsAdminEmail(email) {
		role = models.ROLE_ADMIN
	}

	userCtx := usercontext.UserContext{
		UserID:     userID,
		Username:   username,
		Email:      email,
		Role:       role,
		IsLoggedIn: true,
		IsAdmin:    role == models.ROLE_ADMIN,
	}
	c.Locals("USER_CONTEXT", userCtx)
	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUserID, userID)
	c.Locals(usercontext.KeyUsername, username)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}

// IsAdminEmail checks the configured admin allowlist. An empty allowlist
// means no email-based elevation.
func IsAdminEmail(email string) bool {
	addr := strings.ToLower(strings.TrimSpace(email))
	if addr == "" {
		return false
	}
	for _, key := range []string{"SUPER_ADMIN_EMAIL", "ADMIN_EMAIL"} {
		if allowed := strings.ToLower(strings.TrimSpace(env.GetEnv(key, ""))); allowed != "" && allowed == addr {
			return true
		}
	}
	return false
}
