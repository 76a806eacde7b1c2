package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/jaguarlabs/jaguar/app/models"
	"github.com/jaguarlabs/jaguar/app/repository"
	"github.com/jaguarlabs/jaguar/internal/pkg/cache"
	"github.com/jaguarlabs/jaguar/internal/pkg/entitlements"
	"github.com/jaguarlabs/jaguar/internal/pkg/usercontext"
)

// HandleContentList returns published content the caller's tier can see.
// Items above the caller's rank are filtered out, not hidden behind a 403,
// so the dashboard renders a single list.
func HandleContentList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	items, err := repository.GetGlobalFactory().GetContentRepository().ListPublished()
	if err != nil {
		log.Printf("content list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}

	visible := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		if entitlements.CanAccess(userCtx.Role, item.Segment) {
			visible = append(visible, item)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": visible})
}

// HandleContentItem returns a single published item, 403 when the caller's
// tier ranks below the item's segment.
func HandleContentItem(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	id := parsePositiveInt(c.Params("id"), 0)
	if id == 0 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid content id")
	}

	item, err := repository.GetGlobalFactory().GetContentRepository().GetByID(uint(id))
	if err != nil || item == nil || !item.IsPublished {
		return jsonError(c, fiber.StatusNotFound, "Content not found")
	}
	if !entitlements.CanAccess(userCtx.Role, item.Segment) {
		return jsonError(c, fiber.StatusForbidden, "Upgrade required to view this content")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"item": item})
}

// HandleLiveSession returns the single active broadcast, if the caller's
// tier can join it. No active session is a 404, not an error.
func HandleLiveSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	sess, err := activeLiveSession()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "No active session")
		}
		log.Printf("live session lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	if !entitlements.CanAccess(userCtx.Role, sess.Segment) {
		return jsonError(c, fiber.StatusForbidden, "Upgrade required to join this session")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"session": sess})
}

const liveSessionCacheKey = "live_session:active"

// activeLiveSession reads the active broadcast through a short Redis cache;
// every member dashboard polls this endpoint.
func activeLiveSession() (*models.LiveSession, error) {
	if cached, err := cache.Get(liveSessionCacheKey); err == nil && cached != "" {
		var sess models.LiveSession
		if err := json.Unmarshal([]byte(cached), &sess); err == nil {
			return &sess, nil
		}
	}

	sess, err := repository.GetGlobalFactory().GetLiveSessionRepository().GetActive()
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(sess); err == nil {
		if err := cache.Set(liveSessionCacheKey, string(data), 30*time.Second); err != nil {
			log.Printf("live session cache write failed: %v", err)
		}
	}
	return sess, nil
}

// HandleMessages returns published admin broadcasts visible to the caller.
func HandleMessages(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	msgs, err := repository.GetGlobalFactory().GetMessageRepository().ListPublished()
	if err != nil {
		log.Printf("message list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}

	visible := make([]models.Message, 0, len(msgs))
	for _, msg := range msgs {
		if entitlements.CanAccess(userCtx.Role, msg.Segment) {
			visible = append(visible, msg)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"messages": visible})
}
