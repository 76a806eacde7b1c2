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
	"github.com/jaguarlabs/jaguar/internal/pkg/cache"
	"github.com/jaguarlabs/jaguar/internal/pkg/tiers"
)

// Admin handlers. Routes using these are mounted behind RequireAdmin, so the
// handlers assume an authenticated admin caller.

type contentItemBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Segment     string `json:"segment"`
	MediaType   string `json:"media_type"`
	MediaURL    string `json:"media_url"`
	Body        string `json:"body"`
	IsPublished *bool  `json:"is_published"`
}

// HandleAdminContentList returns all content items including unpublished.
func HandleAdminContentList(c *fiber.Ctx) error {
	items, err := repository.GetGlobalFactory().GetContentRepository().ListAll()
	if err != nil {
		log.Printf("admin content list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": items})
}

// HandleAdminContentCreate creates a content item.
func HandleAdminContentCreate(c *fiber.Ctx) error {
	var body contentItemBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item := &models.ContentItem{
		Title:       strings.TrimSpace(body.Title),
		Description: body.Description,
		Segment:     normalizeSegment(body.Segment),
		MediaType:   strings.ToLower(strings.TrimSpace(body.MediaType)),
		MediaURL:    strings.TrimSpace(body.MediaURL),
		Body:        body.Body,
		IsPublished: true,
	}
	if body.IsPublished != nil {
		item.IsPublished = *body.IsPublished
	}
	if err := item.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := repository.GetGlobalFactory().GetContentRepository().Create(item); err != nil {
		log.Printf("content create failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not create content")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}

// HandleAdminContentUpdate updates an existing item in place.
func HandleAdminContentUpdate(c *fiber.Ctx) error {
	id := parsePositiveInt(c.Params("id"), 0)
	if id == 0 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid content id")
	}

	contents := repository.GetGlobalFactory().GetContentRepository()
	item, err := contents.GetByID(uint(id))
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "Content not found")
	}

	var body contentItemBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if title := strings.TrimSpace(body.Title); title != "" {
		item.Title = title
	}
	if body.Description != "" {
		item.Description = body.Description
	}
	if body.Segment != "" {
		item.Segment = normalizeSegment(body.Segment)
	}
	if mt := strings.ToLower(strings.TrimSpace(body.MediaType)); mt != "" {
		item.MediaType = mt
	}
	if u := strings.TrimSpace(body.MediaURL); u != "" {
		item.MediaURL = u
	}
	if body.Body != "" {
		item.Body = body.Body
	}
	if body.IsPublished != nil {
		item.IsPublished = *body.IsPublished
	}
	if err := item.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := contents.Update(item); err != nil {
		log.Printf("content update failed for id=%d: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not update content")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"item": item})
}

// HandleAdminContentDelete soft deletes an item.
func HandleAdminContentDelete(c *fiber.Ctx) error {
	id := parsePositiveInt(c.Params("id"), 0)
	if id == 0 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid content id")
	}
	if err := repository.GetGlobalFactory().GetContentRepository().Delete(uint(id)); err != nil {
		log.Printf("content delete failed for id=%d: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not delete content")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

type liveSessionBody struct {
	Title      string     `json:"title"`
	StartsAt   time.Time  `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
	Timezone   string     `json:"timezone"`
	Segment    string     `json:"segment"`
	YoutubeURL string     `json:"youtube_url"`
	TwilioRoom string     `json:"twilio_room"`
}

// HandleAdminLiveSessionGet returns the currently active session, if any.
func HandleAdminLiveSessionGet(c *fiber.Ctx) error {
	sess, err := repository.GetGlobalFactory().GetLiveSessionRepository().GetActive()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"session": nil})
		}
		log.Printf("live session lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"session": sess})
}

// HandleAdminLiveSessionSet schedules a new broadcast. The previous active
// session is deactivated in the same transaction as the insert.
func HandleAdminLiveSessionSet(c *fiber.Ctx) error {
	var body liveSessionBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(body.Title) == "" {
		return jsonError(c, fiber.StatusBadRequest, "Title is required")
	}
	if body.StartsAt.IsZero() {
		return jsonError(c, fiber.StatusBadRequest, "starts_at is required")
	}
	if strings.TrimSpace(body.YoutubeURL) == "" && strings.TrimSpace(body.TwilioRoom) == "" {
		return jsonError(c, fiber.StatusBadRequest, "Provide a YouTube URL or a Twilio room")
	}

	sess := &models.LiveSession{
		Title:      strings.TrimSpace(body.Title),
		StartsAt:   body.StartsAt,
		EndsAt:     body.EndsAt,
		Timezone:   strings.TrimSpace(body.Timezone),
		Status:     models.LiveSessionStatusScheduled,
		Active:     true,
		Segment:    normalizeSegment(body.Segment),
		YoutubeURL: strings.TrimSpace(body.YoutubeURL),
		TwilioRoom: strings.TrimSpace(body.TwilioRoom),
	}
	if sess.Timezone == "" {
		sess.Timezone = "Africa/Lagos"
	}

	if err := repository.GetGlobalFactory().GetLiveSessionRepository().Activate(sess); err != nil {
		log.Printf("live session activate failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not schedule session")
	}
	invalidateLiveSessionCache()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": sess})
}

// HandleAdminLiveSessionEnd deactivates the current broadcast.
func HandleAdminLiveSessionEnd(c *fiber.Ctx) error {
	if err := repository.GetGlobalFactory().GetLiveSessionRepository().Deactivate(); err != nil {
		log.Printf("live session deactivate failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not end session")
	}
	invalidateLiveSessionCache()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

func invalidateLiveSessionCache() {
	if err := cache.Delete(liveSessionCacheKey); err != nil {
		log.Printf("live session cache invalidation failed: %v", err)
	}
}

type messageBody struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Segment   string `json:"segment"`
	Published *bool  `json:"published"`
}

// HandleAdminMessageList returns all broadcasts including unpublished.
func HandleAdminMessageList(c *fiber.Ctx) error {
	msgs, err := repository.GetGlobalFactory().GetMessageRepository().ListAll()
	if err != nil {
		log.Printf("admin message list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"messages": msgs})
}

// HandleAdminMessageCreate creates a broadcast.
func HandleAdminMessageCreate(c *fiber.Ctx) error {
	var body messageBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(body.Title) == "" || strings.TrimSpace(body.Body) == "" {
		return jsonError(c, fiber.StatusBadRequest, "Title and body are required")
	}

	msg := &models.Message{
		Title:     strings.TrimSpace(body.Title),
		Body:      body.Body,
		Segment:   normalizeSegment(body.Segment),
		Published: true,
	}
	if body.Published != nil {
		msg.Published = *body.Published
	}
	if err := repository.GetGlobalFactory().GetMessageRepository().Create(msg); err != nil {
		log.Printf("message create failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not create message")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

// HandleAdminMessageUpdate updates a broadcast.
func HandleAdminMessageUpdate(c *fiber.Ctx) error {
	id := parsePositiveInt(c.Params("id"), 0)
	if id == 0 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid message id")
	}

	messages := repository.GetGlobalFactory().GetMessageRepository()
	msg, err := messages.GetByID(uint(id))
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "Message not found")
	}

	var body messageBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if title := strings.TrimSpace(body.Title); title != "" {
		msg.Title = title
	}
	if body.Body != "" {
		msg.Body = body.Body
	}
	if body.Segment != "" {
		msg.Segment = normalizeSegment(body.Segment)
	}
	if body.Published != nil {
		msg.Published = *body.Published
	}
	if err := messages.Update(msg); err != nil {
		log.Printf("message update failed for id=%d: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not update message")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": msg})
}

// HandleAdminMessageDelete soft deletes a broadcast.
func HandleAdminMessageDelete(c *fiber.Ctx) error {
	id := parsePositiveInt(c.Params("id"), 0)
	if id == 0 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid message id")
	}
	if err := repository.GetGlobalFactory().GetMessageRepository().Delete(uint(id)); err != nil {
		log.Printf("message delete failed for id=%d: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not delete message")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleAdminBotCredentialList returns submissions awaiting review.
func HandleAdminBotCredentialList(c *fiber.Ctx) error {
	pending, err := repository.GetGlobalFactory().GetBotCredentialRepository().ListPending()
	if err != nil {
		log.Printf("bot credential list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"credentials": pending})
}

type botReviewBody struct {
	Status string `json:"status"`
}

// HandleAdminBotCredentialReview activates or rejects a submission.
func HandleAdminBotCredentialReview(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Params("uuid"))
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "Invalid submission token")
	}

	var body botReviewBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	status := strings.ToLower(strings.TrimSpace(body.Status))
	if status != models.BotCredentialStatusActive && status != models.BotCredentialStatusRejected {
		return jsonError(c, fiber.StatusBadRequest, "Status must be active or rejected")
	}

	creds := repository.GetGlobalFactory().GetBotCredentialRepository()
	if _, err := creds.GetByUUID(token); err != nil {
		return jsonError(c, fiber.StatusNotFound, "Submission not found")
	}
	if err := creds.UpdateStatus(token, status); err != nil {
		log.Printf("bot credential review failed for uuid=%s: %v", token, err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not update submission")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "status": status})
}

// HandleAdminSubscriptionList pages through subscription rows.
func HandleAdminSubscriptionList(c *fiber.Ctx) error {
	limit := parsePositiveInt(c.Query("limit"), 50)
	page := parsePositiveInt(c.Query("page"), 1)

	subs, total, err := repository.GetGlobalFactory().GetSubscriptionRepository().List(limit, (page-1)*limit)
	if err != nil {
		log.Printf("subscription list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"subscriptions": subs,
		"total":         total,
		"page":          page,
	})
}

// HandleAdminUserList pages through accounts.
func HandleAdminUserList(c *fiber.Ctx) error {
	limit := parsePositiveInt(c.Query("limit"), 50)
	page := parsePositiveInt(c.Query("page"), 1)

	users, total, err := repository.GetGlobalFactory().GetUserRepository().List(limit, (page-1)*limit)
	if err != nil {
		log.Printf("user list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
	})
}

type grantRoleBody struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleAdminGrantRole manually assigns a role, for comped accounts and
// support escalations. The change bypasses the payment ledger on purpose.
func HandleAdminGrantRole(c *fiber.Ctx) error {
	var body grantRoleBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	role := strings.ToLower(strings.TrimSpace(body.Role))
	if !models.IsKnownRole(role) {
		return jsonError(c, fiber.StatusBadRequest, "Unknown role")
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return jsonError(c, fiber.StatusBadRequest, "Email is required")
	}

	users := repository.GetGlobalFactory().GetUserRepository()
	user, err := users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "User not found")
		}
		log.Printf("user lookup failed for email=%s: %v", email, err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	if err := users.UpdateRole(user.ID, role); err != nil {
		log.Printf("role grant failed for user=%d role=%s: %v", user.ID, role, err)
		return jsonError(c, fiber.StatusInternalServerError, "Could not update role")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "role": role})
}

// HandleAdminPaymentList returns the most recent ledger entries.
func HandleAdminPaymentList(c *fiber.Ctx) error {
	limit := parsePositiveInt(c.Query("limit"), 100)
	payments, err := repository.GetGlobalFactory().GetPaymentRepository().ListRecent(limit)
	if err != nil {
		log.Printf("payment list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"payments": payments})
}

// normalizeSegment maps empty or unknown segments to "all"; known tier ids
// pass through lowercased.
func normalizeSegment(segment string) string {
	s := strings.ToLower(strings.TrimSpace(segment))
	if s == "" {
		return models.SegmentAll
	}
	if s == models.SegmentAll {
		return s
	}
	if _, ok := tiers.ByID(s); ok {
		return s
	}
	return models.SegmentAll
}
