package handlers

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tokenpulse/community-api/internal/service"
)

// CycleRunner triggers one synchronous curation cycle.
type CycleRunner interface {
	Run(ctx context.Context) (int64, error)
}

type CommunityHandler struct {
	s      service.FeedService
	runner CycleRunner
}

func NewCommunityHandler(s service.FeedService, runner CycleRunner) *CommunityHandler {
	return &CommunityHandler{s: s, runner: runner}
}

// GetBatches returns selected tweets newest-first, offset by cursor.
func (h *CommunityHandler) GetBatches(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	var cursor int64
	if raw := c.Query("cursor"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid cursor parameter",
			})
		}
		cursor = parsed
	}

	tweets, err := h.s.ListTweets(c.Context(), limit, cursor)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list batches",
		})
	}

	return c.Status(fiber.StatusOK).JSON(tweets)
}

// GetBatchTweets returns one batch's tweets in insertion order.
func (h *CommunityHandler) GetBatchTweets(c *fiber.Ctx) error {
	batchID, err := strconv.ParseInt(c.Params("batch_id"), 10, 64)
	if err != nil || batchID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid batch id",
		})
	}

	tweets, err := h.s.TweetsByBatch(c.Context(), batchID)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list batch tweets",
		})
	}

	return c.Status(fiber.StatusOK).JSON(tweets)
}

// GetCursor returns the high-water mark for a fresh pagination walk.
func (h *CommunityHandler) GetCursor(c *fiber.Ctx) error {
	cursor, err := h.s.LatestCursor(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to get cursor",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"cursor": cursor})
}

// Refresh runs one curation cycle synchronously, for operational testing.
func (h *CommunityHandler) Refresh(c *fiber.Ctx) error {
	batchID, err := h.runner.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Curation cycle failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  "Curation cycle completed",
		"batch_id": batchID,
	})
}
