// handlers/points_routes.go
package handlers

import (
	"strconv"

	"contest-platform/middleware"
	"contest-platform/models"
	"contest-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPointsRoutes(app *fiber.App, pointsService *services.PointsService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/points", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		up, err := pointsService.EnsurePointsRecord(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load points record",
				"cause": err.Error(),
			})
		}

		currentTier := services.RankForPoints(up.TotalPoints)
		shareCount, err := pointsService.MonthlyShareCount(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to count shares",
				"cause": err.Error(),
			})
		}

		response := fiber.Map{
			"id":                    up.ID,
			"total_points":          up.TotalPoints,
			"current_rank":          up.CurrentRank,
			"rank_badge":            currentTier.Badge,
			"rank_description":      currentTier.Description,
			"rank_benefits":         currentTier.Benefits,
			"progress_to_next_rank": services.ProgressToNextRank(up.TotalPoints),
			"current_streak":        up.CurrentStreak,
			"best_streak":           up.BestStreak,
			"extra_participations":  up.ExtraParticipations,
			"monthly_shares":        shareCount,
			"monthly_share_cap":     services.MonthlyShareCap,
		}

		if next, ok := services.NextRank(up.TotalPoints); ok {
			response["next_rank"] = next.Rank
			response["points_to_next_rank"] = next.MinPoints - up.TotalPoints
		}

		return c.JSON(response)
	})

	securedGroup.Get("/user/points/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))

		entries, total, err := pointsService.GetHistory(userID, page, size)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get history",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"entries":     entries,
			"page":        page,
			"size":        size,
			"total_items": total,
		})
	})

	securedGroup.Get("/ranks", func(c *fiber.Ctx) error {
		return c.JSON(models.RankCatalog)
	})

	// Social share: capped per month, zero-point outcome past the cap.
	securedGroup.Post("/user/shares", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		if _, err := pointsService.EnsurePointsRecord(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to prepare points record",
				"cause": err.Error(),
			})
		}

		result, err := pointsService.AwardPoints(userID, services.Award{
			Reason: models.AwardReasonSocialShare,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "share award failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	// Contest share: flat points plus one extra quiz attempt.
	securedGroup.Post("/contests/:id/share", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		contestID := c.Params("id")

		if _, err := pointsService.EnsurePointsRecord(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to prepare points record",
				"cause": err.Error(),
			})
		}

		result, err := pointsService.AwardPoints(userID, services.Award{
			Reason:    models.AwardReasonContestShare,
			ContestID: &contestID,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "contest share award failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	// Admin endpoints
	adminGroup := securedGroup.Group("/admin", middleware.RequireAdmin())

	adminGroup.Post("/points/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
			Points int64  `json:"points"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" || req.Points == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id and a non-zero points amount are required",
			})
		}

		if _, err := pointsService.EnsurePointsRecord(req.UserID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to prepare points record",
				"cause": err.Error(),
			})
		}

		result, err := pointsService.AwardPoints(req.UserID, services.Award{
			Reason: models.AwardReasonAdminGrant,
			Points: req.Points,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "points grant failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message": "points granted successfully",
			"user_id": req.UserID,
			"points":  result.PointsAwarded,
		})
	})
}
