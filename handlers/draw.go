// handlers/draw.go
package handlers

import (
	"errors"

	"contest-platform/middleware"
	"contest-platform/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupDrawRoutes(app *fiber.App, drawService *services.DrawService) {
	secured := app.Group("/", middleware.UserContextMiddleware())
	admin := secured.Group("/admin", middleware.RequireAdmin())

	// Run the prize draw for a contest. At-most-once per contest.
	admin.Post("/contests/:id/draw", func(c *fiber.Ctx) error {
		contestID := c.Params("id")

		winner, err := drawService.PerformDraw(contestID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrAlreadyDrawn):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
			case errors.Is(err, services.ErrNoEligibleParticipants):
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
			case errors.Is(err, gorm.ErrRecordNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "draw failed",
					"cause": err.Error(),
				})
			}
		}

		return c.JSON(fiber.Map{
			"message": "winner selected",
			"winner":  winner,
		})
	})

	// Preview the eligible pool before drawing.
	admin.Get("/contests/:id/draw/pool", func(c *fiber.Ctx) error {
		contestID := c.Params("id")
		pool, err := drawService.EligiblePool(contestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to build eligible pool"})
		}
		return c.JSON(fiber.Map{
			"eligible_count": len(pool),
			"participants":   pool,
		})
	})

	// Make draw results publicly visible. Idempotent.
	admin.Post("/contests/:id/results/publish", func(c *fiber.Ctx) error {
		contestID := c.Params("id")
		contest, err := drawService.PublishResults(contestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to publish results"})
		}
		return c.JSON(contest)
	})

	// Audit record of a contest's draw.
	admin.Get("/contests/:id/draw/history", func(c *fiber.Ctx) error {
		contestID := c.Params("id")
		entry, err := drawService.GetDrawHistory(contestID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch draw history"})
		}
		if entry == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no draw has been performed for this contest"})
		}
		return c.JSON(entry)
	})
}
