package handlers

import (
	"contest-platform/middleware"
	"contest-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupContestRoutes(app *fiber.App, contestService *services.ContestService, prizeService *services.PrizeService, participationService *services.ParticipationService) {
	// 🔓 Public routes for users (only published contests)
	app.Get("/contests/published", contestService.GetPublishedContests)
	app.Get("/contests/published/:id", contestService.GetPublishedContestByID)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Participation (any authenticated user)
	secured.Post("/contests/:id/participate", participationService.StartParticipation)
	secured.Post("/contests/:id/submit", participationService.SubmitQuiz)
	secured.Get("/contests/:id/participation", participationService.GetMyParticipation)

	// Prizes won by the authenticated user
	secured.Get("/users/me/prizes", prizeService.GetUserPrizes)
	secured.Get("/users/me/prizes/counts", prizeService.GetUserPrizeCounts)
	secured.Post("/prizes/:id/claim", prizeService.ClaimPrize)
	secured.Patch("/prizes/:id/viewed", prizeService.MarkPrizeAsViewed)

	// 🔒 Admin-only routes
	admin := secured.Group("/admin", middleware.RequireAdmin())

	// Contest CRUD
	admin.Post("/contests", contestService.CreateContest)
	admin.Get("/contests", contestService.GetAllContests)
	admin.Get("/contests/mini", contestService.GetAllContestsMini)
	admin.Get("/contests/:id", contestService.GetContestByID)
	admin.Put("/contests/:id", contestService.UpdateContest)
	admin.Delete("/contests/:id", contestService.DeleteContest)

	// Contest status management
	admin.Patch("/contests/:id/status", contestService.UpdateContestStatus)
	admin.Post("/contests/:id/publish/now", contestService.PublishNow)
	admin.Post("/contests/:id/publish/schedule", contestService.SchedulePublish)
	admin.Post("/contests/:id/publish/cancel", contestService.CancelScheduledPublish)

	// Question bank
	admin.Get("/contests/:id/questions", contestService.GetContestQuestions)
	admin.Post("/contests/:id/questions", contestService.AddQuestion)
	admin.Put("/questions/:question_id", contestService.UpdateQuestion)
	admin.Delete("/questions/:question_id", contestService.DeleteQuestion)

	// Prize catalog
	admin.Post("/prizes", prizeService.CreatePrize)
	admin.Get("/prizes", prizeService.GetAllPrizes)
	admin.Put("/prizes/:id", prizeService.UpdatePrize)
	admin.Delete("/prizes/:id", prizeService.DeletePrize)
	admin.Post("/contests/:id/prizes/assign", prizeService.AssignPrizeToWinner)
}
