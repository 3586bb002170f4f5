package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"contest-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// participationCodeRetries bounds the generate-then-verify loop for the
// human-facing entry code. Past the bound we fail loudly instead of looping.
const participationCodeRetries = 5

type ParticipationService struct {
	DB     *gorm.DB
	Points *PointsService
}

func NewParticipationService(db *gorm.DB, points *PointsService) *ParticipationService {
	return &ParticipationService{DB: db, Points: points}
}

// SubmissionResult summarizes one graded quiz attempt.
type SubmissionResult struct {
	Participant    *models.Participant `json:"participant"`
	CorrectAnswers int                 `json:"correct_answers"`
	TotalQuestions int                 `json:"total_questions"`
	Score          int                 `json:"score"`
	PointsAwarded  int64               `json:"points_awarded"`
	AttemptsLeft   int                 `json:"attempts_left"`
}

// EnsureParticipant returns the participant row for (user, contest), creating
// it on first questionnaire access with a collision-checked entry code.
func (s *ParticipationService) EnsureParticipant(externalUserID, contestID string) (*models.Participant, error) {
	var p models.Participant
	err := s.DB.Where("external_user_id = ? AND contest_id = ?", externalUserID, contestID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := s.generateParticipationCode()
	if err != nil {
		return nil, err
	}

	p = models.Participant{
		ID:                uuid.NewString(),
		ExternalUserID:    externalUserID,
		ContestID:         contestID,
		ParticipationCode: code,
		Status:            models.ParticipantStatusPending,
	}
	if err := s.DB.Create(&p).Error; err != nil {
		// Concurrent first access for the same (user, contest): the unique
		// pair index makes one creator win; re-read the row it wrote.
		if isUniqueViolation(err) {
			if err2 := s.DB.Where("external_user_id = ? AND contest_id = ?", externalUserID, contestID).First(&p).Error; err2 == nil {
				return &p, nil
			}
		}
		return nil, err
	}
	return &p, nil
}

// generateParticipationCode draws random 8-char codes and verifies uniqueness,
// retrying a bounded number of times.
func (s *ParticipationService) generateParticipationCode() (string, error) {
	for i := 0; i < participationCodeRetries; i++ {
		code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		var count int64
		if err := s.DB.Model(&models.Participant{}).
			Where("participation_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
		log.Printf("⚠️ Participation code collision (%s), retrying (%d/%d)", code, i+1, participationCodeRetries)
	}
	return "", ErrParticipationCodeExhausted
}

// AttemptBudget returns how many quiz attempts the user may make for the
// contest: the contest default plus earned extra participations.
func (s *ParticipationService) AttemptBudget(contest *models.Contest, externalUserID string) (int, error) {
	budget := contest.DefaultAttempts
	var up models.UserPoints
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&up).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	if err == nil {
		budget += up.ExtraParticipations
	}
	return budget, nil
}

// SubmitAnswers grades one quiz attempt, updates the participant row and
// drives the per-answer point awards. The attempt counter and score commit in
// one transaction; point awards follow it, one per real answer event.
func (s *ParticipationService) SubmitAnswers(externalUserID, contestID string, answers []models.SubmittedAnswer) (*SubmissionResult, error) {
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", contestID).Error; err != nil {
		return nil, err
	}
	if contest.Status != models.ContestStatusPublished {
		return nil, ErrContestNotOpen
	}
	now := time.Now()
	if now.Before(contest.StartTime) || (!contest.EndTime.IsZero() && now.After(contest.EndTime)) {
		return nil, ErrContestNotOpen
	}

	participant, err := s.EnsureParticipant(externalUserID, contestID)
	if err != nil {
		return nil, err
	}
	if participant.Status == models.ParticipantStatusDisqualified {
		return nil, ErrContestNotOpen
	}

	budget, err := s.AttemptBudget(&contest, externalUserID)
	if err != nil {
		return nil, err
	}
	if participant.Attempts >= budget {
		return nil, ErrAttemptLimitReached
	}

	var questions []models.Question
	if err := s.DB.Where("contest_id = ?", contestID).Order("sort_order ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("contest %s has no questions", contestID)
	}

	answerByQuestion := make(map[string]int, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a.Option
	}

	correct := 0
	graded := make([]bool, 0, len(questions))
	for _, q := range questions {
		opt, ok := answerByQuestion[q.ID]
		isCorrect := ok && opt == q.CorrectOption
		if isCorrect {
			correct++
		}
		graded = append(graded, isCorrect)
	}

	score := int(float64(correct) / float64(len(questions)) * 100)
	firstCompletion := participant.Status == models.ParticipantStatusPending

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"attempts": gorm.Expr("attempts + 1"),
			"status":   models.ParticipantStatusCompleted,
		}
		if score > participant.Score {
			updates["score"] = score
		}
		if firstCompletion {
			completedAt := time.Now().UTC()
			updates["completed_at"] = completedAt
			participant.CompletedAt = &completedAt
		}
		res := tx.Model(&models.Participant{}).
			Where("id = ? AND attempts < ?", participant.ID, budget).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		// A concurrent submission used the last attempt between our check and
		// this write.
		if res.RowsAffected == 0 {
			return ErrAttemptLimitReached
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	participant.Attempts++
	participant.Status = models.ParticipantStatusCompleted
	if score > participant.Score {
		participant.Score = score
	}

	// One award event per answered question. Each call is one real-world
	// event; the awards are additive and never deduplicated.
	var pointsAwarded int64
	for _, isCorrect := range graded {
		reason := models.AwardReasonIncorrectAnswer
		if isCorrect {
			reason = models.AwardReasonCorrectAnswer
		}
		res, err := s.Points.AwardPoints(externalUserID, Award{
			Reason:    reason,
			Points:    int64(contest.PointsPerQuestion),
			ContestID: &contestID,
		})
		if err != nil {
			return nil, err
		}
		pointsAwarded += res.PointsAwarded
	}

	if firstCompletion {
		res, err := s.Points.AwardPoints(externalUserID, Award{
			Reason:    models.AwardReasonParticipation,
			ContestID: &contestID,
		})
		if err != nil {
			return nil, err
		}
		pointsAwarded += res.PointsAwarded
	}

	return &SubmissionResult{
		Participant:    participant,
		CorrectAnswers: correct,
		TotalQuestions: len(questions),
		Score:          score,
		PointsAwarded:  pointsAwarded,
		AttemptsLeft:   budget - participant.Attempts,
	}, nil
}

// --- Fiber handlers ---

// StartParticipation creates (or returns) the caller's participant row for a
// contest, so the frontend gets the entry code on first questionnaire access.
func (s *ParticipationService) StartParticipation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	contestID := c.Params("id")

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", contestID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
	}
	if contest.Status != models.ContestStatusPublished {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "contest is not open for participation"})
	}

	if _, err := s.Points.EnsurePointsRecord(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to prepare points record", "cause": err.Error()})
	}

	participant, err := s.EnsureParticipant(userID, contestID)
	if err != nil {
		if errors.Is(err, ErrParticipationCodeExhausted) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create participation", "cause": err.Error()})
	}

	budget, err := s.AttemptBudget(&contest, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute attempt budget"})
	}

	return c.JSON(fiber.Map{
		"participant":   participant,
		"attempts_left": budget - participant.Attempts,
	})
}

// SubmitQuiz grades a quiz submission for the authenticated user.
func (s *ParticipationService) SubmitQuiz(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	contestID := c.Params("id")

	var req struct {
		Answers []models.SubmittedAnswer `json:"answers"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if len(req.Answers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "answers are required"})
	}

	if _, err := s.Points.EnsurePointsRecord(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to prepare points record", "cause": err.Error()})
	}

	result, err := s.SubmitAnswers(userID, contestID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, ErrAttemptLimitReached):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrContestNotOpen):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contest not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "submission failed", "cause": err.Error()})
		}
	}

	return c.JSON(result)
}

// GetMyParticipation returns the caller's participation for a contest.
func (s *ParticipationService) GetMyParticipation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	contestID := c.Params("id")

	var p models.Participant
	if err := s.DB.Where("external_user_id = ? AND contest_id = ?", userID, contestID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no participation for this contest"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(p)
}
