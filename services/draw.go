package services

import (
	"errors"
	"log"
	"math/rand"
	"strings"
	"time"

	"contest-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DrawService struct {
	DB     *gorm.DB
	Points *PointsService
}

func NewDrawService(db *gorm.DB, points *PointsService) *DrawService {
	return &DrawService{DB: db, Points: points}
}

// pickWinner selects one participant uniformly at random. Every entry has
// equal probability 1/N; no weighting by score or attempts.
func pickWinner(pool []models.Participant) models.Participant {
	return pool[rand.Intn(len(pool))]
}

// EligiblePool returns the participants who may win contestID's draw:
// completed the quiz at or above the contest's eligibility threshold and not
// already in a terminal status.
func (s *DrawService) EligiblePool(contestID string) ([]models.Participant, error) {
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", contestID).Error; err != nil {
		return nil, err
	}

	var pool []models.Participant
	err := s.DB.Where("contest_id = ? AND status = ? AND score >= ?",
		contestID, models.ParticipantStatusCompleted, contest.EligibilityThreshold).
		Find(&pool).Error
	return pool, err
}

// PerformDraw selects exactly one winner for the contest, exactly once.
// The winner status update and the draw-history insert commit together; the
// unique index on draw_history_entries.contest_id turns a double-draw race
// into ErrAlreadyDrawn for the loser.
func (s *DrawService) PerformDraw(contestID string) (*models.Participant, error) {
	var existing int64
	if err := s.DB.Model(&models.Participant{}).
		Where("contest_id = ? AND status = ?", contestID, models.ParticipantStatusWinner).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyDrawn
	}

	pool, err := s.EligiblePool(contestID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrNoEligibleParticipants
	}

	winner := pickWinner(pool)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// The history insert goes first: its unique contest_id index is the
		// authoritative at-most-once guard under concurrency.
		entry := models.DrawHistoryEntry{
			ID:             uuid.NewString(),
			ContestID:      contestID,
			ParticipantID:  winner.ID,
			ExternalUserID: winner.ExternalUserID,
			DrawDate:       time.Now().UTC(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyDrawn
			}
			return err
		}

		res := tx.Model(&models.Participant{}).
			Where("id = ? AND status = ?", winner.ID, models.ParticipantStatusCompleted).
			Update("status", models.ParticipantStatusWinner)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyDrawn
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	winner.Status = models.ParticipantStatusWinner

	// Winner points are a best-effort side effect, like the notification
	// dispatch: the draw stays durable even if this write fails.
	if s.Points != nil {
		if _, err := s.Points.AwardPoints(winner.ExternalUserID, Award{
			Reason:    models.AwardReasonWinner,
			ContestID: &contestID,
		}); err != nil {
			log.Printf("⚠️ Winner points award failed for %s: %v", winner.ExternalUserID, err)
		}
	}

	log.Printf("🎉 Draw completed: contest=%s winner=%s (code %s)", contestID, winner.ExternalUserID, winner.ParticipationCode)
	return &winner, nil
}

// PublishResults marks the contest's draw results as publicly visible.
// Idempotent: re-publishing an already-published contest is a no-op.
func (s *DrawService) PublishResults(contestID string) (*models.Contest, error) {
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", contestID).Error; err != nil {
		return nil, err
	}
	if contest.ResultsPublished {
		return &contest, nil
	}

	now := time.Now().UTC()
	if err := s.DB.Model(&models.Contest{}).
		Where("id = ? AND results_published = ?", contestID, false).
		Updates(map[string]interface{}{
			"results_published":    true,
			"results_published_at": now,
		}).Error; err != nil {
		return nil, err
	}

	contest.ResultsPublished = true
	contest.ResultsPublishedAt = &now
	return &contest, nil
}

// GetDrawHistory returns the draw record for a contest, if any.
func (s *DrawService) GetDrawHistory(contestID string) (*models.DrawHistoryEntry, error) {
	var entry models.DrawHistoryEntry
	err := s.DB.Where("contest_id = ?", contestID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// isUniqueViolation matches duplicate-key failures across the drivers we run
// on (Postgres 23505 in production, sqlite UNIQUE errors in tests).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "23505")
}
