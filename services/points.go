package services

import (
	"fmt"
	"log"
	"time"

	"contest-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PointWeights define nominal point values per award reason (tunable via config/env later)
type PointWeights struct {
	CorrectAnswer  int64
	Welcome        int64
	Participation  int64
	SocialShare    int64
	ContestShare   int64
	Winner         int64
	StreakBonus    int64
	ShareMilestone int64
}

var DefaultPointWeights = PointWeights{
	CorrectAnswer:  1,
	Welcome:        25,
	Participation:  5,
	SocialShare:    5,
	ContestShare:   10,
	Winner:         100,
	StreakBonus:    10,
	ShareMilestone: 15,
}

const (
	// StreakBonusEvery: every Nth consecutive correct answer earns a bonus ledger row.
	StreakBonusEvery = 5
	// MonthlyShareCap: rewarded social shares per calendar month. Shares past
	// the cap are a normal zero-point outcome, not an error.
	MonthlyShareCap = 10
	// ShareMilestoneCount: the share that brings the month's count to exactly
	// this value earns a one-time flat bonus.
	ShareMilestoneCount = 5
	// ContestShareExtraAttempts granted per contest share.
	ContestShareExtraAttempts = 1
)

// Award describes one point-award event. Points may be zero to use the
// nominal weight for the reason.
type Award struct {
	Reason    models.AwardReason
	Points    int64
	ContestID *string
}

// AwardResult is the caller-facing outcome of AwardPoints.
type AwardResult struct {
	PointsAwarded int64              `json:"points_awarded"`
	Capped        bool               `json:"capped"`
	Points        *models.UserPoints `json:"points"`
}

type PointsService struct {
	DB      *gorm.DB
	Weights PointWeights
}

func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{DB: db, Weights: DefaultPointWeights}
}

// EnsurePointsRecord ensures a UserPoints row exists (idempotent)
func (s *PointsService) EnsurePointsRecord(externalUserID string) (*models.UserPoints, error) {
	var up models.UserPoints
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&up).Error
	if err == gorm.ErrRecordNotFound {
		up = models.UserPoints{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			TotalPoints:    0,
			CurrentRank:    models.RankNovato,
		}
		if err := s.DB.Create(&up).Error; err != nil {
			// Concurrent first award for the same user: the unique index on
			// external_user_id makes one creator win; re-read the row it wrote.
			if isUniqueViolation(err) {
				if err2 := s.DB.Where("external_user_id = ?", externalUserID).First(&up).Error; err2 == nil {
					return &up, nil
				}
			}
			return nil, err
		}
		return &up, nil
	}
	if err != nil {
		return nil, err
	}
	return &up, nil
}

// AwardPoints applies one award event atomically: ledger rows, total, streak
// and the cached rank all change together or not at all. Awards are additive
// by design — repeated calls are never deduplicated.
func (s *PointsService) AwardPoints(externalUserID string, award Award) (*AwardResult, error) {
	if !award.Reason.Valid() {
		return nil, fmt.Errorf("unknown award reason %q", award.Reason)
	}

	var result *AwardResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Row lock: two simultaneous awards for the same user must serialize,
		// or the second one clobbers the first one's streak and attempt
		// counters on the final write-back.
		var up models.UserPoints
		if err := lockForUpdate(tx).Where("external_user_id = ?", externalUserID).First(&up).Error; err != nil {
			return fmt.Errorf("points record not found for %s", externalUserID)
		}

		delta := award.Points
		var entries []models.PointHistoryEntry

		switch award.Reason {
		case models.AwardReasonCorrectAnswer:
			if delta <= 0 {
				delta = s.Weights.CorrectAnswer
			}
			up.CurrentStreak++
			if up.CurrentStreak > up.BestStreak {
				up.BestStreak = up.CurrentStreak
			}
			entries = append(entries, s.entry(externalUserID, delta, award.Reason, up.CurrentStreak, award.ContestID))
			if up.CurrentStreak%StreakBonusEvery == 0 {
				entries = append(entries, s.entry(externalUserID, s.Weights.StreakBonus, models.AwardReasonStreakBonus, up.CurrentStreak, award.ContestID))
				delta += s.Weights.StreakBonus
			}

		case models.AwardReasonIncorrectAnswer:
			// Fold the streak into the best-streak record, then reset. No points move.
			if up.CurrentStreak > up.BestStreak {
				up.BestStreak = up.CurrentStreak
			}
			up.CurrentStreak = 0
			if err := tx.Model(&models.UserPoints{}).
				Where("external_user_id = ?", externalUserID).
				Updates(map[string]interface{}{
					"current_streak": up.CurrentStreak,
					"best_streak":    up.BestStreak,
				}).Error; err != nil {
				return err
			}
			result = &AwardResult{PointsAwarded: 0, Points: &up}
			return nil

		case models.AwardReasonSocialShare:
			// Re-count inside the transaction so two simultaneous shares
			// cannot slip past the cap together.
			monthStart := startOfMonth(time.Now().UTC())
			var shareCount int64
			if err := tx.Model(&models.PointHistoryEntry{}).
				Where("external_user_id = ? AND reason = ? AND created_at >= ?",
					externalUserID, models.AwardReasonSocialShare, monthStart).
				Count(&shareCount).Error; err != nil {
				return err
			}
			if shareCount >= MonthlyShareCap {
				result = &AwardResult{PointsAwarded: 0, Capped: true, Points: &up}
				return nil
			}
			if delta <= 0 {
				delta = s.Weights.SocialShare
			}
			entries = append(entries, s.entry(externalUserID, delta, award.Reason, up.CurrentStreak, award.ContestID))
			if shareCount+1 == ShareMilestoneCount {
				entries = append(entries, s.entry(externalUserID, s.Weights.ShareMilestone, models.AwardReasonShareMilestone, up.CurrentStreak, award.ContestID))
				delta += s.Weights.ShareMilestone
			}

		case models.AwardReasonContestShare:
			if delta <= 0 {
				delta = s.Weights.ContestShare
			}
			up.ExtraParticipations += ContestShareExtraAttempts
			entries = append(entries, s.entry(externalUserID, delta, award.Reason, up.CurrentStreak, award.ContestID))

		case models.AwardReasonWelcome:
			if delta <= 0 {
				delta = s.Weights.Welcome
			}
			entries = append(entries, s.entry(externalUserID, delta, award.Reason, up.CurrentStreak, award.ContestID))

		case models.AwardReasonParticipation:
			if delta <= 0 {
				delta = s.Weights.Participation
			}
			entries = append(entries, s.entry(externalUserID, delta, award.Reason, up.CurrentStreak, award.ContestID))

		case models.AwardReasonWinner:
			if delta <= 0 {
				delta = s.Weights.Winner
			}
			entries = append(entries, s.entry(externalUserID, delta, award.Reason, up.CurrentStreak, award.ContestID))

		case models.AwardReasonAdminGrant:
			if delta == 0 {
				return fmt.Errorf("admin grant requires an explicit point amount")
			}
			entries = append(entries, s.entry(externalUserID, delta, award.Reason, up.CurrentStreak, award.ContestID))

		default:
			return fmt.Errorf("unhandled award reason %q", award.Reason)
		}

		for i := range entries {
			if err := tx.Create(&entries[i]).Error; err != nil {
				return err
			}
		}

		// Atomic increment: concurrent awards for the same user must not lose
		// an update on total_points.
		if err := tx.Model(&models.UserPoints{}).
			Where("external_user_id = ?", externalUserID).
			UpdateColumn("total_points", gorm.Expr("total_points + ?", delta)).Error; err != nil {
			return err
		}

		var fresh models.UserPoints
		if err := tx.Where("external_user_id = ?", externalUserID).First(&fresh).Error; err != nil {
			return err
		}

		newRank := RankForPoints(fresh.TotalPoints).Rank
		updates := map[string]interface{}{
			"current_rank":         newRank,
			"current_streak":       up.CurrentStreak,
			"best_streak":          up.BestStreak,
			"extra_participations": up.ExtraParticipations,
		}
		if err := tx.Model(&models.UserPoints{}).
			Where("external_user_id = ?", externalUserID).
			Updates(updates).Error; err != nil {
			return err
		}

		fresh.CurrentRank = newRank
		fresh.CurrentStreak = up.CurrentStreak
		fresh.BestStreak = up.BestStreak
		fresh.ExtraParticipations = up.ExtraParticipations

		result = &AwardResult{PointsAwarded: delta, Points: &fresh}

		log.Printf("🎯 Points awarded: %s → +%d (%s), total=%d, rank=%s, streak=%d",
			externalUserID, delta, award.Reason, fresh.TotalPoints, fresh.CurrentRank, fresh.CurrentStreak)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PointsService) entry(userID string, points int64, reason models.AwardReason, streak int, contestID *string) models.PointHistoryEntry {
	return models.PointHistoryEntry{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		Points:         points,
		Reason:         reason,
		Streak:         streak,
		ContestID:      contestID,
	}
}

// MonthlyShareCount returns the number of rewarded social shares in the
// current calendar month.
func (s *PointsService) MonthlyShareCount(externalUserID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.PointHistoryEntry{}).
		Where("external_user_id = ? AND reason = ? AND created_at >= ?",
			externalUserID, models.AwardReasonSocialShare, startOfMonth(time.Now().UTC())).
		Count(&count).Error
	return count, err
}

// GetHistory returns the point ledger for a user, newest first, paginated.
func (s *PointsService) GetHistory(externalUserID string, page, size int) ([]models.PointHistoryEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var total int64
	if err := s.DB.Model(&models.PointHistoryEntry{}).
		Where("external_user_id = ?", externalUserID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.PointHistoryEntry
	err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&entries).Error
	return entries, total, err
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// lockForUpdate takes a FOR UPDATE row lock on the selected rows. sqlite has
// no FOR UPDATE syntax; its single-writer model serializes these transactions
// at the database level.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
