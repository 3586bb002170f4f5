package models

import (
	"time"
)

// AwardReason is a closed enum of everything that can move a point balance.
// Award handling switches exhaustively over these values; there is no
// free-form reason string.
type AwardReason string

const (
	AwardReasonWelcome         AwardReason = "welcome"
	AwardReasonCorrectAnswer   AwardReason = "correct_answer"
	AwardReasonIncorrectAnswer AwardReason = "incorrect_answer"
	AwardReasonStreakBonus     AwardReason = "streak_bonus"
	AwardReasonParticipation   AwardReason = "participation"
	AwardReasonSocialShare     AwardReason = "social_share"
	AwardReasonShareMilestone  AwardReason = "share_milestone"
	AwardReasonContestShare    AwardReason = "contest_share"
	AwardReasonWinner          AwardReason = "winner"
	AwardReasonAdminGrant      AwardReason = "admin_grant"
)

// Valid reports whether r is one of the known award reasons.
func (r AwardReason) Valid() bool {
	switch r {
	case AwardReasonWelcome, AwardReasonCorrectAnswer, AwardReasonIncorrectAnswer,
		AwardReasonStreakBonus, AwardReasonParticipation, AwardReasonSocialShare,
		AwardReasonShareMilestone, AwardReasonContestShare, AwardReasonWinner,
		AwardReasonAdminGrant:
		return true
	}
	return false
}

// UserPoints tracks accumulated points for each user (denormalized for performance).
// CurrentRank is a cached projection of TotalPoints through the rank catalog
// and is recomputed inside the same transaction as every TotalPoints change.
type UserPoints struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	TotalPoints int64  `json:"total_points" gorm:"default:0"`
	CurrentRank RankID `json:"current_rank" gorm:"type:varchar(16);default:'NOVATO'"`

	// Streaks (consecutive correct answers within quiz sessions)
	CurrentStreak int `json:"current_streak" gorm:"default:0"`
	BestStreak    int `json:"best_streak" gorm:"default:0"`

	// Extra quiz attempts earned by sharing contests
	ExtraParticipations int `json:"extra_participations" gorm:"default:0"`

	Timestamps
}

// PointHistoryEntry is an append-only ledger record. Write-once; never
// mutated or deleted (audit trail).
type PointHistoryEntry struct {
	ID             string      `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string      `gorm:"index;not null" json:"external_user_id"`
	Points         int64       `json:"points"` // signed
	Reason         AwardReason `gorm:"type:varchar(24);index;not null" json:"reason"`
	Streak         int         `json:"streak" gorm:"default:0"`
	ContestID      *string     `gorm:"index" json:"contest_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at" gorm:"autoCreateTime;index"`
}
