package models

import (
	"time"
)

// ParticipantStatus transitions: pending → completed → winner.
// Disqualified participants never enter the draw pool.
const (
	ParticipantStatusPending      = "pending"
	ParticipantStatusCompleted    = "completed"
	ParticipantStatusWinner       = "winner"
	ParticipantStatusDisqualified = "disqualified"
)

// Participant is one user's entry in one contest. Created lazily on first
// questionnaire access; at most one row per (user, contest) pair.
type Participant struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index:idx_participant_user_contest,unique;not null" json:"external_user_id"`
	ContestID      string `gorm:"index:idx_participant_user_contest,unique;index;not null" json:"contest_id"`

	// ParticipationCode is the human-facing entry identifier printed on
	// tickets/emails. Generated with bounded collision retries.
	ParticipationCode string `gorm:"uniqueIndex;not null" json:"participation_code"`

	Status string `gorm:"type:varchar(16);default:'pending'" json:"status"`

	// Quiz outcome
	Score       int        `gorm:"default:0" json:"score"` // 0-100, best across attempts
	Attempts    int        `gorm:"default:0" json:"attempts"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Timestamps
}
