package models

import (
	"time"
)

// DrawHistoryEntry is the append-only audit record of a completed draw.
// The unique index on ContestID is the at-most-once guarantee: whatever two
// concurrent draws believe, only one row can ever exist per contest.
type DrawHistoryEntry struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ContestID      string    `gorm:"uniqueIndex;not null" json:"contest_id"`
	ParticipantID  string    `gorm:"index;not null" json:"participant_id"`
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	DrawDate       time.Time `json:"draw_date" gorm:"autoCreateTime"`

	// Winner-notification dispatch bookkeeping. Delivery is best-effort and
	// never part of the draw transaction.
	NotifiedAt *time.Time `json:"notified_at,omitempty" gorm:"index"`
}
