package models

import (
	"time"
)

// Question is a single entry in a contest's question bank.
// CorrectOption is the index into Options and must never be serialized
// to a non-admin caller; the public projection is PublicQuestion.
type Question struct {
	ID        string `json:"id" gorm:"primaryKey"`
	ContestID string `json:"contest_id" gorm:"not null;index"`
	Text      string `json:"text" gorm:"type:text;not null"`

	OptionA string `json:"option_a" gorm:"not null"`
	OptionB string `json:"option_b" gorm:"not null"`
	OptionC string `json:"option_c"`
	OptionD string `json:"option_d"`

	// 0 = A, 1 = B, 2 = C, 3 = D
	CorrectOption int `json:"correct_option" gorm:"not null"`

	SortOrder int       `json:"sort_order" gorm:"column:sort_order;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Options returns the non-empty option texts in display order.
func (q *Question) Options() []string {
	opts := []string{q.OptionA, q.OptionB}
	if q.OptionC != "" {
		opts = append(opts, q.OptionC)
	}
	if q.OptionD != "" {
		opts = append(opts, q.OptionD)
	}
	return opts
}

// PublicQuestion is the participant-facing projection (no answer key).
type PublicQuestion struct {
	ID        string   `json:"id"`
	ContestID string   `json:"contest_id"`
	Text      string   `json:"text"`
	Options   []string `json:"options"`
	SortOrder int      `json:"sort_order"`
}

// Public strips the answer key off a question.
func (q *Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:        q.ID,
		ContestID: q.ContestID,
		Text:      q.Text,
		Options:   q.Options(),
		SortOrder: q.SortOrder,
	}
}

// SubmittedAnswer is one answer in a quiz submission.
type SubmittedAnswer struct {
	QuestionID string `json:"question_id"`
	Option     int    `json:"option"`
}
