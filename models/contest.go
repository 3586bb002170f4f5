package models

import (
	"time"
)

// ContestStatus values (publishing lifecycle, same as the admin UI filters)
const (
	ContestStatusDraft     = "draft"
	ContestStatusScheduled = "scheduled"
	ContestStatusPublished = "published"
	ContestStatusArchived  = "archived"
)

// Contest represents a quiz-based sweepstakes contest
type Contest struct {
	ID           string `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null"`
	Slug         string `json:"slug" gorm:"index"`
	Description  string `json:"description"`
	Rules        string `json:"rules"`
	MainPhotoURL string `json:"main_photo_url"`
	SponsorName  string `json:"sponsor_name"`
	IsFeatured   bool   `json:"is_featured" gorm:"default:false"`

	// Quiz configuration
	// EligibilityThreshold is the minimum score (0-100) required to enter the draw pool.
	EligibilityThreshold int `json:"eligibility_threshold" gorm:"default:70"`
	// DefaultAttempts is the base number of quiz attempts per participant;
	// users can extend it via earned extra participations.
	DefaultAttempts   int `json:"default_attempts" gorm:"default:1"`
	PointsPerQuestion int `json:"points_per_question" gorm:"default:1"`

	Status          string     `json:"status" gorm:"default:'draft'"`
	StartTime       time.Time  `json:"start_time" gorm:"not null"`
	EndTime         time.Time  `json:"end_time"`
	PublishedAt     *time.Time `json:"published_at,omitempty" gorm:"index"`
	PublishSchedule *time.Time `json:"publish_schedule,omitempty"`

	// Draw results visibility. Setting is idempotent; the first publish wins the timestamp.
	ResultsPublished   bool       `json:"results_published" gorm:"default:false"`
	ResultsPublishedAt *time.Time `json:"results_published_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:ContestID"`
	Prizes    []Prize    `json:"prizes,omitempty" gorm:"foreignKey:ContestID"`

	// Calculated fields (not stored in DB)
	ParticipantsCount int64 `json:"participants_count,omitempty" gorm:"-"`
	HasWinner         bool  `json:"has_winner,omitempty" gorm:"-"`
}

// MiniContest represents a brief summary of a contest for listing
type MiniContest struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Status       string     `json:"status"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	MainPhotoURL string     `json:"main_photo_url"`
	SponsorName  string     `json:"sponsor_name"`
	IsFeatured   bool       `json:"is_featured"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
