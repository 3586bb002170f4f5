package models

import (
	"time"

	"gorm.io/gorm"
)

// PrizeType indicates whether the prize is cash or an item
type PrizeType string

const (
	PrizeTypeCash PrizeType = "cash"
	PrizeTypeItem PrizeType = "item"
)

// PrizeStatus indicates the publishing status of the prize
type PrizeStatus string

const (
	PrizeStatusDraft     PrizeStatus = "draft"
	PrizeStatusPublished PrizeStatus = "published"
	PrizeStatusArchived  PrizeStatus = "archived"
)

// Prize represents a prize catalog entry. UserID is empty until the prize is
// assigned to a draw winner.
type Prize struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	ContestID   string         `gorm:"index" json:"contest_id"`
	Title       string         `gorm:"not null" json:"title"`
	Type        PrizeType      `gorm:"not null" json:"type"`
	ImageURL    string         `gorm:"type:text" json:"image_url"`
	Emoji       string         `gorm:"size:10" json:"emoji"`
	Excerpt     string         `gorm:"type:text" json:"excerpt"`
	Amount      float64        `json:"amount"`
	ItemDetails string         `json:"item_details"`
	ExpiryDate  *time.Time     `json:"expiry_date,omitempty"`
	Claimed     bool           `gorm:"default:false" json:"claimed"`
	Viewed      bool           `gorm:"default:false;index" json:"viewed"`
	UserID      string         `gorm:"index" json:"user_id"`
	Status      PrizeStatus    `gorm:"not null;default:'draft'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
