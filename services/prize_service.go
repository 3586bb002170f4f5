// services/prize_service.go
package services

import (
	"errors"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"contest-platform/models"
	"contest-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrizeService struct {
	DB *gorm.DB
}

func NewPrizeService(db *gorm.DB) *PrizeService {
	return &PrizeService{DB: db}
}

// --- Admin Handlers ---

// CreatePrize creates a new prize catalog entry (Admin only)
func (s *PrizeService) CreatePrize(c *fiber.Ctx) error {
	contestID := c.FormValue("contest_id")
	title := c.FormValue("title")
	prizeType := models.PrizeType(c.FormValue("type"))
	emoji := c.FormValue("emoji")
	excerpt := c.FormValue("excerpt")
	amountStr := c.FormValue("amount")
	itemDetails := c.FormValue("item_details")
	expiryStr := c.FormValue("expiry_date")
	status := models.PrizeStatus(c.FormValue("status", string(models.PrizeStatusDraft)))

	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	switch prizeType {
	case models.PrizeTypeCash, models.PrizeTypeItem:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type must be cash or item"})
	}
	switch status {
	case models.PrizeStatusDraft, models.PrizeStatusPublished, models.PrizeStatusArchived:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be draft, published or archived"})
	}

	amount := 0.0
	if amountStr != "" {
		f, err := strconv.ParseFloat(amountStr, 64)
		if err != nil || f < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be a non-negative number"})
		}
		amount = f
	}
	if prizeType == models.PrizeTypeCash && amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount is required for cash prizes"})
	}
	if prizeType == models.PrizeTypeItem && itemDetails == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item details are required for item prizes"})
	}

	var expiryDate *time.Time
	if expiryStr != "" {
		t, err := time.Parse(time.RFC3339, expiryStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid expiry_date (use RFC3339)"})
		}
		expiryDate = &t
	}

	var imageURL string
	if image, err := c.FormFile("image"); err == nil && image.Size > 0 {
		ext := filepath.Ext(image.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "prizes/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(image, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload prize image"})
		}
		imageURL = url
	}

	prize := &models.Prize{
		ID:          uuid.NewString(),
		ContestID:   contestID,
		Title:       title,
		Type:        prizeType,
		ImageURL:    imageURL,
		Emoji:       emoji,
		Excerpt:     excerpt,
		Amount:      amount,
		ItemDetails: itemDetails,
		ExpiryDate:  expiryDate,
		Status:      status,
	}

	if err := s.DB.Create(prize).Error; err != nil {
		log.Printf("DB Error creating prize: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create prize"})
	}

	return c.Status(fiber.StatusCreated).JSON(prize)
}

// UpdatePrize updates an existing prize (Admin only)
func (s *PrizeService) UpdatePrize(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid prize ID"})
	}

	var existing models.Prize
	if err := s.DB.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prize not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Title       *string             `json:"title"`
		Type        *models.PrizeType   `json:"type"`
		Emoji       *string             `json:"emoji"`
		Excerpt     *string             `json:"excerpt"`
		Amount      *float64            `json:"amount"`
		ItemDetails *string             `json:"item_details"`
		ExpiryDate  *time.Time          `json:"expiry_date"`
		UserID      *string             `json:"user_id"`
		Status      *models.PrizeStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Type != nil {
		existing.Type = *req.Type
		if *req.Type == models.PrizeTypeCash && req.Amount == nil && existing.Amount == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount is required for cash prizes"})
		}
		if *req.Type == models.PrizeTypeItem && req.ItemDetails == nil && existing.ItemDetails == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item details are required for item prizes"})
		}
	}
	if req.Emoji != nil {
		existing.Emoji = *req.Emoji
	}
	if req.Excerpt != nil {
		existing.Excerpt = *req.Excerpt
	}
	if req.Amount != nil {
		existing.Amount = *req.Amount
	}
	if req.ItemDetails != nil {
		existing.ItemDetails = *req.ItemDetails
	}
	if req.ExpiryDate != nil {
		existing.ExpiryDate = req.ExpiryDate
	}
	if req.UserID != nil {
		existing.UserID = *req.UserID
	}
	if req.Status != nil {
		existing.Status = *req.Status
	}

	if err := s.DB.Save(&existing).Error; err != nil {
		log.Printf("DB Error updating prize: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update prize"})
	}
	return c.JSON(existing)
}

// DeletePrize deletes a prize (Admin only)
func (s *PrizeService) DeletePrize(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid prize ID"})
	}

	var prize models.Prize
	if err := s.DB.First(&prize, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prize not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := s.DB.Delete(&prize).Error; err != nil {
		log.Printf("DB Error deleting prize: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete prize"})
	}
	return c.JSON(fiber.Map{"message": "Prize deleted successfully"})
}

// GetAllPrizes fetches all prizes (Admin only)
func (s *PrizeService) GetAllPrizes(c *fiber.Ctx) error {
	var prizes []models.Prize
	query := s.DB.Order("created_at DESC")
	if contestID := c.Query("contest_id"); contestID != "" {
		query = query.Where("contest_id = ?", contestID)
	}
	if err := query.Find(&prizes).Error; err != nil {
		log.Printf("DB Error fetching all prizes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch prizes"})
	}
	return c.JSON(prizes)
}

// --- User Handlers ---

// GetUserPrizes fetches prizes won by the *authenticated* user based on filters
func (s *PrizeService) GetUserPrizes(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found in context"})
	}

	claimedStr := c.Query("claimed") // claimed=all (default), claimed=true, claimed=false
	var claimedFilter *bool
	switch strings.ToLower(claimedStr) {
	case "true":
		claimed := true
		claimedFilter = &claimed
	case "false":
		claimed := false
		claimedFilter = &claimed
	}

	query := s.DB.Where("user_id = ? AND status = ?", userID, models.PrizeStatusPublished)
	if claimedFilter != nil {
		query = query.Where("claimed = ?", *claimedFilter)
	}

	var prizes []models.Prize
	if err := query.Order("created_at DESC").Find(&prizes).Error; err != nil {
		log.Printf("DB Error fetching user prizes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch prizes"})
	}
	return c.JSON(prizes)
}

// GetUserPrizeCounts returns total/unviewed/unclaimed counts for polling.
func (s *PrizeService) GetUserPrizeCounts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	now := time.Now()

	baseQuery := func() *gorm.DB {
		return s.DB.Model(&models.Prize{}).
			Where("user_id = ?", userID).
			Where("status = ?", models.PrizeStatusPublished).
			Where("(expiry_date IS NULL OR expiry_date >= ?)", now)
	}

	var totalCount, unviewedCount, unclaimedCount int64
	if err := baseQuery().Count(&totalCount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error counting prizes"})
	}
	if err := baseQuery().Where("viewed = ?", false).Count(&unviewedCount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error counting unviewed prizes"})
	}
	if err := baseQuery().Where("claimed = ?", false).Count(&unclaimedCount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error counting unclaimed prizes"})
	}

	return c.JSON(fiber.Map{
		"total_count":     totalCount,
		"unviewed_count":  unviewedCount,
		"unclaimed_count": unclaimedCount,
	})
}

// ClaimPrize handles the claiming of a prize by the winning user
func (s *PrizeService) ClaimPrize(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	prizeID := c.Params("id")

	if _, err := uuid.Parse(prizeID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid prize ID"})
	}

	var prize models.Prize
	if err := s.DB.Where("id = ? AND user_id = ?", prizeID, userID).First(&prize).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prize not found or not owned by user"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if prize.Claimed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Prize already claimed"})
	}
	if prize.Status != models.PrizeStatusPublished {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prize is not available for claiming"})
	}
	if prize.ExpiryDate != nil && prize.ExpiryDate.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prize has expired"})
	}

	prize.Claimed = true
	if err := s.DB.Save(&prize).Error; err != nil {
		log.Printf("DB Error claiming prize: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to claim prize"})
	}

	return c.JSON(fiber.Map{"message": "Prize claimed successfully", "prize": prize})
}

// MarkPrizeAsViewed marks a single prize as viewed (idempotent)
func (s *PrizeService) MarkPrizeAsViewed(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	prizeID := c.Params("id")

	if _, err := uuid.Parse(prizeID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid prize ID"})
	}

	var prize models.Prize
	if err := s.DB.Where("id = ? AND user_id = ?", prizeID, userID).First(&prize).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prize not found or not owned"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if !prize.Viewed {
		prize.Viewed = true
		if err := s.DB.Save(&prize).Error; err != nil {
			log.Printf("Failed to update viewed status: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark as viewed"})
		}
	}

	return c.JSON(fiber.Map{"message": "OK", "prize_id": prize.ID, "viewed": true})
}

// AssignPrizeToWinner binds a contest's prizes to the draw winner. Called
// after a successful draw (Admin only).
func (s *PrizeService) AssignPrizeToWinner(c *fiber.Ctx) error {
	contestID := c.Params("id")

	var entry models.DrawHistoryEntry
	if err := s.DB.Where("contest_id = ?", contestID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no draw has been performed for this contest"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	result := s.DB.Model(&models.Prize{}).
		Where("contest_id = ? AND user_id = ?", contestID, "").
		Update("user_id", entry.ExternalUserID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to assign prizes"})
	}

	return c.JSON(fiber.Map{
		"message":        "Prizes assigned to winner",
		"winner_id":      entry.ExternalUserID,
		"assigned_count": result.RowsAffected,
	})
}
