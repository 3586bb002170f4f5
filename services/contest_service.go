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
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ContestService struct {
	DB *gorm.DB
}

func NewContestService(db *gorm.DB) *ContestService {
	return &ContestService{DB: db}
}

// CreateContest creates a new contest from a multipart form (Admin only).
func (s *ContestService) CreateContest(c *fiber.Ctx) error {
	name := c.FormValue("name")
	description := c.FormValue("description")
	rules := c.FormValue("rules")
	sponsorName := c.FormValue("sponsor_name")
	startTimeStr := c.FormValue("start_time")
	endTimeStr := c.FormValue("end_time")
	thresholdStr := c.FormValue("eligibility_threshold")
	attemptsStr := c.FormValue("default_attempts")
	pointsStr := c.FormValue("points_per_question")
	isFeaturedStr := c.FormValue("is_featured")
	publishScheduleStr := c.FormValue("publish_schedule") // RFC3339

	if name == "" || startTimeStr == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and start_time are required"})
	}

	startTime, err := time.Parse(time.RFC3339, startTimeStr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid start_time (use RFC3339)"})
	}

	var endTime time.Time
	if endTimeStr != "" {
		endTime, err = time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_time (use RFC3339)"})
		}
	}

	threshold := 70
	if thresholdStr != "" {
		if n, err := strconv.Atoi(thresholdStr); err == nil && n >= 0 && n <= 100 {
			threshold = n
		} else {
			return c.Status(400).JSON(fiber.Map{"error": "eligibility_threshold must be 0-100"})
		}
	}

	defaultAttempts := 1
	if attemptsStr != "" {
		if n, err := strconv.Atoi(attemptsStr); err == nil && n >= 1 {
			defaultAttempts = n
		} else {
			return c.Status(400).JSON(fiber.Map{"error": "default_attempts must be a positive integer"})
		}
	}

	pointsPerQuestion := 1
	if pointsStr != "" {
		if n, err := strconv.Atoi(pointsStr); err == nil && n >= 1 {
			pointsPerQuestion = n
		} else {
			return c.Status(400).JSON(fiber.Map{"error": "points_per_question must be a positive integer"})
		}
	}

	isFeatured := strings.ToLower(isFeaturedStr) == "true"

	var publishSchedule *time.Time
	if publishScheduleStr != "" {
		scheduledTime, err := time.Parse(time.RFC3339, publishScheduleStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid publish_schedule (use RFC3339)"})
		}
		publishSchedule = &scheduledTime
	}

	// --- Handle main photo → R2 ---
	var mainPhotoURL string
	if mainPhoto, err := c.FormFile("main_photo"); err == nil && mainPhoto.Size > 0 {
		ext := filepath.Ext(mainPhoto.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "contests/main/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(mainPhoto, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload main photo"})
		}
		mainPhotoURL = url
	}

	status := models.ContestStatusDraft
	if publishSchedule != nil {
		status = models.ContestStatusScheduled
	}

	contest := &models.Contest{
		ID:                   uuid.NewString(),
		Name:                 name,
		Slug:                 slug.Make(name),
		Description:          description,
		Rules:                rules,
		SponsorName:          sponsorName,
		MainPhotoURL:         mainPhotoURL,
		EligibilityThreshold: threshold,
		DefaultAttempts:      defaultAttempts,
		PointsPerQuestion:    pointsPerQuestion,
		IsFeatured:           isFeatured,
		StartTime:            startTime,
		EndTime:              endTime,
		PublishSchedule:      publishSchedule,
		Status:               status,
	}

	if err := s.DB.Create(contest).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(contest)
}

// GetPublishedContests lists published contests (public endpoint).
func (s *ContestService) GetPublishedContests(c *fiber.Ctx) error {
	var contests []models.Contest
	query := s.DB.Where("status = ?", models.ContestStatusPublished)
	if c.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}
	if err := query.Order("published_at DESC").Find(&contests).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch contests"})
	}

	for i := range contests {
		s.decorateContest(&contests[i])
	}
	return c.JSON(contests)
}

// GetPublishedContestByID returns one published contest with public questions.
func (s *ContestService) GetPublishedContestByID(c *fiber.Ctx) error {
	id := c.Params("id")
	var contest models.Contest
	if err := s.DB.Where("(id = ? OR slug = ?) AND status = ?", id, id, models.ContestStatusPublished).
		Preload("Prizes", "status = ?", models.PrizeStatusPublished).
		First(&contest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	s.decorateContest(&contest)

	var questions []models.Question
	if err := s.DB.Where("contest_id = ?", contest.ID).Order("sort_order ASC").Find(&questions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch questions"})
	}
	public := make([]models.PublicQuestion, len(questions))
	for i, q := range questions {
		public[i] = q.Public()
	}

	return c.JSON(fiber.Map{
		"contest":   contest,
		"questions": public,
	})
}

// GetAllContests lists all contests regardless of status (Admin only).
func (s *ContestService) GetAllContests(c *fiber.Ctx) error {
	var contests []models.Contest
	query := s.DB.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&contests).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch contests"})
	}
	for i := range contests {
		s.decorateContest(&contests[i])
	}
	return c.JSON(contests)
}

// GetAllContestsMini returns a compact listing for admin tables.
func (s *ContestService) GetAllContestsMini(c *fiber.Ctx) error {
	var contests []models.Contest
	if err := s.DB.Order("created_at DESC").Find(&contests).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch contests"})
	}

	minis := make([]models.MiniContest, len(contests))
	for i, ct := range contests {
		minis[i] = models.MiniContest{
			ID:           ct.ID,
			Name:         ct.Name,
			Slug:         ct.Slug,
			Status:       ct.Status,
			StartTime:    ct.StartTime,
			EndTime:      ct.EndTime,
			MainPhotoURL: ct.MainPhotoURL,
			SponsorName:  ct.SponsorName,
			IsFeatured:   ct.IsFeatured,
			PublishedAt:  ct.PublishedAt,
			CreatedAt:    ct.CreatedAt,
		}
	}
	return c.JSON(minis)
}

// GetContestByID returns full contest details including the answer key (Admin only).
func (s *ContestService) GetContestByID(c *fiber.Ctx) error {
	id := c.Params("id")
	var contest models.Contest
	if err := s.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("Prizes").First(&contest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	s.decorateContest(&contest)
	return c.JSON(contest)
}

// UpdateContest updates contest fields (Admin only).
func (s *ContestService) UpdateContest(c *fiber.Ctx) error {
	id := c.Params("id")
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Name                 *string    `json:"name"`
		Description          *string    `json:"description"`
		Rules                *string    `json:"rules"`
		SponsorName          *string    `json:"sponsor_name"`
		EligibilityThreshold *int       `json:"eligibility_threshold"`
		DefaultAttempts      *int       `json:"default_attempts"`
		PointsPerQuestion    *int       `json:"points_per_question"`
		IsFeatured           *bool      `json:"is_featured"`
		StartTime            *time.Time `json:"start_time"`
		EndTime              *time.Time `json:"end_time"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if req.Name != nil {
		contest.Name = *req.Name
		contest.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		contest.Description = *req.Description
	}
	if req.Rules != nil {
		contest.Rules = *req.Rules
	}
	if req.SponsorName != nil {
		contest.SponsorName = *req.SponsorName
	}
	if req.EligibilityThreshold != nil {
		if *req.EligibilityThreshold < 0 || *req.EligibilityThreshold > 100 {
			return c.Status(400).JSON(fiber.Map{"error": "eligibility_threshold must be 0-100"})
		}
		contest.EligibilityThreshold = *req.EligibilityThreshold
	}
	if req.DefaultAttempts != nil {
		if *req.DefaultAttempts < 1 {
			return c.Status(400).JSON(fiber.Map{"error": "default_attempts must be a positive integer"})
		}
		contest.DefaultAttempts = *req.DefaultAttempts
	}
	if req.PointsPerQuestion != nil {
		if *req.PointsPerQuestion < 1 {
			return c.Status(400).JSON(fiber.Map{"error": "points_per_question must be a positive integer"})
		}
		contest.PointsPerQuestion = *req.PointsPerQuestion
	}
	if req.IsFeatured != nil {
		contest.IsFeatured = *req.IsFeatured
	}
	if req.StartTime != nil {
		contest.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		contest.EndTime = *req.EndTime
	}

	if err := s.DB.Save(&contest).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update contest"})
	}
	return c.JSON(contest)
}

// DeleteContest deletes a contest and its question bank (Admin only).
func (s *ContestService) DeleteContest(c *fiber.Ctx) error {
	id := c.Params("id")
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contest_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&contest).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete contest"})
	}
	return c.JSON(fiber.Map{"message": "contest deleted successfully"})
}

// PublishNow publishes a contest immediately (Admin only).
func (s *ContestService) PublishNow(c *fiber.Ctx) error {
	id := c.Params("id")
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
	}

	now := time.Now()
	contest.Status = models.ContestStatusPublished
	contest.PublishedAt = &now
	contest.PublishSchedule = nil

	if err := s.DB.Save(&contest).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to publish contest"})
	}
	return c.JSON(contest)
}

// SchedulePublish schedules a contest for later publication (Admin only).
func (s *ContestService) SchedulePublish(c *fiber.Ctx) error {
	id := c.Params("id")
	var req struct {
		PublishAt time.Time `json:"publish_at"`
	}
	if err := c.BodyParser(&req); err != nil || req.PublishAt.IsZero() {
		return c.Status(400).JSON(fiber.Map{"error": "publish_at (RFC3339) is required"})
	}
	if req.PublishAt.Before(time.Now()) {
		return c.Status(400).JSON(fiber.Map{"error": "publish_at must be in the future"})
	}

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
	}

	contest.Status = models.ContestStatusScheduled
	contest.PublishSchedule = &req.PublishAt
	if err := s.DB.Save(&contest).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to schedule publish"})
	}
	return c.JSON(contest)
}

// CancelScheduledPublish reverts a scheduled contest back to draft (Admin only).
func (s *ContestService) CancelScheduledPublish(c *fiber.Ctx) error {
	id := c.Params("id")
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
	}
	if contest.Status != models.ContestStatusScheduled {
		return c.Status(409).JSON(fiber.Map{"error": "contest is not scheduled"})
	}

	contest.Status = models.ContestStatusDraft
	contest.PublishSchedule = nil
	if err := s.DB.Save(&contest).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to cancel scheduled publish"})
	}
	return c.JSON(contest)
}

// UpdateContestStatus transitions the publishing status directly (Admin only).
func (s *ContestService) UpdateContestStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	switch req.Status {
	case models.ContestStatusDraft, models.ContestStatusPublished, models.ContestStatusArchived:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "status must be draft, published or archived"})
	}

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
	}

	contest.Status = req.Status
	if req.Status == models.ContestStatusPublished && contest.PublishedAt == nil {
		now := time.Now()
		contest.PublishedAt = &now
	}
	if err := s.DB.Save(&contest).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update status"})
	}
	return c.JSON(contest)
}

// --- Question bank (Admin only) ---

// AddQuestion appends a question to a contest's bank.
func (s *ContestService) AddQuestion(c *fiber.Ctx) error {
	contestID := c.Params("id")
	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", contestID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "contest not found"})
	}

	var req struct {
		Text          string `json:"text"`
		OptionA       string `json:"option_a"`
		OptionB       string `json:"option_b"`
		OptionC       string `json:"option_c"`
		OptionD       string `json:"option_d"`
		CorrectOption int    `json:"correct_option"`
		SortOrder     int    `json:"sort_order"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Text == "" || req.OptionA == "" || req.OptionB == "" {
		return c.Status(400).JSON(fiber.Map{"error": "text, option_a and option_b are required"})
	}

	question := models.Question{
		ID:            uuid.NewString(),
		ContestID:     contestID,
		Text:          req.Text,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectOption: req.CorrectOption,
		SortOrder:     req.SortOrder,
	}
	if question.CorrectOption < 0 || question.CorrectOption >= len(question.Options()) {
		return c.Status(400).JSON(fiber.Map{"error": "correct_option is out of range"})
	}

	if err := s.DB.Create(&question).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create question"})
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

// UpdateQuestion edits a question (Admin only).
func (s *ContestService) UpdateQuestion(c *fiber.Ctx) error {
	questionID := c.Params("question_id")
	var question models.Question
	if err := s.DB.First(&question, "id = ?", questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "question not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Text          *string `json:"text"`
		OptionA       *string `json:"option_a"`
		OptionB       *string `json:"option_b"`
		OptionC       *string `json:"option_c"`
		OptionD       *string `json:"option_d"`
		CorrectOption *int    `json:"correct_option"`
		SortOrder     *int    `json:"sort_order"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.OptionA != nil {
		question.OptionA = *req.OptionA
	}
	if req.OptionB != nil {
		question.OptionB = *req.OptionB
	}
	if req.OptionC != nil {
		question.OptionC = *req.OptionC
	}
	if req.OptionD != nil {
		question.OptionD = *req.OptionD
	}
	if req.CorrectOption != nil {
		question.CorrectOption = *req.CorrectOption
	}
	if req.SortOrder != nil {
		question.SortOrder = *req.SortOrder
	}
	if question.CorrectOption < 0 || question.CorrectOption >= len(question.Options()) {
		return c.Status(400).JSON(fiber.Map{"error": "correct_option is out of range"})
	}

	if err := s.DB.Save(&question).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update question"})
	}
	return c.JSON(question)
}

// DeleteQuestion removes a question from the bank (Admin only).
func (s *ContestService) DeleteQuestion(c *fiber.Ctx) error {
	questionID := c.Params("question_id")
	var question models.Question
	if err := s.DB.First(&question, "id = ?", questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "question not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if err := s.DB.Delete(&question).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete question"})
	}
	return c.JSON(fiber.Map{"message": "question deleted successfully"})
}

// GetContestQuestions returns the full question bank with the answer key (Admin only).
func (s *ContestService) GetContestQuestions(c *fiber.Ctx) error {
	contestID := c.Params("id")
	var questions []models.Question
	if err := s.DB.Where("contest_id = ?", contestID).Order("sort_order ASC").Find(&questions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch questions"})
	}
	return c.JSON(questions)
}

// decorateContest fills the calculated fields.
func (s *ContestService) decorateContest(contest *models.Contest) {
	if err := s.DB.Model(&models.Participant{}).
		Where("contest_id = ?", contest.ID).
		Count(&contest.ParticipantsCount).Error; err != nil {
		log.Printf("⚠️ Failed to count participants for contest %s: %v", contest.ID, err)
	}

	var winners int64
	if err := s.DB.Model(&models.Participant{}).
		Where("contest_id = ? AND status = ?", contest.ID, models.ParticipantStatusWinner).
		Count(&winners).Error; err != nil {
		log.Printf("⚠️ Failed to count winners for contest %s: %v", contest.ID, err)
		return
	}
	contest.HasWinner = winners > 0
}
