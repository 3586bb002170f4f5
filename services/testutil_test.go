package services

import (
	"path/filepath"
	"testing"
	"time"

	"contest-platform/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database and migrates the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "contest_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.PlatformUser{},
		&models.Contest{},
		&models.Question{},
		&models.Prize{},
		&models.Participant{},
		&models.UserPoints{},
		&models.PointHistoryEntry{},
		&models.DrawHistoryEntry{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// seedContest creates a published contest that is currently open.
func seedContest(t *testing.T, db *gorm.DB) *models.Contest {
	t.Helper()

	contest := &models.Contest{
		ID:                   uuid.NewString(),
		Name:                 "Trivia Sweepstakes",
		Slug:                 "trivia-sweepstakes",
		Status:               models.ContestStatusPublished,
		StartTime:            time.Now().Add(-time.Hour),
		EndTime:              time.Now().Add(time.Hour),
		EligibilityThreshold: 70,
		DefaultAttempts:      1,
		PointsPerQuestion:    1,
	}
	if err := db.Create(contest).Error; err != nil {
		t.Fatalf("failed to seed contest: %v", err)
	}
	return contest
}

// seedQuestions adds n questions to the contest, all with correct option 0.
func seedQuestions(t *testing.T, db *gorm.DB, contestID string, n int) []models.Question {
	t.Helper()

	questions := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		q := models.Question{
			ID:            uuid.NewString(),
			ContestID:     contestID,
			Text:          "Question " + uuid.NewString()[:8],
			OptionA:       "Right",
			OptionB:       "Wrong",
			CorrectOption: 0,
			SortOrder:     i,
		}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("failed to seed question: %v", err)
		}
		questions = append(questions, q)
	}
	return questions
}

// seedParticipant inserts a participant row with the given status and score.
func seedParticipant(t *testing.T, db *gorm.DB, contestID, userID, status string, score int) *models.Participant {
	t.Helper()

	p := &models.Participant{
		ID:                uuid.NewString(),
		ExternalUserID:    userID,
		ContestID:         contestID,
		ParticipationCode: uuid.NewString()[:8],
		Status:            status,
		Score:             score,
		Attempts:          1,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed participant: %v", err)
	}
	return p
}

// seedPointsRecord ensures a fresh UserPoints row for the user.
func seedPointsRecord(t *testing.T, svc *PointsService, userID string) *models.UserPoints {
	t.Helper()

	up, err := svc.EnsurePointsRecord(userID)
	if err != nil {
		t.Fatalf("failed to ensure points record: %v", err)
	}
	return up
}
