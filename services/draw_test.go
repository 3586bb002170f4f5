package services

import (
	"errors"
	"testing"
	"time"

	"contest-platform/models"

	"github.com/google/uuid"
)

func TestEligiblePoolThresholdBoundary(t *testing.T) {
	db := newTestDB(t)
	points := NewPointsService(db)
	svc := NewDrawService(db, points)
	contest := seedContest(t, db) // threshold 70

	below := seedParticipant(t, db, contest.ID, "user-below", models.ParticipantStatusCompleted, 69)
	atThreshold := seedParticipant(t, db, contest.ID, "user-at", models.ParticipantStatusCompleted, 70)
	seedParticipant(t, db, contest.ID, "user-pending", models.ParticipantStatusPending, 100)
	seedParticipant(t, db, contest.ID, "user-dq", models.ParticipantStatusDisqualified, 100)

	pool, err := svc.EligiblePool(contest.ID)
	if err != nil {
		t.Fatalf("EligiblePool failed: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("pool size = %d, want 1", len(pool))
	}
	if pool[0].ID != atThreshold.ID {
		t.Errorf("pool contains %s, want %s", pool[0].ExternalUserID, atThreshold.ExternalUserID)
	}
	for _, p := range pool {
		if p.ID == below.ID {
			t.Error("participant below the threshold entered the pool")
		}
	}
}

func TestPerformDrawEmptyPool(t *testing.T) {
	db := newTestDB(t)
	svc := NewDrawService(db, NewPointsService(db))
	contest := seedContest(t, db)
	seedParticipant(t, db, contest.ID, "user-1", models.ParticipantStatusCompleted, 50)

	_, err := svc.PerformDraw(contest.ID)
	if !errors.Is(err, ErrNoEligibleParticipants) {
		t.Fatalf("got %v, want ErrNoEligibleParticipants", err)
	}

	// Nothing changed: no history row, participant status intact.
	var historyRows int64
	db.Model(&models.DrawHistoryEntry{}).Where("contest_id = ?", contest.ID).Count(&historyRows)
	if historyRows != 0 {
		t.Errorf("history rows = %d, want 0", historyRows)
	}
	var p models.Participant
	db.Where("contest_id = ?", contest.ID).First(&p)
	if p.Status != models.ParticipantStatusCompleted {
		t.Errorf("participant status = %s, want unchanged", p.Status)
	}
}

func TestPerformDrawSelectsWinnerOnce(t *testing.T) {
	db := newTestDB(t)
	points := NewPointsService(db)
	svc := NewDrawService(db, points)
	contest := seedContest(t, db)

	for i := 0; i < 3; i++ {
		userID := uuid.NewString()
		seedParticipant(t, db, contest.ID, userID, models.ParticipantStatusCompleted, 80)
		seedPointsRecord(t, points, userID)
	}

	winner, err := svc.PerformDraw(contest.ID)
	if err != nil {
		t.Fatalf("PerformDraw failed: %v", err)
	}
	if winner.Status != models.ParticipantStatusWinner {
		t.Errorf("winner status = %s, want winner", winner.Status)
	}

	var stored models.Participant
	if err := db.First(&stored, "id = ?", winner.ID).Error; err != nil {
		t.Fatalf("failed to load winner row: %v", err)
	}
	if stored.Status != models.ParticipantStatusWinner {
		t.Errorf("stored winner status = %s, want winner", stored.Status)
	}

	entry, err := svc.GetDrawHistory(contest.ID)
	if err != nil {
		t.Fatalf("GetDrawHistory failed: %v", err)
	}
	if entry == nil {
		t.Fatal("no draw history entry recorded")
	}
	if entry.ParticipantID != winner.ID {
		t.Errorf("history participant = %s, want %s", entry.ParticipantID, winner.ID)
	}

	// Winner bonus landed on the winner's balance.
	var up models.UserPoints
	if err := db.Where("external_user_id = ?", winner.ExternalUserID).First(&up).Error; err != nil {
		t.Fatalf("failed to load winner points: %v", err)
	}
	if up.TotalPoints != DefaultPointWeights.Winner {
		t.Errorf("winner total = %d, want %d", up.TotalPoints, DefaultPointWeights.Winner)
	}

	// Second draw for the same contest is refused.
	if _, err := svc.PerformDraw(contest.ID); !errors.Is(err, ErrAlreadyDrawn) {
		t.Fatalf("second draw: got %v, want ErrAlreadyDrawn", err)
	}

	var historyRows int64
	db.Model(&models.DrawHistoryEntry{}).Where("contest_id = ?", contest.ID).Count(&historyRows)
	if historyRows != 1 {
		t.Errorf("history rows = %d, want exactly 1", historyRows)
	}
}

func TestPerformDrawUniqueIndexGuard(t *testing.T) {
	db := newTestDB(t)
	svc := NewDrawService(db, NewPointsService(db))
	contest := seedContest(t, db)
	p := seedParticipant(t, db, contest.ID, "user-1", models.ParticipantStatusCompleted, 90)

	// Simulate the losing side of a double-draw race: another draw already
	// committed its history row, but the pre-check snapshot did not see a
	// winner yet.
	entry := models.DrawHistoryEntry{
		ID:             uuid.NewString(),
		ContestID:      contest.ID,
		ParticipantID:  p.ID,
		ExternalUserID: p.ExternalUserID,
		DrawDate:       time.Now().UTC(),
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed history entry: %v", err)
	}

	if _, err := svc.PerformDraw(contest.ID); !errors.Is(err, ErrAlreadyDrawn) {
		t.Fatalf("got %v, want ErrAlreadyDrawn from the unique index", err)
	}

	var historyRows int64
	db.Model(&models.DrawHistoryEntry{}).Where("contest_id = ?", contest.ID).Count(&historyRows)
	if historyRows != 1 {
		t.Errorf("history rows = %d, want exactly 1", historyRows)
	}
}

func TestPickWinnerUniform(t *testing.T) {
	pool := make([]models.Participant, 5)
	for i := range pool {
		pool[i] = models.Participant{ID: uuid.NewString()}
	}

	const draws = 10000
	counts := make(map[string]int, len(pool))
	for i := 0; i < draws; i++ {
		counts[pickWinner(pool).ID]++
	}

	expected := draws / len(pool)
	tolerance := expected * 15 / 100
	for _, p := range pool {
		got := counts[p.ID]
		if got < expected-tolerance || got > expected+tolerance {
			t.Errorf("participant drawn %d times, want %d ±%d", got, expected, tolerance)
		}
	}
}

func TestPublishResultsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewDrawService(db, NewPointsService(db))
	contest := seedContest(t, db)

	first, err := svc.PublishResults(contest.ID)
	if err != nil {
		t.Fatalf("first publish failed: %v", err)
	}
	if !first.ResultsPublished || first.ResultsPublishedAt == nil {
		t.Fatal("first publish did not mark results published")
	}

	second, err := svc.PublishResults(contest.ID)
	if err != nil {
		t.Fatalf("second publish failed: %v", err)
	}
	if !second.ResultsPublished {
		t.Error("second publish lost the published flag")
	}
	if !second.ResultsPublishedAt.Equal(*first.ResultsPublishedAt) {
		t.Errorf("republish moved the timestamp: %v vs %v", second.ResultsPublishedAt, first.ResultsPublishedAt)
	}
}

func TestGetDrawHistoryNone(t *testing.T) {
	db := newTestDB(t)
	svc := NewDrawService(db, NewPointsService(db))
	contest := seedContest(t, db)

	entry, err := svc.GetDrawHistory(contest.ID)
	if err != nil {
		t.Fatalf("GetDrawHistory failed: %v", err)
	}
	if entry != nil {
		t.Errorf("got entry %v, want nil for an undrawn contest", entry)
	}
}
