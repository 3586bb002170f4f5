package services

import (
	"testing"

	"contest-platform/models"
)

func TestDecorateContest(t *testing.T) {
	db := newTestDB(t)
	svc := NewContestService(db)
	contest := seedContest(t, db)

	seedParticipant(t, db, contest.ID, "user-1", models.ParticipantStatusCompleted, 80)
	seedParticipant(t, db, contest.ID, "user-2", models.ParticipantStatusWinner, 90)
	seedParticipant(t, db, contest.ID, "user-3", models.ParticipantStatusPending, 0)

	svc.decorateContest(contest)
	if contest.ParticipantsCount != 3 {
		t.Errorf("participants_count = %d, want 3", contest.ParticipantsCount)
	}
	if !contest.HasWinner {
		t.Error("has_winner = false, want true")
	}
}

func TestDecorateContestQueryFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewContestService(db)
	contest := seedContest(t, db)

	// A failing count must not panic or invent a winner; the calculated
	// fields stay at their zero values.
	if err := db.Migrator().DropTable(&models.Participant{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	svc.decorateContest(contest)
	if contest.ParticipantsCount != 0 {
		t.Errorf("participants_count = %d, want 0", contest.ParticipantsCount)
	}
	if contest.HasWinner {
		t.Error("has_winner = true after a failed query, want false")
	}
}
