package services

import (
	"testing"

	"contest-platform/models"
)

func TestAwardPointsIsAdditive(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	// Two identical events are two real awards, never deduplicated.
	for i := 0; i < 2; i++ {
		res, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonWelcome})
		if err != nil {
			t.Fatalf("award %d failed: %v", i+1, err)
		}
		if res.PointsAwarded != DefaultPointWeights.Welcome {
			t.Fatalf("award %d: got %d points, want %d", i+1, res.PointsAwarded, DefaultPointWeights.Welcome)
		}
	}

	var up models.UserPoints
	if err := db.Where("external_user_id = ?", "user-1").First(&up).Error; err != nil {
		t.Fatalf("failed to load points record: %v", err)
	}
	if up.TotalPoints != 2*DefaultPointWeights.Welcome {
		t.Errorf("total = %d, want %d", up.TotalPoints, 2*DefaultPointWeights.Welcome)
	}

	var rows int64
	db.Model(&models.PointHistoryEntry{}).Where("external_user_id = ?", "user-1").Count(&rows)
	if rows != 2 {
		t.Errorf("ledger rows = %d, want 2", rows)
	}
}

func TestAwardPointsRejectsUnknownReason(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	if _, err := svc.AwardPoints("user-1", Award{Reason: "made_up_reason"}); err == nil {
		t.Fatal("expected an error for an unknown award reason")
	}
}

func TestStreakBonusEveryFifthCorrectAnswer(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	var last *AwardResult
	for i := 0; i < StreakBonusEvery; i++ {
		res, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonCorrectAnswer})
		if err != nil {
			t.Fatalf("correct answer %d failed: %v", i+1, err)
		}
		last = res
	}

	wantLast := DefaultPointWeights.CorrectAnswer + DefaultPointWeights.StreakBonus
	if last.PointsAwarded != wantLast {
		t.Errorf("fifth answer awarded %d, want %d (answer + streak bonus)", last.PointsAwarded, wantLast)
	}
	if last.Points.CurrentStreak != StreakBonusEvery {
		t.Errorf("streak = %d, want %d", last.Points.CurrentStreak, StreakBonusEvery)
	}

	var bonusRows int64
	db.Model(&models.PointHistoryEntry{}).
		Where("external_user_id = ? AND reason = ?", "user-1", models.AwardReasonStreakBonus).
		Count(&bonusRows)
	if bonusRows != 1 {
		t.Errorf("streak bonus rows = %d, want 1", bonusRows)
	}
}

func TestIncorrectAnswerResetsStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	for i := 0; i < 3; i++ {
		if _, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonCorrectAnswer}); err != nil {
			t.Fatalf("correct answer failed: %v", err)
		}
	}

	res, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonIncorrectAnswer})
	if err != nil {
		t.Fatalf("incorrect answer failed: %v", err)
	}
	if res.PointsAwarded != 0 {
		t.Errorf("incorrect answer awarded %d points, want 0", res.PointsAwarded)
	}
	if res.Points.CurrentStreak != 0 {
		t.Errorf("streak = %d, want 0 after reset", res.Points.CurrentStreak)
	}
	if res.Points.BestStreak != 3 {
		t.Errorf("best streak = %d, want 3 (folded before reset)", res.Points.BestStreak)
	}

	// No ledger row for the zero-point outcome.
	var rows int64
	db.Model(&models.PointHistoryEntry{}).
		Where("external_user_id = ? AND reason = ?", "user-1", models.AwardReasonIncorrectAnswer).
		Count(&rows)
	if rows != 0 {
		t.Errorf("incorrect answer wrote %d ledger rows, want 0", rows)
	}
}

func TestMonthlyShareCap(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	for i := 0; i < MonthlyShareCap; i++ {
		res, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonSocialShare})
		if err != nil {
			t.Fatalf("share %d failed: %v", i+1, err)
		}
		if res.Capped {
			t.Fatalf("share %d was capped below the monthly limit", i+1)
		}
		want := DefaultPointWeights.SocialShare
		if i+1 == ShareMilestoneCount {
			want += DefaultPointWeights.ShareMilestone
		}
		if res.PointsAwarded != want {
			t.Fatalf("share %d awarded %d, want %d", i+1, res.PointsAwarded, want)
		}
	}

	// Share past the cap: zero points, flagged, no error.
	res, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonSocialShare})
	if err != nil {
		t.Fatalf("capped share returned error: %v", err)
	}
	if !res.Capped || res.PointsAwarded != 0 {
		t.Errorf("capped share: got awarded=%d capped=%v, want 0/true", res.PointsAwarded, res.Capped)
	}

	count, err := svc.MonthlyShareCount("user-1")
	if err != nil {
		t.Fatalf("MonthlyShareCount failed: %v", err)
	}
	if count != MonthlyShareCap {
		t.Errorf("monthly share count = %d, want %d", count, MonthlyShareCap)
	}
}

func TestShareMilestoneBonusRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	for i := 0; i < ShareMilestoneCount; i++ {
		if _, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonSocialShare}); err != nil {
			t.Fatalf("share %d failed: %v", i+1, err)
		}
	}

	var milestoneRows int64
	db.Model(&models.PointHistoryEntry{}).
		Where("external_user_id = ? AND reason = ?", "user-1", models.AwardReasonShareMilestone).
		Count(&milestoneRows)
	if milestoneRows != 1 {
		t.Errorf("milestone rows = %d, want exactly 1", milestoneRows)
	}
}

func TestContestShareGrantsExtraParticipation(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	contestID := "contest-1"
	res, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonContestShare, ContestID: &contestID})
	if err != nil {
		t.Fatalf("contest share failed: %v", err)
	}
	if res.PointsAwarded != DefaultPointWeights.ContestShare {
		t.Errorf("awarded %d, want %d", res.PointsAwarded, DefaultPointWeights.ContestShare)
	}
	if res.Points.ExtraParticipations != ContestShareExtraAttempts {
		t.Errorf("extra participations = %d, want %d", res.Points.ExtraParticipations, ContestShareExtraAttempts)
	}
}

func TestRankRecomputedWithTotal(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	res, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonAdminGrant, Points: 1000})
	if err != nil {
		t.Fatalf("admin grant failed: %v", err)
	}
	if res.Points.TotalPoints != 1000 {
		t.Errorf("total = %d, want 1000", res.Points.TotalPoints)
	}
	if res.Points.CurrentRank != models.RankHavana {
		t.Errorf("rank = %s, want %s", res.Points.CurrentRank, models.RankHavana)
	}

	// The cached column matches the catalog, not just the response.
	var up models.UserPoints
	if err := db.Where("external_user_id = ?", "user-1").First(&up).Error; err != nil {
		t.Fatalf("failed to load points record: %v", err)
	}
	if up.CurrentRank != models.RankHavana {
		t.Errorf("stored rank = %s, want %s", up.CurrentRank, models.RankHavana)
	}
}

func TestAdminGrantRequiresAmount(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	if _, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonAdminGrant}); err == nil {
		t.Fatal("expected an error for an admin grant without an amount")
	}
}

func TestGetHistoryNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	for i := 0; i < 3; i++ {
		if _, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonSocialShare}); err != nil {
			t.Fatalf("share failed: %v", err)
		}
	}

	entries, total, err := svc.GetHistory("user-1", 1, 2)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(entries) != 2 {
		t.Errorf("page size = %d, want 2", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Errorf("history not ordered newest first")
		}
	}
}

func TestAwardPointsInterleavedReasonsKeepAllCounters(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	seedPointsRecord(t, svc, "user-1")

	// Alternating correct answers and contest shares: every write-back must
	// carry both the streak and the extra-participation counter, or one of
	// the two updates is lost.
	for i := 0; i < 4; i++ {
		if _, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonCorrectAnswer}); err != nil {
			t.Fatalf("correct answer %d failed: %v", i+1, err)
		}
		if _, err := svc.AwardPoints("user-1", Award{Reason: models.AwardReasonContestShare}); err != nil {
			t.Fatalf("contest share %d failed: %v", i+1, err)
		}
	}

	var up models.UserPoints
	if err := db.Where("external_user_id = ?", "user-1").First(&up).Error; err != nil {
		t.Fatalf("failed to load points record: %v", err)
	}
	if up.CurrentStreak != 4 {
		t.Errorf("streak = %d, want 4", up.CurrentStreak)
	}
	if up.BestStreak != 4 {
		t.Errorf("best streak = %d, want 4", up.BestStreak)
	}
	if up.ExtraParticipations != 4 {
		t.Errorf("extra participations = %d, want 4", up.ExtraParticipations)
	}
	wantTotal := 4*DefaultPointWeights.CorrectAnswer + 4*DefaultPointWeights.ContestShare
	if up.TotalPoints != wantTotal {
		t.Errorf("total = %d, want %d", up.TotalPoints, wantTotal)
	}

	var rows int64
	db.Model(&models.PointHistoryEntry{}).Where("external_user_id = ?", "user-1").Count(&rows)
	if rows != 8 {
		t.Errorf("ledger rows = %d, want 8", rows)
	}
}

func TestEnsurePointsRecordIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)

	first := seedPointsRecord(t, svc, "user-1")
	second := seedPointsRecord(t, svc, "user-1")
	if first.ID != second.ID {
		t.Errorf("EnsurePointsRecord created a second row: %s vs %s", first.ID, second.ID)
	}

	var rows int64
	db.Model(&models.UserPoints{}).Where("external_user_id = ?", "user-1").Count(&rows)
	if rows != 1 {
		t.Errorf("points rows = %d, want 1", rows)
	}
}

func TestEnsurePointsRecordDuplicateCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	first := seedPointsRecord(t, svc, "user-1")

	// A second insert for the same user hits the unique index on
	// external_user_id; EnsurePointsRecord resolves that race by re-reading
	// the winning row.
	dup := models.UserPoints{
		ID:             "some-other-id",
		ExternalUserID: "user-1",
		CurrentRank:    models.RankNovato,
	}
	err := db.Create(&dup).Error
	if err == nil {
		t.Fatal("duplicate points record was accepted")
	}
	if !isUniqueViolation(err) {
		t.Fatalf("duplicate insert error not recognized as a unique violation: %v", err)
	}

	again := seedPointsRecord(t, svc, "user-1")
	if again.ID != first.ID {
		t.Errorf("got record %s, want the winning row %s", again.ID, first.ID)
	}
}
