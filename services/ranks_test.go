package services

import (
	"testing"

	"contest-platform/models"
)

func TestRankForPoints(t *testing.T) {
	cases := []struct {
		points int64
		want   models.RankID
	}{
		{0, models.RankNovato},
		{500, models.RankNovato},
		{999, models.RankNovato},
		{1000, models.RankHavana},
		{2499, models.RankHavana},
		{2500, models.RankEjecutivo},
		{4999, models.RankEjecutivo},
		{5000, models.RankMagnate},
		{9999, models.RankMagnate},
		{10000, models.RankLeyenda},
		{1000000, models.RankLeyenda},
	}
	for _, c := range cases {
		if got := RankForPoints(c.points).Rank; got != c.want {
			t.Errorf("RankForPoints(%d) = %s, want %s", c.points, got, c.want)
		}
	}
}

func TestRankForPointsNegativeClampsToZero(t *testing.T) {
	if got := RankForPoints(-50).Rank; got != models.RankNovato {
		t.Errorf("RankForPoints(-50) = %s, want %s", got, models.RankNovato)
	}
}

func TestRankCatalogContiguous(t *testing.T) {
	for i := 1; i < len(models.RankCatalog); i++ {
		prev := models.RankCatalog[i-1]
		cur := models.RankCatalog[i]
		if cur.MinPoints != prev.MaxPoints+1 {
			t.Errorf("gap between %s (max %d) and %s (min %d)",
				prev.Rank, prev.MaxPoints, cur.Rank, cur.MinPoints)
		}
	}
}

func TestRankForPointsTotalCoverage(t *testing.T) {
	// Every total in a wide sweep must land in exactly one tier.
	for points := int64(0); points <= 20000; points += 7 {
		tier := RankForPoints(points)
		if points < tier.MinPoints || points > tier.MaxPoints {
			t.Fatalf("points %d resolved to %s [%d, %d], outside the band",
				points, tier.Rank, tier.MinPoints, tier.MaxPoints)
		}
	}
}

func TestNextRank(t *testing.T) {
	next, ok := NextRank(0)
	if !ok || next.Rank != models.RankHavana {
		t.Errorf("NextRank(0) = %s, %v, want HAVANA, true", next.Rank, ok)
	}

	next, ok = NextRank(999)
	if !ok || next.Rank != models.RankHavana {
		t.Errorf("NextRank(999) = %s, %v, want HAVANA, true", next.Rank, ok)
	}

	next, ok = NextRank(1000)
	if !ok || next.Rank != models.RankEjecutivo {
		t.Errorf("NextRank(1000) = %s, %v, want EJECUTIVO, true", next.Rank, ok)
	}

	if _, ok := NextRank(10000); ok {
		t.Error("NextRank(10000) reported a next tier above the top tier")
	}
}

func TestProgressToNextRank(t *testing.T) {
	if got := ProgressToNextRank(0); got != 0 {
		t.Errorf("ProgressToNextRank(0) = %d, want 0", got)
	}
	if got := ProgressToNextRank(500); got != 50 {
		t.Errorf("ProgressToNextRank(500) = %d, want 50", got)
	}
	if got := ProgressToNextRank(999); got != 100 {
		t.Errorf("ProgressToNextRank(999) = %d, want 100", got)
	}
	// Top tier has no next rank.
	if got := ProgressToNextRank(50000); got != 0 {
		t.Errorf("ProgressToNextRank(50000) = %d, want 0", got)
	}
}

func TestProgressToNextRankMonotonic(t *testing.T) {
	prev := -1
	for points := int64(0); points < 1000; points += 25 {
		got := ProgressToNextRank(points)
		if got < prev {
			t.Fatalf("progress dropped from %d to %d at %d points", prev, got, points)
		}
		prev = got
	}
}
