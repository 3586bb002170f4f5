package services

import (
	"math"

	"contest-platform/models"
)

// RankForPoints resolves the unique tier covering totalPoints.
// Negative input clamps to zero, matching the accumulation rules which never
// produce a negative total.
func RankForPoints(totalPoints int64) models.RankTier {
	if totalPoints < 0 {
		totalPoints = 0
	}
	for _, tier := range models.RankCatalog {
		if totalPoints >= tier.MinPoints && totalPoints <= tier.MaxPoints {
			return tier
		}
	}
	// Unreachable while the catalog keeps total coverage; fall back to the top tier.
	return models.RankCatalog[len(models.RankCatalog)-1]
}

// NextRank returns the tier with the smallest MinPoints strictly greater than
// totalPoints. ok is false when totalPoints already sits in the top tier.
func NextRank(totalPoints int64) (models.RankTier, bool) {
	if totalPoints < 0 {
		totalPoints = 0
	}
	for _, tier := range models.RankCatalog {
		if tier.MinPoints > totalPoints {
			return tier, true
		}
	}
	return models.RankTier{}, false
}

// ProgressToNextRank returns the percentage (0-100) of the way from the
// current tier's floor to the next tier's floor. 0 when already at the top.
func ProgressToNextRank(totalPoints int64) int {
	if totalPoints < 0 {
		totalPoints = 0
	}
	current := RankForPoints(totalPoints)
	next, ok := NextRank(totalPoints)
	if !ok {
		return 0
	}
	span := next.MinPoints - current.MinPoints
	if span <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(totalPoints-current.MinPoints) / float64(span)))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}
