package models

import "math"

// RankID identifies a rank tier
type RankID string

const (
	RankNovato    RankID = "NOVATO"
	RankHavana    RankID = "HAVANA"
	RankEjecutivo RankID = "EJECUTIVO"
	RankMagnate   RankID = "MAGNATE"
	RankLeyenda   RankID = "LEYENDA"
)

// RankTier is a static catalog entry: a named band of point totals conferring
// a badge and benefits. Tiers are contiguous and non-overlapping; MinPoints
// of tier i+1 equals MaxPoints+1 of tier i, and the last tier's MaxPoints is
// unbounded so every non-negative total resolves to exactly one tier.
type RankTier struct {
	Rank        RankID   `json:"rank"`
	MinPoints   int64    `json:"min_points"`
	MaxPoints   int64    `json:"max_points"` // math.MaxInt64 on the top tier
	Badge       string   `json:"badge"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
}

// RankCatalog is ordered by MinPoints ascending. Loaded once; never mutated.
var RankCatalog = []RankTier{
	{
		Rank:        RankNovato,
		MinPoints:   0,
		MaxPoints:   999,
		Badge:       "🌱",
		Description: "Just getting started",
		Benefits:    []string{"Access to all public contests"},
	},
	{
		Rank:        RankHavana,
		MinPoints:   1000,
		MaxPoints:   2499,
		Badge:       "🥉",
		Description: "Regular player",
		Benefits:    []string{"Access to all public contests", "Early access to featured contests"},
	},
	{
		Rank:        RankEjecutivo,
		MinPoints:   2500,
		MaxPoints:   4999,
		Badge:       "🥈",
		Description: "Seasoned competitor",
		Benefits:    []string{"Early access to featured contests", "+1 extra attempt on featured contests"},
	},
	{
		Rank:        RankMagnate,
		MinPoints:   5000,
		MaxPoints:   9999,
		Badge:       "🥇",
		Description: "Top-tier competitor",
		Benefits:    []string{"+1 extra attempt on featured contests", "Exclusive prize drops"},
	},
	{
		Rank:        RankLeyenda,
		MinPoints:   10000,
		MaxPoints:   math.MaxInt64,
		Badge:       "🏆",
		Description: "Platform legend",
		Benefits:    []string{"Exclusive prize drops", "Invitations to sponsor events"},
	},
}
