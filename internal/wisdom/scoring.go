package wisdom

import (
	"math"
	"time"
)

const (
	// Score weights: proven helpfulness dominates, diversity across
	// contributing users is worth half of that, and freshness tops up
	// the remainder.
	helpfulWeight   = 0.6
	diversityWeight = 0.3
	recencyWeight   = 0.1

	// Diversity saturates at this many distinct contributors.
	diversitySaturation = 10

	// Recency boost is full inside the window, then decays linearly to
	// zero at the horizon.
	recencyWindowDays  = 30
	recencyHorizonDays = 180

	// MaxWeeklyPromotions is the per-user anti-gaming cap on accepted
	// promotions per calendar week.
	MaxWeeklyPromotions = 5

	// DefaultPromotionThreshold is the minimum normalized confidence a
	// node needs before the pipeline will consider it.
	DefaultPromotionThreshold = 0.85
)

// ScoreNode computes a pattern's success score from the contributing
// node, the number of distinct contributing users, and the node's age.
func ScoreNode(node GraphNode, userDiversity int, now time.Time) float64 {
	helpful := math.Min(node.HelpfulCount, 1)
	diversity := math.Min(float64(userDiversity)/diversitySaturation, 1)
	return helpfulWeight*helpful +
		diversityWeight*diversity +
		recencyWeight*recencyBoost(node.CreatedAt, now)
}

// recencyBoost is 1.0 inside the recency window, decays linearly
// between the window and the horizon, and is 0 beyond the horizon.
func recencyBoost(createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	switch {
	case ageDays < recencyWindowDays:
		return 1.0
	case ageDays >= recencyHorizonDays:
		return 0
	default:
		return (recencyHorizonDays - ageDays) / (recencyHorizonDays - recencyWindowDays)
	}
}

// WeekStart returns the local calendar Sunday at midnight for t, the
// boundary used by the weekly promotion log.
func WeekStart(t time.Time) time.Time {
	t = t.Local()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}
