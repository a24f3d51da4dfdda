package wisdom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoreNode(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	fresh := GraphNode{HelpfulCount: 1, CreatedAt: now.AddDate(0, 0, -5)}
	assert.InDelta(t, 0.73, ScoreNode(fresh, 1, now), 1e-9)

	// Diversity saturates at ten contributors.
	assert.InDelta(t, 1.0, ScoreNode(fresh, 10, now), 1e-9)
	assert.InDelta(t, 1.0, ScoreNode(fresh, 50, now), 1e-9)

	// Helpfulness is capped at 1 before weighting.
	overHelpful := GraphNode{HelpfulCount: 7, CreatedAt: now.AddDate(0, 0, -5)}
	assert.InDelta(t, 0.73, ScoreNode(overHelpful, 1, now), 1e-9)

	stale := GraphNode{HelpfulCount: 1, CreatedAt: now.AddDate(0, 0, -200)}
	assert.InDelta(t, 0.63, ScoreNode(stale, 1, now), 1e-9)
}

func TestRecencyBoost(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1.0, recencyBoost(now.AddDate(0, 0, -10), now))
	assert.Equal(t, 0.0, recencyBoost(now.AddDate(0, 0, -180), now))
	assert.Equal(t, 0.0, recencyBoost(now.AddDate(0, 0, -365), now))

	// Dead center of the decay range.
	mid := now.AddDate(0, 0, -105)
	assert.InDelta(t, 0.5, recencyBoost(mid, now), 1e-9)
}

func TestWeekStart(t *testing.T) {
	// 2026-03-11 is a Wednesday; its week starts Sunday 2026-03-08.
	wed := time.Date(2026, time.March, 11, 17, 30, 0, 0, time.Local)
	start := WeekStart(wed)
	assert.Equal(t, time.Sunday, start.Weekday())
	assert.Equal(t, 8, start.Day())
	assert.Equal(t, 0, start.Hour())

	// A Sunday is its own week start.
	sun := time.Date(2026, time.March, 8, 23, 59, 0, 0, time.Local)
	assert.Equal(t, start, WeekStart(sun))

	// The next Sunday keys a new week.
	assert.NotEqual(t, start, WeekStart(wed.AddDate(0, 0, 7)))
}
