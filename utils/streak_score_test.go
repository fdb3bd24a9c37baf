package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postStreakAPI/internal/types/streak"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func state(score int, lastPost time.Time) *streak.UserStreak {
	return &streak.UserStreak{
		UserID:       "U123",
		Username:     "alice",
		Score:        score,
		LastPostDate: &lastPost,
	}
}

func TestDecideStreak_FirstPost(t *testing.T) {
	d := DecideStreak(nil, day(2026, time.March, 1))

	assert.True(t, d.Changed)
	assert.Equal(t, 1, d.Score)
	assert.Equal(t, day(2026, time.March, 1), d.LastPostDate)
}

func TestDecideStreak_MissingPostDateTreatedAsFirstPost(t *testing.T) {
	d := DecideStreak(&streak.UserStreak{UserID: "U123", Score: 7}, day(2026, time.March, 1))

	assert.True(t, d.Changed)
	assert.Equal(t, 1, d.Score)
}

func TestDecideStreak_SameDayDuplicate(t *testing.T) {
	d := DecideStreak(state(3, day(2026, time.March, 1)), day(2026, time.March, 1))

	assert.False(t, d.Changed)
	assert.Equal(t, 3, d.Score)
	assert.Equal(t, day(2026, time.March, 1), d.LastPostDate)
}

func TestDecideStreak_NextDayIncrements(t *testing.T) {
	d := DecideStreak(state(3, day(2026, time.March, 1)), day(2026, time.March, 2))

	assert.True(t, d.Changed)
	assert.Equal(t, 4, d.Score)
	assert.Equal(t, day(2026, time.March, 2), d.LastPostDate)
}

func TestDecideStreak_GapResetsToOne(t *testing.T) {
	// posted day 2, next post day 4: gap of 2 days breaks the streak
	d := DecideStreak(state(2, day(2026, time.March, 2)), day(2026, time.March, 4))

	assert.True(t, d.Changed)
	assert.Equal(t, 1, d.Score)
	assert.Equal(t, day(2026, time.March, 4), d.LastPostDate)
}

func TestDecideStreak_OutOfOrderEventIsNoOp(t *testing.T) {
	d := DecideStreak(state(5, day(2026, time.March, 10)), day(2026, time.March, 8))

	assert.False(t, d.Changed)
	assert.Equal(t, 5, d.Score)
	assert.Equal(t, day(2026, time.March, 10), d.LastPostDate)
}

func TestDecideStreak_TimeOfDayIgnored(t *testing.T) {
	last := day(2026, time.March, 1)
	late := time.Date(2026, time.March, 2, 23, 59, 59, 0, time.UTC)

	d := DecideStreak(state(1, last), late)

	assert.True(t, d.Changed)
	assert.Equal(t, 2, d.Score)
	assert.Equal(t, day(2026, time.March, 2), d.LastPostDate)
}

func TestDecideStreak_LocalTimezoneDoesNotShiftDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 20:00 New York on March 1 is already March 2 in UTC.
	last := day(2026, time.March, 1)
	evening := time.Date(2026, time.March, 1, 20, 0, 0, 0, loc)

	d := DecideStreak(state(1, last), evening)

	assert.True(t, d.Changed)
	assert.Equal(t, 2, d.Score)
}

func TestDecideStreak_NeverDecreasesScoreOrMovesDateBack(t *testing.T) {
	last := day(2026, time.March, 15)
	for gap := -10; gap <= 10; gap++ {
		current := state(4, last)
		d := DecideStreak(current, last.AddDate(0, 0, gap))

		if d.Changed {
			assert.GreaterOrEqual(t, d.Score, 1, "gap %d", gap)
			assert.False(t, d.LastPostDate.Before(last), "gap %d moved date backward", gap)
		} else {
			assert.Equal(t, 4, d.Score, "gap %d", gap)
			assert.Equal(t, last, d.LastPostDate, "gap %d", gap)
		}
	}
}

func TestGapDays(t *testing.T) {
	assert.Equal(t, 0, GapDays(day(2026, time.March, 1), day(2026, time.March, 1)))
	assert.Equal(t, 1, GapDays(day(2026, time.March, 1), day(2026, time.March, 2)))
	assert.Equal(t, 31, GapDays(day(2026, time.March, 1), day(2026, time.April, 1)))
	assert.Equal(t, -1, GapDays(day(2026, time.March, 2), day(2026, time.March, 1)))
}

func TestDayUTC(t *testing.T) {
	ts := time.Date(2026, time.March, 1, 17, 42, 5, 123, time.UTC)
	assert.Equal(t, day(2026, time.March, 1), DayUTC(ts))
}
