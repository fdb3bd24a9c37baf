package utils

import (
	"time"

	"postStreakAPI/internal/types/streak"
)

// StreakDecision is the outcome of applying a qualifying post to a user's
// current streak state. When Changed is false the caller must leave the
// stored row untouched.
type StreakDecision struct {
	Score        int
	LastPostDate time.Time
	Changed      bool
}

// DayUTC truncates a time to its UTC calendar day. All streak math happens on
// UTC day boundaries so local-timezone drift can never split or merge days.
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// GapDays returns the whole-calendar-day difference between two times in UTC.
func GapDays(from, to time.Time) int {
	return int(DayUTC(to).Sub(DayUTC(from)).Hours() / 24)
}

// DecideStreak computes the next streak state for a qualifying post on
// eventDate. Pure function, no I/O:
//   - no prior state (or no recorded post date): score 1, date set
//   - same day: no-op (duplicate event)
//   - exactly one day later: score + 1
//   - more than one day later: streak broken, score resets to 1
//   - event date before the recorded date: no-op, the score never decreases
//     and the date never moves backward (replayed or late-delivered events)
func DecideStreak(current *streak.UserStreak, eventDate time.Time) StreakDecision {
	day := DayUTC(eventDate)

	if current == nil || current.LastPostDate == nil {
		return StreakDecision{Score: 1, LastPostDate: day, Changed: true}
	}

	switch gap := GapDays(*current.LastPostDate, day); {
	case gap == 0:
		return StreakDecision{Score: current.Score, LastPostDate: DayUTC(*current.LastPostDate), Changed: false}
	case gap == 1:
		return StreakDecision{Score: current.Score + 1, LastPostDate: day, Changed: true}
	case gap > 1:
		return StreakDecision{Score: 1, LastPostDate: day, Changed: true}
	default:
		return StreakDecision{Score: current.Score, LastPostDate: DayUTC(*current.LastPostDate), Changed: false}
	}
}
