package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"postStreakAPI/internal/types/leaderboard"
	"postStreakAPI/internal/types/streak"
)

// last_post_date is stored at day granularity, always UTC.
const dateLayout = "2006-01-02"

// GetStreak returns the streak row for a user, or nil when absent.
func (s *Store) GetStreak(ctx context.Context, userID string) (*streak.UserStreak, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, username, score, last_post_date, profile_image, created_at, updated_at
		FROM streaks
		WHERE user_id = ?
	`, userID)
	return scanStreak(row)
}

// UpdateStreak runs a read-modify-write for one user inside a single
// transaction. apply receives the current row (nil when absent) and returns
// the next row plus whether to write it. A concurrent reconciler sweep can
// never slip between the read and the write, and two events for one identity
// can never both observe the pre-change state.
func (s *Store) UpdateStreak(ctx context.Context, userID string, apply func(current *streak.UserStreak) (*streak.UserStreak, bool)) (*streak.UserStreak, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT user_id, username, score, last_post_date, profile_image, created_at, updated_at
		FROM streaks
		WHERE user_id = ?
	`, userID)
	current, err := scanStreak(row)
	if err != nil {
		return nil, false, err
	}

	next, write := apply(current)
	if !write {
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return current, false, nil
	}

	if next == nil || next.LastPostDate == nil {
		return nil, false, fmt.Errorf("refusing to write streak without a post date for user %s", userID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO streaks (user_id, username, score, last_post_date, profile_image)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id)
		DO UPDATE SET
			username = excluded.username,
			score = excluded.score,
			last_post_date = excluded.last_post_date,
			profile_image = excluded.profile_image,
			updated_at = CURRENT_TIMESTAMP
	`, next.UserID, next.Username, next.Score, next.LastPostDate.Format(dateLayout), next.ProfileImage)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert streak for user %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return next, true, nil
}

// DeleteLapsed removes every row whose last post date is strictly before
// oldestKept and reports how many rows went away.
func (s *Store) DeleteLapsed(ctx context.Context, oldestKept time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM streaks WHERE last_post_date < ?
	`, oldestKept.UTC().Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete lapsed streaks: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted streaks: %w", err)
	}
	return deleted, nil
}

// ListByScore returns all rows ordered by score descending. Ties order by
// username so the leaderboard is stable between reads.
func (s *Store) ListByScore(ctx context.Context) ([]*leaderboard.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, score, profile_image
		FROM streaks
		ORDER BY score DESC, username ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list streaks: %w", err)
	}
	defer rows.Close()

	entries := []*leaderboard.Entry{}
	for rows.Next() {
		entry := &leaderboard.Entry{}
		if err := rows.Scan(&entry.Username, &entry.Points, &entry.ProfilePicture); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard rows: %w", err)
	}

	return entries, nil
}

// CountScoresAbove returns how many distinct scores are strictly greater than
// the given score. Rank is 1 + this count, so tied users share a rank.
func (s *Store) CountScoresAbove(ctx context.Context, score int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT score) FROM streaks WHERE score > ?
	`, score).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scores above %d: %w", score, err)
	}
	return count, nil
}

// BackupTo writes a consistent snapshot of the database to destPath.
// VACUUM INTO is safe against the live file even mid-write, unlike a plain
// file copy of a WAL-mode database.
func (s *Store) BackupTo(ctx context.Context, destPath string) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("failed to back up store to %s: %w", destPath, err)
	}
	return nil
}

func scanStreak(row *sql.Row) (*streak.UserStreak, error) {
	var (
		us       streak.UserStreak
		lastPost string
	)
	err := row.Scan(&us.UserID, &us.Username, &us.Score, &lastPost, &us.ProfileImage, &us.CreatedAt, &us.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan streak: %w", err)
	}

	date, err := time.ParseInLocation(dateLayout, lastPost, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid last_post_date %q for user %s: %w", lastPost, us.UserID, err)
	}
	us.LastPostDate = &date

	return &us, nil
}
