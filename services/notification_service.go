package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"postStreakAPI/internal/chat"
	"postStreakAPI/internal/store"
)

// NotificationService DMs users their updated score and leaderboard rank
// after a successful score change. Delivery failures are logged and swallowed;
// the score update already happened and must never be undone by a DM problem.
type NotificationService struct {
	store          store.StreakStore
	chat           chat.Client
	leaderboardURL string
}

func NewNotificationService(st store.StreakStore, chatClient chat.Client, leaderboardURL string) *NotificationService {
	return &NotificationService{
		store:          st,
		chat:           chatClient,
		leaderboardURL: leaderboardURL,
	}
}

// NotifyScoreChange reads the committed score back, computes the tie-aware
// rank and sends the congratulation DM.
func (s *NotificationService) NotifyScoreChange(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	current, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		notificationsTotal.WithLabelValues("failed").Inc()
		log.Printf("NotifyScoreChange: failed to read streak for %s: %v", userID, err)
		return
	}
	if current == nil {
		notificationsTotal.WithLabelValues("failed").Inc()
		log.Printf("NotifyScoreChange: no streak row for %s, skipping", userID)
		return
	}

	above, err := s.store.CountScoresAbove(ctx, current.Score)
	if err != nil {
		notificationsTotal.WithLabelValues("failed").Inc()
		log.Printf("NotifyScoreChange: failed to compute rank for %s: %v", userID, err)
		return
	}
	rank := above + 1

	channelID, err := s.chat.OpenDM(ctx, userID)
	if err != nil {
		// User may have DMs disabled. Logged, never escalated.
		notificationsTotal.WithLabelValues("failed").Inc()
		log.Printf("NotifyScoreChange: could not open DM with %s: %v", userID, err)
		return
	}

	text := formatScoreMessage(current.Score, rank, s.leaderboardURL)
	if err := s.chat.PostMessage(ctx, channelID, text); err != nil {
		notificationsTotal.WithLabelValues("failed").Inc()
		log.Printf("NotifyScoreChange: could not DM %s: %v", userID, err)
		return
	}

	notificationsTotal.WithLabelValues("sent").Inc()
}

func formatScoreMessage(score, rank int, leaderboardURL string) string {
	noun := "points"
	if score == 1 {
		noun = "point"
	}
	return fmt.Sprintf("Nice streak! You now have %d %s, putting you at #%d on the leaderboard: %s",
		score, noun, rank, leaderboardURL)
}
