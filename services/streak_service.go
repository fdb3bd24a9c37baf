package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"postStreakAPI/internal/apperror"
	"postStreakAPI/internal/chat"
	"postStreakAPI/internal/store"
	"postStreakAPI/internal/types/event"
	"postStreakAPI/internal/types/leaderboard"
	"postStreakAPI/internal/types/streak"
	"postStreakAPI/utils"
)

// ScoreNotifier is the one capability the intake needs from the notifier.
type ScoreNotifier interface {
	NotifyScoreChange(ctx context.Context, userID string)
}

// StreakService is the event intake pipeline: filter the inbound message,
// resolve the acting user, apply the streak decision inside a per-identity
// critical section, then hand off to the notifier.
type StreakService struct {
	store    store.StreakStore
	chat     chat.Client
	notifier ScoreNotifier
	channel  string
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStreakService(st store.StreakStore, chatClient chat.Client, notifier ScoreNotifier, targetChannel string) *StreakService {
	return &StreakService{
		store:    st,
		chat:     chatClient,
		notifier: notifier,
		channel:  targetChannel,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// HandleMessage processes one inbound message event. Events that do not
// qualify are dropped without touching the store. Every failure is terminal
// for this event; Slack redelivery is unreliable and a replayed event is
// already a same-day no-op.
func (s *StreakService) HandleMessage(ctx context.Context, msg event.Message) error {
	if msg.UserID == "" || msg.Channel == "" || msg.TS == "" {
		eventsTotal.WithLabelValues(outcomeMalformed).Inc()
		err := fmt.Errorf("%w: missing user, channel or ts", apperror.ErrMalformedEvent)
		log.Printf("HandleMessage: dropping event: %v", err)
		return err
	}

	// Qualification filters, in order, short-circuiting on first match.
	if msg.BotID != "" || msg.Subtype == "bot_message" {
		eventsTotal.WithLabelValues(outcomeFiltered).Inc()
		return nil
	}
	if msg.Channel != s.channel {
		eventsTotal.WithLabelValues(outcomeFiltered).Inc()
		return nil
	}
	if msg.ThreadTS != "" && msg.ThreadTS != msg.TS {
		eventsTotal.WithLabelValues(outcomeFiltered).Inc()
		return nil
	}

	profile, err := s.chat.ResolveUser(ctx, msg.UserID)
	if err != nil {
		eventsTotal.WithLabelValues(outcomeLookupFailed).Inc()
		log.Printf("HandleMessage: dropping event %s for user %s: %v", msg.TS, msg.UserID, err)
		return err
	}

	// Two events for the same identity must never interleave their
	// read-modify-write. Distinct identities proceed in parallel.
	lock := s.userLock(profile.UserID)
	lock.Lock()
	defer lock.Unlock()

	eventDate := s.now().UTC()
	updated, changed, err := s.store.UpdateStreak(ctx, profile.UserID, func(current *streak.UserStreak) (*streak.UserStreak, bool) {
		decision := utils.DecideStreak(current, eventDate)
		if !decision.Changed {
			return current, false
		}
		return &streak.UserStreak{
			UserID:       profile.UserID,
			Username:     profile.Username,
			Score:        decision.Score,
			LastPostDate: &decision.LastPostDate,
			ProfileImage: profile.ProfileImage,
		}, true
	})
	if err != nil {
		eventsTotal.WithLabelValues(outcomePersistFailed).Inc()
		log.Printf("HandleMessage: failed to persist streak for %s: %v", profile.UserID, err)
		return fmt.Errorf("%w: %v", apperror.ErrPersistence, err)
	}

	if !changed {
		eventsTotal.WithLabelValues(outcomeDuplicate).Inc()
		return nil
	}

	eventsTotal.WithLabelValues(outcomeScored).Inc()
	log.Printf("HandleMessage: %s (%s) now at %d, last post %s",
		updated.Username, updated.UserID, updated.Score, updated.LastPostDate.Format("2006-01-02"))

	// Fire-and-forget: the score change is committed, a failed DM never
	// rolls it back or fails the event.
	if s.notifier != nil {
		go s.notifier.NotifyScoreChange(context.Background(), profile.UserID)
	}

	return nil
}

// Leaderboard returns all streaks ordered by score with tie-aware ranks:
// users sharing a score share a rank.
func (s *StreakService) Leaderboard(ctx context.Context) (*leaderboard.Leaderboard, error) {
	entries, err := s.store.ListByScore(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrPersistence, err)
	}

	rank := 0
	prevPoints := -1
	for _, entry := range entries {
		if entry.Points != prevPoints {
			rank++
			prevPoints = entry.Points
		}
		entry.Rank = rank
	}

	return &leaderboard.Leaderboard{
		Entries:    entries,
		TotalUsers: len(entries),
	}, nil
}

func (s *StreakService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, exists := s.locks[userID]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
