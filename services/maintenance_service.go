package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"postStreakAPI/internal/apperror"
	"postStreakAPI/internal/store"
	"postStreakAPI/utils"
)

// MaintenanceService owns the scheduled sweeps: pruning lapsed streaks and
// snapshotting the store. Both are scheduling-agnostic; the cron wiring lives
// in the jobs package.
type MaintenanceService struct {
	store     store.StreakStore
	backupDir string
	now       func() time.Time
}

func NewMaintenanceService(st store.StreakStore, backupDir string) *MaintenanceService {
	return &MaintenanceService{
		store:     st,
		backupDir: backupDir,
		now:       time.Now,
	}
}

// ReconcileStreaks deletes every user whose last qualifying post is neither
// today nor yesterday (UTC). Runs shortly after the UTC day boundary so a user
// who posted yesterday but not yet today is not prematurely evicted.
func (s *MaintenanceService) ReconcileStreaks(ctx context.Context) error {
	yesterday := utils.DayUTC(s.now()).AddDate(0, 0, -1)

	deleted, err := s.store.DeleteLapsed(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrPersistence, err)
	}

	reconcilerDeleted.Add(float64(deleted))
	log.Printf("ReconcileStreaks: removed %d lapsed streaks", deleted)
	return nil
}

// BackupStore writes a timestamped snapshot of the store into the configured
// backup directory.
func (s *MaintenanceService) BackupStore(ctx context.Context) error {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup dir %s: %w", s.backupDir, err)
	}

	dest := filepath.Join(s.backupDir,
		fmt.Sprintf("streaks-%s.db", s.now().UTC().Format("20060102T150405Z")))

	if err := s.store.BackupTo(ctx, dest); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrPersistence, err)
	}

	log.Printf("BackupStore: wrote snapshot %s", dest)
	return nil
}
