package services

import (
	"os"
	"path/filepath"
	"time"

	"jadwali_go/config"
	"jadwali_go/database"
	"jadwali_go/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// uploadAuditRetention is how long TimetableUpload audit rows are kept. The
// rows are metadata only; the parsed data itself expires with the store TTL.
const uploadAuditRetention = 90 * 24 * time.Hour

// CleanupService periodically prunes expired parsed timetables, stale upload
// temp files and old audit rows.
type CleanupService struct {
	cron  *cron.Cron
	store *TimetableStore
}

// NewCleanupService creates a cleanup service bound to a timetable store.
func NewCleanupService(store *TimetableStore) *CleanupService {
	return &CleanupService{
		cron:  cron.New(),
		store: store,
	}
}

// Start registers the cleanup jobs and starts the scheduler.
func (s *CleanupService) Start() {
	if _, err := s.cron.AddFunc("@every 15m", s.pruneStore); err != nil {
		logrus.WithError(err).Error("Failed to schedule store pruning")
	}
	if _, err := s.cron.AddFunc("@hourly", s.pruneTempFiles); err != nil {
		logrus.WithError(err).Error("Failed to schedule temp file pruning")
	}
	if _, err := s.cron.AddFunc("@daily", s.pruneAuditRows); err != nil {
		logrus.WithError(err).Error("Failed to schedule audit row pruning")
	}
	s.cron.Start()
	logrus.Info("Cleanup scheduler started")
}

// Stop halts the scheduler. Running jobs finish first.
func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *CleanupService) pruneStore() {
	if removed := s.store.PruneExpired(); removed > 0 {
		logrus.WithField("removed", removed).Info("Pruned expired timetables from store")
	}
}

// pruneTempFiles removes upload temp files older than the store TTL.
func (s *CleanupService) pruneTempFiles() {
	dir := filepath.Join(os.TempDir(), "jadwali-uploads")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warn("Failed to scan upload temp directory")
		}
		return
	}

	cutoff := time.Now().Add(-config.AppConfig.TimetableTTL)
	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			logrus.WithError(err).WithField("file", entry.Name()).Warn("Failed to remove stale temp file")
			continue
		}
		removed++
	}
	if removed > 0 {
		logrus.WithField("removed", removed).Info("Removed stale upload temp files")
	}
}

func (s *CleanupService) pruneAuditRows() {
	if database.DB == nil {
		return
	}
	cutoff := time.Now().Add(-uploadAuditRetention)
	result := database.DB.Where("created_at < ?", cutoff).Delete(&models.TimetableUpload{})
	if result.Error != nil {
		logrus.WithError(result.Error).Warn("Failed to prune old upload audit rows")
		return
	}
	if result.RowsAffected > 0 {
		logrus.WithField("removed", result.RowsAffected).Info("Pruned old upload audit rows")
	}
}
