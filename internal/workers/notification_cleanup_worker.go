package workers

import (
	"context"
	"log"
	"time"

	"github.com/aivahq/aiva-backend/internal/repository"
)

// NotificationCleanupWorker removes read notifications older than the
// configured retention period.
type NotificationCleanupWorker struct {
	Notifications  *repository.NotificationRepo
	RetentionHours int           // how long to keep read notifications (default: 24)
	CheckInterval  time.Duration // how often to run cleanup (default: 1 hour)
}

// Start begins the cleanup loop and blocks until ctx is cancelled.
func (w *NotificationCleanupWorker) Start(ctx context.Context) {
	if w.RetentionHours <= 0 {
		w.RetentionHours = 24
	}
	if w.CheckInterval <= 0 {
		w.CheckInterval = time.Hour
	}

	ticker := time.NewTicker(w.CheckInterval)
	defer ticker.Stop()

	log.Printf("[NotificationCleanupWorker] started (retention=%dh, interval=%s)", w.RetentionHours, w.CheckInterval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[NotificationCleanupWorker] stopped")
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *NotificationCleanupWorker) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-time.Duration(w.RetentionHours) * time.Hour)
	deleted, err := w.Notifications.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[NotificationCleanupWorker] error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[NotificationCleanupWorker] deleted %d old read notifications", deleted)
	}
}
