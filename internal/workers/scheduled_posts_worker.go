package workers

import (
	"context"
	"log"
	"time"

	"github.com/aivahq/aiva-backend/internal/models"
	"github.com/aivahq/aiva-backend/internal/repository"
	"github.com/aivahq/aiva-backend/internal/state"
)

// ScheduledPostsWorker publishes posts whose scheduled time has passed,
// then notifies the owner and pushes a feed event.
type ScheduledPostsWorker struct {
	Posts         *repository.PostRepo
	Notifications *state.NotificationStore
	Events        state.Publisher
	CheckInterval time.Duration // default: 30s
}

// Start begins the publish loop and blocks until ctx is cancelled.
func (w *ScheduledPostsWorker) Start(ctx context.Context) {
	if w.CheckInterval <= 0 {
		w.CheckInterval = 30 * time.Second
	}
	if w.Events == nil {
		w.Events = state.NopPublisher{}
	}

	ticker := time.NewTicker(w.CheckInterval)
	defer ticker.Stop()

	log.Printf("[ScheduledPostsWorker] started (interval=%s)", w.CheckInterval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[ScheduledPostsWorker] stopped")
			return
		case <-ticker.C:
			if n, err := w.RunOnce(ctx); err != nil {
				log.Printf("[ScheduledPostsWorker] error: %v", err)
			} else if n > 0 {
				log.Printf("[ScheduledPostsWorker] published %d due posts", n)
			}
		}
	}
}

// RunOnce claims and publishes every due post. The claim happens in a
// single UPDATE so concurrent instances never publish the same post twice.
func (w *ScheduledPostsWorker) RunOnce(ctx context.Context) (int, error) {
	published, err := w.Posts.ClaimDue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	for _, post := range published {
		w.Events.Publish(post.UserID, state.Event{Type: "post.published", Payload: post})
		title := postTitle(post)
		if _, err := w.Notifications.NotifyPostPublished(ctx, post.UserID, title, string(post.Platform)); err != nil {
			log.Printf("[ScheduledPostsWorker] notify failed post=%s err=%v", post.ID, err)
		}
	}
	return len(published), nil
}

func postTitle(post models.Post) string {
	title := post.Content
	if post.Title != nil && *post.Title != "" {
		title = *post.Title
	}
	if runes := []rune(title); len(runes) > 60 {
		title = string(runes[:60])
	}
	return title
}
