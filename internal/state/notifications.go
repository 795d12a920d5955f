package state

import (
	"context"

	"github.com/aivahq/aiva-backend/internal/models"
)

type NotificationRepo interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	Upsert(ctx context.Context, n models.Notification) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	DeleteRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type NotificationStore struct {
	repo   NotificationRepo
	events Publisher
}

func NewNotificationStore(repo NotificationRepo, events Publisher) *NotificationStore {
	if events == nil {
		events = NopPublisher{}
	}
	return &NotificationStore{repo: repo, events: events}
}

func (s *NotificationStore) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *NotificationStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationStore) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Add applies an externally delivered notification keyed by id.
// Duplicate and out-of-order deliveries are tolerated: an id seen
// before writes nothing and emits no event.
func (s *NotificationStore) Add(ctx context.Context, n models.Notification) error {
	inserted, err := s.repo.Upsert(ctx, n)
	if err != nil {
		return err
	}
	if inserted {
		s.events.Publish(n.UserID, Event{Type: "notification.created", Payload: n})
	}
	return nil
}

// DeleteAllRead clears the user's read notifications and reports how
// many were removed.
func (s *NotificationStore) DeleteAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteRead(ctx, userID)
}

func (s *NotificationStore) create(ctx context.Context, n models.Notification) (models.Notification, error) {
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return models.Notification{}, err
	}
	s.events.Publish(created.UserID, Event{Type: "notification.created", Payload: created})
	return created, nil
}

func strp(s string) *string { return &s }

// NotifyPostPublished tells the user a post went live.
func (s *NotificationStore) NotifyPostPublished(ctx context.Context, userID, postTitle, platform string) (models.Notification, error) {
	return s.create(ctx, models.Notification{
		UserID:    userID,
		Type:      "success",
		Title:     "Post Published",
		Message:   `Your post "` + postTitle + `" has been published on ` + platform + `.`,
		ActionURL: strp("/posts"),
	})
}

func (s *NotificationStore) NotifySubscriptionUpgrade(ctx context.Context, userID, newPlan string) (models.Notification, error) {
	return s.create(ctx, models.Notification{
		UserID:    userID,
		Type:      "success",
		Title:     "Subscription Upgraded",
		Message:   "Your subscription has been upgraded to " + newPlan + ". Enjoy your new features!",
		ActionURL: strp("/settings/subscription"),
	})
}

func (s *NotificationStore) NotifyLimitReached(ctx context.Context, userID, limitType string) (models.Notification, error) {
	return s.create(ctx, models.Notification{
		UserID:    userID,
		Type:      "warning",
		Title:     "Limit Reached",
		Message:   "You've reached your " + limitType + " limit. Consider upgrading your plan for more features.",
		ActionURL: strp("/settings/subscription"),
	})
}

func (s *NotificationStore) NotifyError(ctx context.Context, userID, errorMessage string) (models.Notification, error) {
	return s.create(ctx, models.Notification{
		UserID:    userID,
		Type:      "error",
		Title:     "Error Occurred",
		Message:   errorMessage,
		ActionURL: strp("/support"),
	})
}

func (s *NotificationStore) NotifyWelcome(ctx context.Context, userID string) (models.Notification, error) {
	return s.create(ctx, models.Notification{
		UserID:    userID,
		Type:      "info",
		Title:     "Welcome to Aiva!",
		Message:   "Welcome to Aiva! Start by creating your first company profile and generating amazing social media content.",
		ActionURL: strp("/companies/new"),
	})
}
