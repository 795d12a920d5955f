package state

import (
	"context"
	"time"

	"github.com/aivahq/aiva-backend/internal/entitlement"
	"github.com/aivahq/aiva-backend/internal/models"
)

type AccountRepo interface {
	GetByID(ctx context.Context, id string) (models.Account, error)
	SetSubscription(ctx context.Context, id string, tier models.SubscriptionTier) error
}

type UsageSource interface {
	UsageStats(ctx context.Context, userID string, now time.Time) (models.UsageStats, error)
}

// SubscriptionStore resolves a user's plan and usage and applies tier
// changes, notifying the user on paid upgrades.
type SubscriptionStore struct {
	accounts      AccountRepo
	usage         UsageSource
	notifications *NotificationStore
	events        Publisher
}

func NewSubscriptionStore(accounts AccountRepo, usage UsageSource, notifications *NotificationStore, events Publisher) *SubscriptionStore {
	if events == nil {
		events = NopPublisher{}
	}
	return &SubscriptionStore{accounts: accounts, usage: usage, notifications: notifications, events: events}
}

func (s *SubscriptionStore) Tier(ctx context.Context, userID string) (models.SubscriptionTier, error) {
	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return account.Subscription, nil
}

func (s *SubscriptionStore) Plan(ctx context.Context, userID string) (entitlement.Plan, error) {
	tier, err := s.Tier(ctx, userID)
	if err != nil {
		return entitlement.Plan{}, err
	}
	return entitlement.GetPlan(tier), nil
}

func (s *SubscriptionStore) Usage(ctx context.Context, userID string) (models.UsageStats, error) {
	return s.usage.UsageStats(ctx, userID, time.Now())
}

// Can checks one action against the user's live plan and usage.
func (s *SubscriptionStore) Can(ctx context.Context, userID string, action entitlement.Action) (bool, error) {
	tier, err := s.Tier(ctx, userID)
	if err != nil {
		return false, err
	}
	usage, err := s.Usage(ctx, userID)
	if err != nil {
		return false, err
	}
	return entitlement.CanPerform(tier, action, usage), nil
}

// UsagePercentages reports consumption per quota dimension, 0-100.
func (s *SubscriptionStore) UsagePercentages(tier models.SubscriptionTier, usage models.UsageStats) map[string]float64 {
	dims := []entitlement.Dimension{
		entitlement.DimCompanies,
		entitlement.DimPosts,
		entitlement.DimAIGenerations,
		entitlement.DimStorage,
	}
	out := make(map[string]float64, len(dims))
	for _, d := range dims {
		out[string(d)] = entitlement.UsagePercentage(tier, d, usage)
	}
	return out
}

// SetTier changes the user's plan. Paid tiers trigger an upgrade
// notification; moving to free is silent.
func (s *SubscriptionStore) SetTier(ctx context.Context, userID string, tier models.SubscriptionTier) (entitlement.Plan, error) {
	if err := s.accounts.SetSubscription(ctx, userID, tier); err != nil {
		return entitlement.Plan{}, err
	}
	plan := entitlement.GetPlan(tier)
	s.events.Publish(userID, Event{Type: "subscription.updated", Payload: map[string]string{"tier": string(tier)}})
	if tier != models.TierFree && s.notifications != nil {
		if _, err := s.notifications.NotifySubscriptionUpgrade(ctx, userID, plan.Name); err != nil {
			return entitlement.Plan{}, err
		}
	}
	return plan, nil
}
