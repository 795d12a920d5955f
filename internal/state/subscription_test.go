package state

import (
	"context"
	"testing"
	"time"

	"github.com/aivahq/aiva-backend/internal/entitlement"
	"github.com/aivahq/aiva-backend/internal/models"
	"github.com/aivahq/aiva-backend/internal/repository"
)

type fakeAccountRepo struct {
	tiers map[string]models.SubscriptionTier
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (models.Account, error) {
	tier, ok := f.tiers[id]
	if !ok {
		return models.Account{}, repository.ErrNotFound
	}
	return models.Account{ID: id, Subscription: tier}, nil
}

func (f *fakeAccountRepo) SetSubscription(_ context.Context, id string, tier models.SubscriptionTier) error {
	if _, ok := f.tiers[id]; !ok {
		return repository.ErrNotFound
	}
	f.tiers[id] = tier
	return nil
}

type fixedUsage struct {
	stats models.UsageStats
}

func (f fixedUsage) UsageStats(_ context.Context, _ string, _ time.Time) (models.UsageStats, error) {
	return f.stats, nil
}

func TestSubscriptionSetTierNotifiesOnPaidUpgrade(t *testing.T) {
	accounts := &fakeAccountRepo{tiers: map[string]models.SubscriptionTier{"u1": models.TierFree}}
	notes := &fakeNotificationRepo{}
	pub := &recordingPublisher{}
	subs := NewSubscriptionStore(accounts, fixedUsage{}, NewNotificationStore(notes, pub), pub)
	ctx := context.Background()

	plan, err := subs.SetTier(ctx, "u1", models.TierProfessional)
	if err != nil {
		t.Fatalf("SetTier: %v", err)
	}
	if plan.Tier != models.TierProfessional {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if accounts.tiers["u1"] != models.TierProfessional {
		t.Fatalf("tier not persisted")
	}
	if len(notes.notifications) != 1 || notes.notifications[0].Title != "Subscription Upgraded" {
		t.Fatalf("expected upgrade notification, got %+v", notes.notifications)
	}
	var sawUpdate bool
	for _, e := range pub.events {
		if e.Type == "subscription.updated" {
			sawUpdate = true
		}
	}
	if !sawUpdate {
		t.Fatalf("expected subscription.updated event")
	}
}

func TestSubscriptionSetTierFreeIsSilent(t *testing.T) {
	accounts := &fakeAccountRepo{tiers: map[string]models.SubscriptionTier{"u1": models.TierStarter}}
	notes := &fakeNotificationRepo{}
	subs := NewSubscriptionStore(accounts, fixedUsage{}, NewNotificationStore(notes, nil), nil)

	if _, err := subs.SetTier(context.Background(), "u1", models.TierFree); err != nil {
		t.Fatalf("SetTier: %v", err)
	}
	if len(notes.notifications) != 0 {
		t.Fatalf("downgrade must not notify, got %+v", notes.notifications)
	}
}

func TestSubscriptionCan(t *testing.T) {
	accounts := &fakeAccountRepo{tiers: map[string]models.SubscriptionTier{"u1": models.TierFree}}
	subs := NewSubscriptionStore(accounts, fixedUsage{stats: models.UsageStats{CompaniesCount: 1}}, nil, nil)

	ok, err := subs.Can(context.Background(), "u1", entitlement.ActionCreateCompany)
	if err != nil {
		t.Fatalf("Can: %v", err)
	}
	if ok {
		t.Fatalf("free tier with one company must be refused")
	}

	if _, err := subs.Can(context.Background(), "missing", entitlement.ActionCreatePost); err != repository.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubscriptionUsagePercentages(t *testing.T) {
	subs := NewSubscriptionStore(&fakeAccountRepo{}, fixedUsage{}, nil, nil)
	usage := models.UsageStats{PostsThisMonth: 5, StorageUsed: 50 * 1024 * 1024}

	got := subs.UsagePercentages(models.TierFree, usage)
	if got["posts"] != 50 {
		t.Fatalf("expected posts 50%%, got %v", got["posts"])
	}
	if got["storage"] != 50 {
		t.Fatalf("expected storage 50%%, got %v", got["storage"])
	}
	if got["companies"] != 0 {
		t.Fatalf("expected companies 0%%, got %v", got["companies"])
	}
}
