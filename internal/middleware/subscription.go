package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aivahq/aiva-backend/internal/entitlement"
	"github.com/aivahq/aiva-backend/internal/models"
	"github.com/aivahq/aiva-backend/internal/repository"
	"github.com/aivahq/aiva-backend/internal/state"
)

// SubscriptionEnforcer blocks quota-bounded writes once the user's plan
// limits are exhausted. Each refusal also leaves a warning notification
// pointing the user at the upgrade page.
type SubscriptionEnforcer struct {
	Store         *repository.Store
	Notifications *state.NotificationStore
}

func NewSubscriptionEnforcer(store *repository.Store, notifications *state.NotificationStore) *SubscriptionEnforcer {
	return &SubscriptionEnforcer{Store: store, Notifications: notifications}
}

// actionFor maps a mutating route to the entitlement action it consumes.
func actionFor(r *http.Request) (entitlement.Action, bool) {
	if r.Method != http.MethodPost {
		return "", false
	}
	path := r.URL.Path
	switch {
	case path == "/api/companies":
		return entitlement.ActionCreateCompany, true
	case path == "/api/ai/generate":
		return entitlement.ActionGenerateAIContent, true
	case path == "/api/posts":
		return entitlement.ActionCreatePost, true
	case strings.HasPrefix(path, "/api/posts/") && strings.HasSuffix(path, "/duplicate"):
		// A duplicate is a new post and counts against the same quota.
		return entitlement.ActionCreatePost, true
	case path == "/api/uploads":
		return entitlement.ActionUploadFile, true
	case strings.HasPrefix(path, "/api/companies/") && strings.HasSuffix(path, "/logo"):
		return entitlement.ActionUploadFile, true
	}
	return "", false
}

func (se *SubscriptionEnforcer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action, ok := actionFor(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		claims, ok := ClaimsFrom(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		tier, usage, err := se.lookup(r.Context(), claims.UserID)
		if err != nil {
			log.Printf("[Subscription] lookup failed user=%s err=%v", claims.UserID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !entitlement.CanPerform(tier, action, usage) {
			se.respondLimitExceeded(r.Context(), w, claims.UserID, tier, action)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (se *SubscriptionEnforcer) lookup(ctx context.Context, userID string) (models.SubscriptionTier, models.UsageStats, error) {
	account, err := se.Store.Accounts.GetByID(ctx, userID)
	if err == repository.ErrNotFound {
		// Unknown accounts get the free plan with no usage.
		return models.TierFree, models.UsageStats{}, nil
	}
	if err != nil {
		return "", models.UsageStats{}, err
	}
	usage, err := se.Store.UsageStats(ctx, userID, time.Now())
	if err != nil {
		return "", models.UsageStats{}, err
	}
	return account.Subscription, usage, nil
}

// limitLabel names the exhausted quota in user-facing text.
func limitLabel(action entitlement.Action) string {
	switch action {
	case entitlement.ActionCreateCompany:
		return "company"
	case entitlement.ActionCreatePost:
		return "monthly post"
	case entitlement.ActionGenerateAIContent:
		return "AI generation"
	case entitlement.ActionUploadFile:
		return "storage"
	}
	return "plan"
}

func (se *SubscriptionEnforcer) respondLimitExceeded(ctx context.Context, w http.ResponseWriter, userID string, tier models.SubscriptionTier, action entitlement.Action) {
	plan := entitlement.GetPlan(tier)
	if se.Notifications != nil {
		if _, err := se.Notifications.NotifyLimitReached(ctx, userID, limitLabel(action)); err != nil {
			log.Printf("[Subscription] limit notification failed user=%s err=%v", userID, err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusPaymentRequired)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":       "subscription_limit_exceeded",
		"message":     "Your current plan has reached its limits",
		"plan":        plan.Tier,
		"action":      action,
		"limits":      plan.Features,
		"upgrade_url": "/settings/subscription",
	})
}
