package entitlement

import (
	"math"
	"testing"

	"github.com/aivahq/aiva-backend/internal/models"
)

func TestCanPerformCountBoundary(t *testing.T) {
	// Free allows 1 company: the first create fills the only slot.
	if !CanPerform(models.TierFree, ActionCreateCompany, models.UsageStats{CompaniesCount: 0}) {
		t.Fatalf("expected create_company allowed at usage 0 on free")
	}
	if CanPerform(models.TierFree, ActionCreateCompany, models.UsageStats{CompaniesCount: 1}) {
		t.Fatalf("expected create_company refused at usage 1 on free")
	}

	// Starter posts: 49 of 50 used still allows, 50 refuses.
	if !CanPerform(models.TierStarter, ActionCreatePost, models.UsageStats{PostsThisMonth: 49}) {
		t.Fatalf("expected create_post allowed at 49/50 on starter")
	}
	if CanPerform(models.TierStarter, ActionCreatePost, models.UsageStats{PostsThisMonth: 50}) {
		t.Fatalf("expected create_post refused at 50/50 on starter")
	}
}

func TestCanPerformUnlimited(t *testing.T) {
	usage := models.UsageStats{
		CompaniesCount:         1000,
		PostsThisMonth:         1000000,
		AIGenerationsThisMonth: 1000000,
		StorageUsed:            1 << 40,
	}
	for _, action := range []Action{ActionCreateCompany, ActionCreatePost, ActionGenerateAIContent, ActionUploadFile} {
		if !CanPerform(models.TierEnterprise, action, usage) {
			t.Fatalf("expected %s allowed on enterprise regardless of usage", action)
		}
	}
}

func TestCanPerformStorageBytes(t *testing.T) {
	// Starter caps storage at 500 MB; usage is tracked in bytes.
	under := models.UsageStats{StorageUsed: 499 * 1024 * 1024}
	if !CanPerform(models.TierStarter, ActionUploadFile, under) {
		t.Fatalf("expected upload allowed under 500MB on starter")
	}
	over := models.UsageStats{StorageUsed: 600 * 1024 * 1024}
	if CanPerform(models.TierStarter, ActionUploadFile, over) {
		t.Fatalf("expected upload refused at 600MB on starter")
	}
}

func TestCanPerformCapabilityFlags(t *testing.T) {
	if CanPerform(models.TierFree, ActionAccessAnalytics, models.UsageStats{}) {
		t.Fatalf("free should not have analytics")
	}
	if !CanPerform(models.TierStarter, ActionAccessAnalytics, models.UsageStats{}) {
		t.Fatalf("starter should have analytics")
	}
	if CanPerform(models.TierStarter, ActionAPIAccess, models.UsageStats{}) {
		t.Fatalf("starter should not have api access")
	}
	if !CanPerform(models.TierProfessional, ActionAPIAccess, models.UsageStats{}) {
		t.Fatalf("professional should have api access")
	}
}

func TestCanPerformUnknownActionAllows(t *testing.T) {
	if !CanPerform(models.TierFree, Action("teleport"), models.UsageStats{}) {
		t.Fatalf("unknown actions should be permitted")
	}
}

func TestUpgradeUnlocksAction(t *testing.T) {
	usage := models.UsageStats{CompaniesCount: 1}
	if CanPerform(models.TierFree, ActionCreateCompany, usage) {
		t.Fatalf("free at limit should refuse")
	}
	if !CanPerform(models.TierStarter, ActionCreateCompany, usage) {
		t.Fatalf("starter should allow a second company")
	}
}

func TestUsagePercentage(t *testing.T) {
	usage := models.UsageStats{PostsThisMonth: 5}
	got := UsagePercentage(models.TierFree, DimPosts, usage)
	if got != 50 {
		t.Fatalf("expected 50%%, got %v", got)
	}

	// Over-quota clamps at 100.
	over := models.UsageStats{PostsThisMonth: 25}
	if got := UsagePercentage(models.TierFree, DimPosts, over); got != 100 {
		t.Fatalf("expected clamp to 100, got %v", got)
	}

	// Unlimited dimensions report zero.
	if got := UsagePercentage(models.TierEnterprise, DimPosts, over); got != 0 {
		t.Fatalf("expected 0 for unlimited, got %v", got)
	}

	// Storage percentage compares MB against the MB limit.
	stor := models.UsageStats{StorageUsed: 250 * 1024 * 1024}
	if got := UsagePercentage(models.TierStarter, DimStorage, stor); math.Abs(got-50) > 0.001 {
		t.Fatalf("expected ~50%% storage, got %v", got)
	}
}

func TestGetPlanFallsBackToFree(t *testing.T) {
	p := GetPlan(models.SubscriptionTier("platinum"))
	if p.Tier != models.TierFree {
		t.Fatalf("unknown tier should resolve to free, got %s", p.Tier)
	}
}

func TestPlansOrdering(t *testing.T) {
	ps := Plans()
	if len(ps) != 4 {
		t.Fatalf("expected 4 plans, got %d", len(ps))
	}
	want := []models.SubscriptionTier{models.TierFree, models.TierStarter, models.TierProfessional, models.TierEnterprise}
	for i, tier := range want {
		if ps[i].Tier != tier {
			t.Fatalf("plan %d: expected %s, got %s", i, tier, ps[i].Tier)
		}
	}
}
