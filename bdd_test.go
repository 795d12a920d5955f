package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/aivahq/aiva-backend/internal/entitlement"
	"github.com/aivahq/aiva-backend/internal/models"
)

type bddTestContext struct {
	tier        models.SubscriptionTier
	usage       models.UsageStats
	lastAllowed bool
}

func (ctx *bddTestContext) reset() {
	ctx.tier = models.TierFree
	ctx.usage = models.UsageStats{}
	ctx.lastAllowed = false
}

func (ctx *bddTestContext) aUserOnThePlan(tier string) error {
	ctx.tier = models.SubscriptionTier(tier)
	return nil
}

func (ctx *bddTestContext) theUserUpgradesToThePlan(tier string) error {
	ctx.tier = models.SubscriptionTier(tier)
	return nil
}

func (ctx *bddTestContext) theUserHasCompanies(n int) error {
	ctx.usage.CompaniesCount = n
	return nil
}

func (ctx *bddTestContext) theUserHasPostsThisMonth(n int) error {
	ctx.usage.PostsThisMonth = n
	return nil
}

func (ctx *bddTestContext) theUserHasAIGenerationsThisMonth(n int) error {
	ctx.usage.AIGenerationsThisMonth = n
	return nil
}

func (ctx *bddTestContext) theUserHasUsedMBOfStorage(mb int) error {
	ctx.usage.StorageUsed = int64(mb) * 1024 * 1024
	return nil
}

func (ctx *bddTestContext) theUserAttemptsTo(action string) error {
	ctx.lastAllowed = entitlement.CanPerform(ctx.tier, entitlement.Action(action), ctx.usage)
	return nil
}

func (ctx *bddTestContext) theActionShouldBeAllowed() error {
	if !ctx.lastAllowed {
		return fmt.Errorf("expected action to be allowed on tier %q with usage %+v", ctx.tier, ctx.usage)
	}
	return nil
}

func (ctx *bddTestContext) theActionShouldBeRefused() error {
	if ctx.lastAllowed {
		return fmt.Errorf("expected action to be refused on tier %q with usage %+v", ctx.tier, ctx.usage)
	}
	return nil
}

func (ctx *bddTestContext) theUsageShouldReadPercent(dim string, want int) error {
	got := entitlement.UsagePercentage(ctx.tier, entitlement.Dimension(dim), ctx.usage)
	if got != float64(want) {
		return fmt.Errorf("expected %s usage %d%%, got %.1f%%", dim, want, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	testCtx := &bddTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		testCtx.reset()
		return ctx, nil
	})

	ctx.Step(`^a user on the "([^"]*)" plan$`, testCtx.aUserOnThePlan)
	ctx.Step(`^the user upgrades to the "([^"]*)" plan$`, testCtx.theUserUpgradesToThePlan)
	ctx.Step(`^the user has (\d+) companies$`, testCtx.theUserHasCompanies)
	ctx.Step(`^the user has (\d+) posts this month$`, testCtx.theUserHasPostsThisMonth)
	ctx.Step(`^the user has (\d+) AI generations this month$`, testCtx.theUserHasAIGenerationsThisMonth)
	ctx.Step(`^the user has used (\d+) MB of storage$`, testCtx.theUserHasUsedMBOfStorage)
	ctx.Step(`^the user attempts to "([^"]*)"$`, testCtx.theUserAttemptsTo)
	ctx.Step(`^the action should be allowed$`, testCtx.theActionShouldBeAllowed)
	ctx.Step(`^the action should be refused$`, testCtx.theActionShouldBeRefused)
	ctx.Step(`^the "([^"]*)" usage should read (\d+) percent$`, testCtx.theUsageShouldReadPercent)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
