package entitlement

import (
	"log"

	"github.com/aivahq/aiva-backend/internal/models"
)

// Unlimited is the sentinel used by plan limits that impose no cap.
const Unlimited = -1

type Action string

const (
	ActionCreateCompany     Action = "create_company"
	ActionCreatePost        Action = "create_post"
	ActionGenerateAIContent Action = "generate_ai_content"
	ActionUploadFile        Action = "upload_file"
	ActionAccessAnalytics   Action = "access_analytics"
	ActionCustomBranding    Action = "custom_branding"
	ActionTeamCollaboration Action = "team_collaboration"
	ActionAPIAccess         Action = "api_access"
)

type Features struct {
	MaxCompanies          int    `json:"maxCompanies"`
	MaxPostsPerMonth      int    `json:"maxPostsPerMonth"`
	AIGenerationsPerMonth int    `json:"aiGenerationsPerMonth"`
	HasAdvancedAnalytics  bool   `json:"hasAdvancedAnalytics"`
	HasCustomBranding     bool   `json:"hasCustomBranding"`
	HasTeamCollaboration  bool   `json:"hasTeamCollaboration"`
	HasAPIAccess          bool   `json:"hasAPIAccess"`
	StorageLimit          int    `json:"storageLimit"` // MB
	SupportLevel          string `json:"supportLevel"`
}

type Plan struct {
	Tier        models.SubscriptionTier `json:"tier"`
	Name        string                  `json:"name"`
	Price       int                     `json:"price"` // USD per month
	Description string                  `json:"description"`
	Features    Features                `json:"features"`
}

var plans = map[models.SubscriptionTier]Plan{
	models.TierFree: {
		Tier:        models.TierFree,
		Name:        "Free",
		Price:       0,
		Description: "Perfect for getting started",
		Features: Features{
			MaxCompanies:          1,
			MaxPostsPerMonth:      10,
			AIGenerationsPerMonth: 5,
			StorageLimit:          100,
			SupportLevel:          "community",
		},
	},
	models.TierStarter: {
		Tier:        models.TierStarter,
		Name:        "Starter",
		Price:       19,
		Description: "Great for small businesses",
		Features: Features{
			MaxCompanies:          3,
			MaxPostsPerMonth:      50,
			AIGenerationsPerMonth: 25,
			HasAdvancedAnalytics:  true,
			StorageLimit:          500,
			SupportLevel:          "email",
		},
	},
	models.TierProfessional: {
		Tier:        models.TierProfessional,
		Name:        "Professional",
		Price:       49,
		Description: "For growing businesses",
		Features: Features{
			MaxCompanies:          10,
			MaxPostsPerMonth:      200,
			AIGenerationsPerMonth: 100,
			HasAdvancedAnalytics:  true,
			HasCustomBranding:     true,
			HasTeamCollaboration:  true,
			HasAPIAccess:          true,
			StorageLimit:          2000,
			SupportLevel:          "priority",
		},
	},
	models.TierEnterprise: {
		Tier:        models.TierEnterprise,
		Name:        "Enterprise",
		Price:       99,
		Description: "For large organizations",
		Features: Features{
			MaxCompanies:          Unlimited,
			MaxPostsPerMonth:      Unlimited,
			AIGenerationsPerMonth: Unlimited,
			HasAdvancedAnalytics:  true,
			HasCustomBranding:     true,
			HasTeamCollaboration:  true,
			HasAPIAccess:          true,
			StorageLimit:          Unlimited,
			SupportLevel:          "dedicated",
		},
	},
}

// GetPlan returns the plan for a tier. Unknown tiers fall back to free,
// matching how the rest of the system treats an absent subscription.
func GetPlan(tier models.SubscriptionTier) Plan {
	if p, ok := plans[tier]; ok {
		return p
	}
	return plans[models.TierFree]
}

// Plans returns every plan ordered free → enterprise.
func Plans() []Plan {
	return []Plan{
		plans[models.TierFree],
		plans[models.TierStarter],
		plans[models.TierProfessional],
		plans[models.TierEnterprise],
	}
}

// CanPerform decides whether an action is allowed under a tier given current usage.
//
// Count-bounded actions use a strict less-than against the limit: the Nth
// item fills the Nth slot, so usage == limit refuses. The Unlimited sentinel
// always permits. Capability actions return the plan flag and ignore usage.
func CanPerform(tier models.SubscriptionTier, action Action, usage models.UsageStats) bool {
	f := GetPlan(tier).Features

	switch action {
	case ActionCreateCompany:
		if f.MaxCompanies == Unlimited {
			return true
		}
		return usage.CompaniesCount < f.MaxCompanies
	case ActionCreatePost:
		if f.MaxPostsPerMonth == Unlimited {
			return true
		}
		return usage.PostsThisMonth < f.MaxPostsPerMonth
	case ActionGenerateAIContent:
		if f.AIGenerationsPerMonth == Unlimited {
			return true
		}
		return usage.AIGenerationsThisMonth < f.AIGenerationsPerMonth
	case ActionUploadFile:
		if f.StorageLimit == Unlimited {
			return true
		}
		return usage.StorageUsed < int64(f.StorageLimit)*1024*1024
	case ActionAccessAnalytics:
		return f.HasAdvancedAnalytics
	case ActionCustomBranding:
		return f.HasCustomBranding
	case ActionTeamCollaboration:
		return f.HasTeamCollaboration
	case ActionAPIAccess:
		return f.HasAPIAccess
	default:
		// Permissive on purpose: an unknown action is a configuration bug
		// upstream, not a reason to block the user.
		log.Printf("[Entitlement] unknown action %q tier=%s (allowing)", action, tier)
		return true
	}
}

type Dimension string

const (
	DimCompanies     Dimension = "companies"
	DimPosts         Dimension = "posts"
	DimAIGenerations Dimension = "aiGenerations"
	DimStorage       Dimension = "storage"
)

// UsagePercentage reports how much of a quota dimension is consumed,
// clamped to 100. Unlimited dimensions always report 0.
func UsagePercentage(tier models.SubscriptionTier, dim Dimension, usage models.UsageStats) float64 {
	f := GetPlan(tier).Features

	switch dim {
	case DimCompanies:
		return percentage(float64(usage.CompaniesCount), f.MaxCompanies)
	case DimPosts:
		return percentage(float64(usage.PostsThisMonth), f.MaxPostsPerMonth)
	case DimAIGenerations:
		return percentage(float64(usage.AIGenerationsThisMonth), f.AIGenerationsPerMonth)
	case DimStorage:
		usedMB := float64(usage.StorageUsed) / (1024 * 1024)
		return percentage(usedMB, f.StorageLimit)
	default:
		return 0
	}
}

func percentage(used float64, limit int) float64 {
	if limit == Unlimited {
		return 0
	}
	if limit <= 0 {
		return 100
	}
	pct := used / float64(limit) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
