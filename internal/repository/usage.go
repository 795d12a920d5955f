package repository

import (
	"context"
	"time"

	"github.com/aivahq/aiva-backend/internal/models"
)

// UsageStats derives a user's quota consumption from the live tables.
// "This month" means the calendar month containing now, in UTC.
func (s *Store) UsageStats(ctx context.Context, userID string, now time.Time) (models.UsageStats, error) {
	var stats models.UsageStats
	monthStart := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)

	var err error
	stats.CompaniesCount, err = s.Companies.CountByUser(ctx, userID)
	if err != nil {
		return models.UsageStats{}, err
	}

	err = s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM public.social_posts
		WHERE user_id = $1 AND created_at >= $2`, userID, monthStart).Scan(&stats.PostsThisMonth)
	if err != nil {
		return models.UsageStats{}, err
	}

	// A non-null ai_prompt marks a post produced by the generator.
	err = s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM public.social_posts
		WHERE user_id = $1 AND ai_prompt IS NOT NULL AND created_at >= $2`, userID, monthStart).Scan(&stats.AIGenerationsThisMonth)
	if err != nil {
		return models.UsageStats{}, err
	}

	stats.StorageUsed, err = s.Uploads.StorageUsed(ctx, userID)
	if err != nil {
		return models.UsageStats{}, err
	}
	return stats, nil
}
