package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aivahq/aiva-backend/internal/models"
)

type PostRepo struct {
	db *sql.DB
}

const postColumns = `id, company_id, user_id, title, content, platform, COALESCE(status, 'draft'),
	images, hashtags, scheduled_at, published_at, ai_prompt, engagement, created_at, updated_at`

func scanPost(row interface{ Scan(...interface{}) error }) (models.Post, error) {
	var p models.Post
	var title, aiPrompt sql.NullString
	var scheduledAt, publishedAt sql.NullTime
	var engagement []byte
	err := row.Scan(&p.ID, &p.CompanyID, &p.UserID, &title, &p.Content, &p.Platform, &p.Status,
		pq.Array(&p.Images), pq.Array(&p.Hashtags), &scheduledAt, &publishedAt, &aiPrompt,
		&engagement, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Post{}, err
	}
	p.Title = strPtr(title)
	p.AIPrompt = strPtr(aiPrompt)
	p.ScheduledAt = timePtr(scheduledAt)
	p.PublishedAt = timePtr(publishedAt)
	if len(engagement) > 0 {
		if err := json.Unmarshal(engagement, &p.Engagement); err != nil {
			return models.Post{}, err
		}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
	return p, nil
}

func (r *PostRepo) Create(ctx context.Context, p models.Post) (models.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	engagement, err := marshalJSON(p.Engagement)
	if err != nil {
		return models.Post{}, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO public.social_posts (id, company_id, user_id, title, content, platform, status,
			images, hashtags, scheduled_at, published_at, ai_prompt, engagement, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.CompanyID, p.UserID, nullStr(p.Title), p.Content, string(p.Platform), string(p.Status),
		pq.Array(p.Images), pq.Array(p.Hashtags), nullTime(p.ScheduledAt), nullTime(p.PublishedAt),
		nullStr(p.AIPrompt), engagement, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func (r *PostRepo) GetByID(ctx context.Context, id string) (models.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM public.social_posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return models.Post{}, ErrNotFound
	}
	return p, err
}

func (r *PostRepo) ListByUser(ctx context.Context, userID string) ([]models.Post, error) {
	return r.list(ctx, `SELECT `+postColumns+` FROM public.social_posts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostRepo) ListByCompany(ctx context.Context, companyID string) ([]models.Post, error) {
	return r.list(ctx, `SELECT `+postColumns+` FROM public.social_posts WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
}

func (r *PostRepo) list(ctx context.Context, query string, args ...interface{}) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepo) Update(ctx context.Context, p models.Post) (models.Post, error) {
	p.UpdatedAt = time.Now().UTC()
	engagement, err := marshalJSON(p.Engagement)
	if err != nil {
		return models.Post{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE public.social_posts SET title = $2, content = $3, platform = $4, status = $5,
			images = $6, hashtags = $7, scheduled_at = $8, published_at = $9, ai_prompt = $10,
			engagement = $11, updated_at = $12
		WHERE id = $1`,
		p.ID, nullStr(p.Title), p.Content, string(p.Platform), string(p.Status),
		pq.Array(p.Images), pq.Array(p.Hashtags), nullTime(p.ScheduledAt), nullTime(p.PublishedAt),
		nullStr(p.AIPrompt), engagement, p.UpdatedAt)
	if err != nil {
		return models.Post{}, err
	}
	if err := checkAffected(res); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func (r *PostRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM public.social_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// ClaimDue flips scheduled posts whose time has arrived to published and
// returns them. The UPDATE ... RETURNING keeps concurrent workers from
// publishing the same post twice.
func (r *PostRepo) ClaimDue(ctx context.Context, now time.Time) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE public.social_posts
		SET status = 'published', published_at = $1, updated_at = $1
		WHERE status = 'scheduled' AND scheduled_at IS NOT NULL AND scheduled_at <= $1
		RETURNING `+postColumns, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
