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

type CompanyRepo struct {
	db *sql.DB
}

const companyColumns = `id, user_id, name, description, industry, logo, website, phone, address,
	social_media, brand_colors, COALESCE(brand_voice, 'professional'), target_audience,
	products, unique_selling_points, preferred_platforms, content_themes, created_at, updated_at`

func scanCompany(row interface{ Scan(...interface{}) error }) (models.Company, error) {
	var c models.Company
	var description, industry, logo, website, phone, address sql.NullString
	var targetAudience, products, usp, contentThemes sql.NullString
	var socialMedia, brandColors []byte
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &description, &industry, &logo, &website, &phone, &address,
		&socialMedia, &brandColors, &c.BrandVoice, &targetAudience,
		&products, &usp, pq.Array(&c.PreferredPlatforms), &contentThemes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Company{}, err
	}
	c.Description = strPtr(description)
	c.Industry = strPtr(industry)
	c.Logo = strPtr(logo)
	c.Website = strPtr(website)
	c.Phone = strPtr(phone)
	c.Address = strPtr(address)
	c.TargetAudience = strPtr(targetAudience)
	c.Products = strPtr(products)
	c.UniqueSellingPoints = strPtr(usp)
	c.ContentThemes = strPtr(contentThemes)
	if len(socialMedia) > 0 {
		if err := json.Unmarshal(socialMedia, &c.SocialMedia); err != nil {
			return models.Company{}, err
		}
	}
	c.BrandColors = models.DefaultBrandColors()
	if len(brandColors) > 0 {
		if err := json.Unmarshal(brandColors, &c.BrandColors); err != nil {
			return models.Company{}, err
		}
	}
	if c.PreferredPlatforms == nil {
		c.PreferredPlatforms = []string{}
	}
	return c, nil
}

func (r *CompanyRepo) Create(ctx context.Context, c models.Company) (models.Company, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.BrandColors == (models.BrandColors{}) {
		c.BrandColors = models.DefaultBrandColors()
	}
	if c.BrandVoice == "" {
		c.BrandVoice = "professional"
	}
	socialMedia, err := marshalJSON(c.SocialMedia)
	if err != nil {
		return models.Company{}, err
	}
	brandColors, err := marshalJSON(c.BrandColors)
	if err != nil {
		return models.Company{}, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO public.companies (id, user_id, name, description, industry, logo, website, phone, address,
			social_media, brand_colors, brand_voice, target_audience, products, unique_selling_points,
			preferred_platforms, content_themes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		c.ID, c.UserID, c.Name, nullStr(c.Description), nullStr(c.Industry), nullStr(c.Logo),
		nullStr(c.Website), nullStr(c.Phone), nullStr(c.Address), socialMedia, brandColors,
		c.BrandVoice, nullStr(c.TargetAudience), nullStr(c.Products), nullStr(c.UniqueSellingPoints),
		pq.Array(c.PreferredPlatforms), nullStr(c.ContentThemes), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return models.Company{}, err
	}
	return c, nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (models.Company, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM public.companies WHERE id = $1`, id)
	c, err := scanCompany(row)
	if err == sql.ErrNoRows {
		return models.Company{}, ErrNotFound
	}
	return c, err
}

func (r *CompanyRepo) ListByUser(ctx context.Context, userID string) ([]models.Company, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+companyColumns+` FROM public.companies WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *CompanyRepo) Update(ctx context.Context, c models.Company) (models.Company, error) {
	c.UpdatedAt = time.Now().UTC()
	socialMedia, err := marshalJSON(c.SocialMedia)
	if err != nil {
		return models.Company{}, err
	}
	brandColors, err := marshalJSON(c.BrandColors)
	if err != nil {
		return models.Company{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE public.companies SET name = $2, description = $3, industry = $4, logo = $5, website = $6,
			phone = $7, address = $8, social_media = $9, brand_colors = $10, brand_voice = $11,
			target_audience = $12, products = $13, unique_selling_points = $14,
			preferred_platforms = $15, content_themes = $16, updated_at = $17
		WHERE id = $1`,
		c.ID, c.Name, nullStr(c.Description), nullStr(c.Industry), nullStr(c.Logo), nullStr(c.Website),
		nullStr(c.Phone), nullStr(c.Address), socialMedia, brandColors, c.BrandVoice,
		nullStr(c.TargetAudience), nullStr(c.Products), nullStr(c.UniqueSellingPoints),
		pq.Array(c.PreferredPlatforms), nullStr(c.ContentThemes), c.UpdatedAt)
	if err != nil {
		return models.Company{}, err
	}
	if err := checkAffected(res); err != nil {
		return models.Company{}, err
	}
	return c, nil
}

// Delete removes the company and all of its posts in one transaction.
func (r *CompanyRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM public.social_posts WHERE company_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM public.companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *CompanyRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM public.companies WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}
