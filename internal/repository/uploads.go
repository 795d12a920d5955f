package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/aivahq/aiva-backend/internal/models"
)

type UploadRepo struct {
	db *sql.DB
}

func (r *UploadRepo) Create(ctx context.Context, u models.FileUpload) (models.FileUpload, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.UploadedAt.IsZero() {
		u.UploadedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO public.file_uploads (id, user_id, filename, original_name, mime_type, size, url, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.UserID, u.Filename, u.OriginalName, u.MimeType, u.Size, u.URL, u.UploadedAt)
	if err != nil {
		return models.FileUpload{}, err
	}
	return u, nil
}

func (r *UploadRepo) GetByID(ctx context.Context, id string) (models.FileUpload, error) {
	var u models.FileUpload
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, filename, original_name, mime_type, size, url, uploaded_at
		FROM public.file_uploads WHERE id = $1`, id).
		Scan(&u.ID, &u.UserID, &u.Filename, &u.OriginalName, &u.MimeType, &u.Size, &u.URL, &u.UploadedAt)
	if err == sql.ErrNoRows {
		return models.FileUpload{}, ErrNotFound
	}
	return u, err
}

func (r *UploadRepo) ListByUser(ctx context.Context, userID string) ([]models.FileUpload, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, filename, original_name, mime_type, size, url, uploaded_at
		FROM public.file_uploads WHERE user_id = $1 ORDER BY uploaded_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := []models.FileUpload{}
	for rows.Next() {
		var u models.FileUpload
		if err := rows.Scan(&u.ID, &u.UserID, &u.Filename, &u.OriginalName, &u.MimeType, &u.Size, &u.URL, &u.UploadedAt); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

func (r *UploadRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM public.file_uploads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *UploadRepo) StorageUsed(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(size), 0) FROM public.file_uploads WHERE user_id = $1`, userID).Scan(&total)
	return total, err
}
