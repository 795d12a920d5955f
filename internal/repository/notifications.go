package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/aivahq/aiva-backend/internal/models"
)

type NotificationRepo struct {
	db *sql.DB
}

const notificationColumns = `id, user_id, type, title, message, action_url, is_read, created_at`

func scanNotification(row interface{ Scan(...interface{}) error }) (models.Notification, error) {
	var n models.Notification
	var actionURL sql.NullString
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &actionURL, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return models.Notification{}, err
	}
	n.ActionURL = strPtr(actionURL)
	return n, nil
}

func (r *NotificationRepo) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO public.notifications (id, user_id, type, title, message, action_url, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, nullStr(n.ActionURL), n.IsRead, n.CreatedAt)
	if err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// Upsert inserts a notification keyed by id, ignoring duplicates.
// Reports whether a row was actually written.
func (r *NotificationRepo) Upsert(ctx context.Context, n models.Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO public.notifications (id, user_id, type, title, message, action_url, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, nullStr(n.ActionURL), n.IsRead, n.CreatedAt)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM public.notifications
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE public.notifications SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// MarkAllRead is idempotent: marking an already-read set affects zero rows
// and is not an error.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE public.notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	return err
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM public.notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM public.notifications WHERE user_id = $1 AND is_read = false`, userID).Scan(&n)
	return n, err
}

// DeleteRead removes every read notification for one user.
func (r *NotificationRepo) DeleteRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM public.notifications WHERE user_id = $1 AND is_read = true`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteReadOlderThan prunes read notifications past the retention window.
func (r *NotificationRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM public.notifications WHERE is_read = true AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
