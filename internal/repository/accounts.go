package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/aivahq/aiva-backend/internal/models"
)

type AccountRepo struct {
	db *sql.DB
}

const accountColumns = `id, email, password_hash, first_name, last_name, avatar, role,
	COALESCE(subscription_tier, 'free'), is_active, created_at, last_login_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (models.Account, string, error) {
	var a models.Account
	var hash string
	var avatar sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&a.ID, &a.Email, &hash, &a.FirstName, &a.LastName, &avatar, &a.Role,
		&a.Subscription, &a.IsActive, &a.CreatedAt, &lastLogin)
	if err != nil {
		return models.Account{}, "", err
	}
	a.Avatar = strPtr(avatar)
	a.LastLoginAt = timePtr(lastLogin)
	return a, hash, nil
}

// Create inserts a new account with a free subscription and returns it.
func (r *AccountRepo) Create(ctx context.Context, email, passwordHash, firstName, lastName string) (models.Account, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO public.accounts (id, email, password_hash, first_name, last_name, role, subscription_tier, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, 'user', 'free', true, $6)`,
		id, email, passwordHash, firstName, lastName, now)
	if err != nil {
		return models.Account{}, err
	}
	return models.Account{
		ID:           id,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         "user",
		Subscription: models.TierFree,
		IsActive:     true,
		CreatedAt:    now,
	}, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (models.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM public.accounts WHERE id = $1`, id)
	a, _, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return models.Account{}, ErrNotFound
	}
	return a, err
}

// GetByEmail returns the account and its password hash for login checks.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (models.Account, string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM public.accounts WHERE email = $1`, email)
	a, hash, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return models.Account{}, "", ErrNotFound
	}
	return a, hash, err
}

func (r *AccountRepo) UpdateProfile(ctx context.Context, id string, firstName, lastName string, avatar *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE public.accounts SET first_name = $2, last_name = $3, avatar = $4 WHERE id = $1`,
		id, firstName, lastName, nullStr(avatar))
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *AccountRepo) SetSubscription(ctx context.Context, id string, tier models.SubscriptionTier) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE public.accounts SET subscription_tier = $2 WHERE id = $1`, id, string(tier))
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *AccountRepo) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE public.accounts SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
