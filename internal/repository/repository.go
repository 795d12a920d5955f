package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store bundles the per-table repositories over one connection pool.
type Store struct {
	DB            *sql.DB
	Accounts      *AccountRepo
	Companies     *CompanyRepo
	Posts         *PostRepo
	Notifications *NotificationRepo
	Uploads       *UploadRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:            db,
		Accounts:      &AccountRepo{db: db},
		Companies:     &CompanyRepo{db: db},
		Posts:         &PostRepo{db: db},
		Notifications: &NotificationRepo{db: db},
		Uploads:       &UploadRepo{db: db},
	}
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func marshalJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return b, nil
}
