// Package state coordinates the backing store, the snapshot cache, and the
// realtime feed. Writes go to the database first; the cache and feed are
// only updated after the write succeeds.
package state

import (
	"context"
	"log"

	"github.com/aivahq/aiva-backend/internal/cache"
	"github.com/aivahq/aiva-backend/internal/models"
)

// Event is a realtime change feed entry pushed to connected clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Publisher delivers events to a user's connected clients. Delivery is
// best effort.
type Publisher interface {
	Publish(userID string, event Event)
}

// NopPublisher drops every event. Used when no feed is wired.
type NopPublisher struct{}

func (NopPublisher) Publish(string, Event) {}

type CompanyRepo interface {
	Create(ctx context.Context, c models.Company) (models.Company, error)
	GetByID(ctx context.Context, id string) (models.Company, error)
	ListByUser(ctx context.Context, userID string) ([]models.Company, error)
	Update(ctx context.Context, c models.Company) (models.Company, error)
	Delete(ctx context.Context, id string) error
}

type CompanyStore struct {
	repo   CompanyRepo
	cache  *cache.Cache
	events Publisher
}

func NewCompanyStore(repo CompanyRepo, c *cache.Cache, events Publisher) *CompanyStore {
	if events == nil {
		events = NopPublisher{}
	}
	return &CompanyStore{repo: repo, cache: c, events: events}
}

func companiesKey(userID string) string      { return cache.KeyCompanies + ":" + userID }
func currentCompanyKey(userID string) string { return cache.KeyCurrentCompanyID + ":" + userID }

func (s *CompanyStore) List(ctx context.Context, userID string) ([]models.Company, error) {
	companies, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.snapshot(userID, companies)
	return companies, nil
}

// Current resolves the selected company, falling back to the first one
// when nothing is selected or the selection no longer exists.
func (s *CompanyStore) Current(ctx context.Context, userID string) (*models.Company, error) {
	companies, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, nil
	}
	if id, ok := s.cache.Get(currentCompanyKey(userID)); ok {
		for i := range companies {
			if companies[i].ID == id {
				return &companies[i], nil
			}
		}
	}
	s.cache.Set(currentCompanyKey(userID), companies[0].ID)
	return &companies[0], nil
}

// Select pins a company as current. The company must belong to the user.
func (s *CompanyStore) Select(ctx context.Context, userID, companyID string) (*models.Company, error) {
	c, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}
	if err := s.cache.Set(currentCompanyKey(userID), companyID); err != nil {
		log.Printf("[State][Company] cache selection failed user=%s err=%v", userID, err)
	}
	return &c, nil
}

func (s *CompanyStore) Create(ctx context.Context, c models.Company) (models.Company, error) {
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return models.Company{}, err
	}
	s.refresh(ctx, created.UserID)
	// First company becomes the selection automatically.
	if _, ok := s.cache.Get(currentCompanyKey(created.UserID)); !ok {
		s.cache.Set(currentCompanyKey(created.UserID), created.ID)
	}
	s.events.Publish(created.UserID, Event{Type: "company.created", Payload: created})
	return created, nil
}

func (s *CompanyStore) Update(ctx context.Context, c models.Company) (models.Company, error) {
	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return models.Company{}, err
	}
	s.refresh(ctx, updated.UserID)
	s.events.Publish(updated.UserID, Event{Type: "company.updated", Payload: updated})
	return updated, nil
}

// Delete removes a company. When the deleted company was selected, the
// selection moves to the first remaining company, or clears entirely.
func (s *CompanyStore) Delete(ctx context.Context, userID, companyID string) error {
	if err := s.repo.Delete(ctx, companyID); err != nil {
		return err
	}
	remaining, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	s.snapshot(userID, remaining)

	if id, ok := s.cache.Get(currentCompanyKey(userID)); ok && id == companyID {
		if len(remaining) > 0 {
			s.cache.Set(currentCompanyKey(userID), remaining[0].ID)
		} else {
			s.cache.Delete(currentCompanyKey(userID))
		}
	}
	s.events.Publish(userID, Event{Type: "company.deleted", Payload: map[string]string{"id": companyID}})
	return nil
}

func (s *CompanyStore) refresh(ctx context.Context, userID string) {
	companies, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("[State][Company] snapshot refresh failed user=%s err=%v", userID, err)
		return
	}
	s.snapshot(userID, companies)
}

func (s *CompanyStore) snapshot(userID string, companies []models.Company) {
	if err := s.cache.SetJSON(companiesKey(userID), companies); err != nil {
		log.Printf("[State][Company] snapshot write failed user=%s err=%v", userID, err)
	}
}

// ClearData drops the user's cached companies and selection, typically
// at logout. The database rows are untouched.
func (s *CompanyStore) ClearData(userID string) {
	s.cache.Delete(companiesKey(userID))
	s.cache.Delete(currentCompanyKey(userID))
}
