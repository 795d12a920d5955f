package state

import (
	"context"
	"errors"
	"log"

	"github.com/aivahq/aiva-backend/internal/cache"
	"github.com/aivahq/aiva-backend/internal/models"
)

// ErrForbidden is returned when a resource belongs to a different user.
var ErrForbidden = errors.New("forbidden")

type PostRepo interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	GetByID(ctx context.Context, id string) (models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]models.Post, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.Post, error)
	Update(ctx context.Context, p models.Post) (models.Post, error)
	Delete(ctx context.Context, id string) error
}

type PostStore struct {
	repo   PostRepo
	cache  *cache.Cache
	events Publisher
}

func NewPostStore(repo PostRepo, c *cache.Cache, events Publisher) *PostStore {
	if events == nil {
		events = NopPublisher{}
	}
	return &PostStore{repo: repo, cache: c, events: events}
}

func postsKey(userID string) string { return cache.KeyPosts + ":" + userID }

func (s *PostStore) List(ctx context.Context, userID string) ([]models.Post, error) {
	posts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.snapshot(userID, posts)
	return posts, nil
}

func (s *PostStore) ListByCompany(ctx context.Context, companyID string) ([]models.Post, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

// ByStatus filters a user's posts to one lifecycle status.
func (s *PostStore) ByStatus(ctx context.Context, userID string, status models.PostStatus) ([]models.Post, error) {
	posts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	filtered := []models.Post{}
	for _, p := range posts {
		if p.Status == status {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *PostStore) Get(ctx context.Context, userID, id string) (models.Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if p.UserID != userID {
		return models.Post{}, ErrForbidden
	}
	return p, nil
}

func (s *PostStore) Create(ctx context.Context, p models.Post) (models.Post, error) {
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return models.Post{}, err
	}
	s.refresh(ctx, created.UserID)
	s.events.Publish(created.UserID, Event{Type: "post.created", Payload: created})
	return created, nil
}

func (s *PostStore) Update(ctx context.Context, userID string, p models.Post) (models.Post, error) {
	existing, err := s.Get(ctx, userID, p.ID)
	if err != nil {
		return models.Post{}, err
	}
	p.UserID = existing.UserID
	p.CompanyID = existing.CompanyID
	p.CreatedAt = existing.CreatedAt
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return models.Post{}, err
	}
	s.refresh(ctx, userID)
	s.events.Publish(userID, Event{Type: "post.updated", Payload: updated})
	return updated, nil
}

func (s *PostStore) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx, userID)
	s.events.Publish(userID, Event{Type: "post.deleted", Payload: map[string]string{"id": id}})
	return nil
}

func (s *PostStore) refresh(ctx context.Context, userID string) {
	posts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("[State][Posts] snapshot refresh failed user=%s err=%v", userID, err)
		return
	}
	s.snapshot(userID, posts)
}

func (s *PostStore) snapshot(userID string, posts []models.Post) {
	if err := s.cache.SetJSON(postsKey(userID), posts); err != nil {
		log.Printf("[State][Posts] snapshot write failed user=%s err=%v", userID, err)
	}
}

// ClearData drops the user's cached posts, typically at logout.
func (s *PostStore) ClearData(userID string) {
	s.cache.Delete(postsKey(userID))
}
