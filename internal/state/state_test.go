package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aivahq/aiva-backend/internal/cache"
	"github.com/aivahq/aiva-backend/internal/models"
	"github.com/aivahq/aiva-backend/internal/repository"
)

type fakeCompanyRepo struct {
	companies []models.Company
}

func (f *fakeCompanyRepo) Create(_ context.Context, c models.Company) (models.Company, error) {
	f.companies = append(f.companies, c)
	return c, nil
}

func (f *fakeCompanyRepo) GetByID(_ context.Context, id string) (models.Company, error) {
	for _, c := range f.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Company{}, repository.ErrNotFound
}

func (f *fakeCompanyRepo) ListByUser(_ context.Context, userID string) ([]models.Company, error) {
	out := []models.Company{}
	for _, c := range f.companies {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCompanyRepo) Update(_ context.Context, c models.Company) (models.Company, error) {
	for i := range f.companies {
		if f.companies[i].ID == c.ID {
			f.companies[i] = c
			return c, nil
		}
	}
	return models.Company{}, repository.ErrNotFound
}

func (f *fakeCompanyRepo) Delete(_ context.Context, id string) error {
	for i := range f.companies {
		if f.companies[i].ID == id {
			f.companies = append(f.companies[:i], f.companies[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) Publish(_ string, e Event) {
	p.events = append(p.events, e)
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	return c
}

func TestCompanyDeleteMovesSelection(t *testing.T) {
	repo := &fakeCompanyRepo{companies: []models.Company{
		{ID: "c1", UserID: "u1", Name: "First"},
		{ID: "c2", UserID: "u1", Name: "Second"},
	}}
	pub := &recordingPublisher{}
	store := NewCompanyStore(repo, newTestCache(t), pub)
	ctx := context.Background()

	if _, err := store.Select(ctx, "u1", "c1"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := store.Delete(ctx, "u1", "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	current, err := store.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current == nil || current.ID != "c2" {
		t.Fatalf("expected selection to move to c2, got %+v", current)
	}
	if len(pub.events) == 0 || pub.events[len(pub.events)-1].Type != "company.deleted" {
		t.Fatalf("expected company.deleted event, got %+v", pub.events)
	}
}

func TestCompanyDeleteLastClearsSelection(t *testing.T) {
	repo := &fakeCompanyRepo{companies: []models.Company{{ID: "c1", UserID: "u1", Name: "Only"}}}
	store := NewCompanyStore(repo, newTestCache(t), nil)
	ctx := context.Background()

	if _, err := store.Select(ctx, "u1", "c1"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := store.Delete(ctx, "u1", "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	current, err := store.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current != nil {
		t.Fatalf("expected no current company, got %+v", current)
	}
}

func TestCompanySelectForeignCompany(t *testing.T) {
	repo := &fakeCompanyRepo{companies: []models.Company{{ID: "c1", UserID: "someone-else"}}}
	store := NewCompanyStore(repo, newTestCache(t), nil)

	if _, err := store.Select(context.Background(), "u1", "c1"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCompanyCreateSelectsFirst(t *testing.T) {
	repo := &fakeCompanyRepo{}
	store := NewCompanyStore(repo, newTestCache(t), nil)
	ctx := context.Background()

	created, err := store.Create(ctx, models.Company{ID: "c1", UserID: "u1", Name: "First"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	current, err := store.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current == nil || current.ID != created.ID {
		t.Fatalf("expected first company selected, got %+v", current)
	}
}

func TestCurrentFallsBackWhenSelectionStale(t *testing.T) {
	c := newTestCache(t)
	repo := &fakeCompanyRepo{companies: []models.Company{{ID: "c2", UserID: "u1"}}}
	store := NewCompanyStore(repo, c, nil)

	// Selection points at a company that no longer exists.
	c.Set(currentCompanyKey("u1"), "gone")
	current, err := store.Current(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current == nil || current.ID != "c2" {
		t.Fatalf("expected fallback to c2, got %+v", current)
	}
}
