package workers

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/aivahq/aiva-backend/internal/models"
	"github.com/aivahq/aiva-backend/internal/repository"
	"github.com/aivahq/aiva-backend/internal/state"
)

type fakeNotificationRepo struct {
	created []models.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = "n1"
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotificationRepo) Upsert(ctx context.Context, n models.Notification) (bool, error) {
	for _, v := range f.created {
		if v.ID == n.ID {
			return false, nil
		}
	}
	f.created = append(f.created, n)
	return true, nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return f.created, nil
}
func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error        { return nil }
func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) error { return nil }
func (f *fakeNotificationRepo) Delete(ctx context.Context, id string) error          { return nil }
func (f *fakeNotificationRepo) DeleteRead(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}
func (f *fakeNotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	return len(f.created), nil
}

type recordingPublisher struct {
	events []state.Event
}

func (p *recordingPublisher) Publish(userID string, e state.Event) {
	p.events = append(p.events, e)
}

func postRows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	now := time.Now().UTC()
	cols := []string{"id", "company_id", "user_id", "title", "content", "platform", "status",
		"images", "hashtags", "scheduled_at", "published_at", "ai_prompt", "engagement", "created_at", "updated_at"}
	return sqlmock.NewRows(cols).AddRow(
		"p1", "c1", "u1", nil, "Fresh roast drops today, come grab a bag while it lasts and tell us your favourite origin story", "instagram", "published",
		pq.Array([]string{}), pq.Array([]string{"#coffee"}), now.Add(-time.Minute), now, nil, []byte(`{"likes":0,"shares":0,"comments":0,"views":0}`), now, now)
}

func TestRunOncePublishesDuePosts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE public\.social_posts\s+SET status = 'published'`).
		WillReturnRows(postRows(t))

	store := repository.NewStore(db)
	repo := &fakeNotificationRepo{}
	pub := &recordingPublisher{}
	w := &ScheduledPostsWorker{
		Posts:         store.Posts,
		Notifications: state.NewNotificationStore(repo, pub),
		Events:        pub,
	}

	n, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 published post, got %d", n)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	note := repo.created[0]
	if note.Title != "Post Published" || note.UserID != "u1" {
		t.Fatalf("unexpected notification: %+v", note)
	}
	// The notification message carries a 60-char preview of the content.
	if len(note.Message) > 120 {
		t.Fatalf("message too long: %q", note.Message)
	}

	var sawPublished bool
	for _, e := range pub.events {
		if e.Type == "post.published" {
			sawPublished = true
		}
	}
	if !sawPublished {
		t.Fatalf("expected a post.published event, got %+v", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunOnceNothingDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE public\.social_posts`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := repository.NewStore(db)
	w := &ScheduledPostsWorker{
		Posts:         store.Posts,
		Notifications: state.NewNotificationStore(&fakeNotificationRepo{}, nil),
		Events:        state.NopPublisher{},
	}
	n, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
}

func TestPostTitleTruncation(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	p := models.Post{Content: string(long)}
	if got := postTitle(p); len(got) != 60 {
		t.Fatalf("expected 60 chars, got %d", len(got))
	}

	title := "Launch day"
	p.Title = &title
	if got := postTitle(p); got != "Launch day" {
		t.Fatalf("expected explicit title, got %q", got)
	}

	// Content rich in multibyte runes must truncate on a rune boundary.
	p.Title = nil
	p.Content = strings.Repeat("🚀", 70)
	got := postTitle(p)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated title is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 60 {
		t.Fatalf("expected 60 runes, got %d", n)
	}
}
