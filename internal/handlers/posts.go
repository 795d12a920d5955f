package handlers

import (
	"net/http"
	"time"

	"github.com/aivahq/aiva-backend/internal/generator"
	"github.com/aivahq/aiva-backend/internal/models"
	"github.com/aivahq/aiva-backend/internal/repository"
	"github.com/aivahq/aiva-backend/internal/state"
)

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if companyID := r.URL.Query().Get("companyId"); companyID != "" {
		company, err := h.store.Companies.GetByID(r.Context(), companyID)
		if err == repository.ErrNotFound {
			writeError(w, http.StatusNotFound, "company not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if company.UserID != uid {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		posts, err := h.posts.ListByCompany(r.Context(), companyID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, posts)
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		posts, err := h.posts.ByStatus(r.Context(), uid, models.PostStatus(status))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, posts)
		return
	}

	posts, err := h.posts.List(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var post models.Post
	if err := decodeJSON(r, &post); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if post.Content == "" || post.CompanyID == "" || post.Platform == "" {
		writeError(w, http.StatusBadRequest, "companyId, content, and platform are required")
		return
	}
	uid := userID(r)
	company, err := h.store.Companies.GetByID(r.Context(), post.CompanyID)
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if company.UserID != uid {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	post.UserID = uid
	created, err := h.posts.Create(r.Context(), post)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), userID(r), pathVar(r, "id"))
	if err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var post models.Post
	if err := decodeJSON(r, &post); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	post.ID = pathVar(r, "id")
	updated, err := h.posts.Update(r.Context(), userID(r), post)
	if err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), userID(r), pathVar(r, "id")); err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DuplicatePost copies a post into a fresh draft. Schedule and publish
// state never carries over.
func (h *Handler) DuplicatePost(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	source, err := h.posts.Get(r.Context(), uid, pathVar(r, "id"))
	if err != nil {
		writePostError(w, err)
		return
	}
	dup := source
	dup.ID = ""
	dup.Status = models.StatusDraft
	dup.ScheduledAt = nil
	dup.PublishedAt = nil
	dup.Engagement = models.Engagement{}
	created, err := h.posts.Create(r.Context(), dup)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// SchedulePost sets a future publish time and flips the post to scheduled.
func (h *Handler) SchedulePost(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ScheduledAt time.Time `json:"scheduledAt"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.ScheduledAt.IsZero() {
		writeError(w, http.StatusBadRequest, "scheduledAt is required")
		return
	}
	uid := userID(r)
	post, err := h.posts.Get(r.Context(), uid, pathVar(r, "id"))
	if err != nil {
		writePostError(w, err)
		return
	}
	post.Status = models.StatusScheduled
	post.ScheduledAt = &input.ScheduledAt
	updated, err := h.posts.Update(r.Context(), uid, post)
	if err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// PublishPost publishes immediately and notifies the user.
func (h *Handler) PublishPost(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	post, err := h.posts.Get(r.Context(), uid, pathVar(r, "id"))
	if err != nil {
		writePostError(w, err)
		return
	}
	now := time.Now().UTC()
	post.Status = models.StatusPublished
	post.PublishedAt = &now
	updated, err := h.posts.Update(r.Context(), uid, post)
	if err != nil {
		writePostError(w, err)
		return
	}
	title := updated.Content
	if updated.Title != nil && *updated.Title != "" {
		title = *updated.Title
	}
	if runes := []rune(title); len(runes) > 60 {
		title = string(runes[:60])
	}
	if _, err := h.notifications.NotifyPostPublished(r.Context(), uid, title, string(updated.Platform)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// GenerateContent produces post content for a company and platform. Plan
// quota is enforced by the subscription middleware; the limiter here only
// protects the generation backend from bursts.
func (h *Handler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	if !h.genLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "generation rate limit, retry shortly")
		return
	}
	var req generator.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Platform == "" {
		writeError(w, http.StatusBadRequest, "platform is required")
		return
	}
	uid := userID(r)

	// Pull brand context from the company when one is named.
	if req.CompanyID != "" {
		company, err := h.store.Companies.GetByID(r.Context(), req.CompanyID)
		if err == repository.ErrNotFound {
			writeError(w, http.StatusNotFound, "company not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if company.UserID != uid {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		if req.Tone == "" {
			req.Tone = company.BrandVoice
		}
	}

	result, err := h.gen.Generate(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	// Persist the generation as a draft so it counts against the
	// monthly quota and shows up in the user's post list.
	if req.CompanyID != "" {
		prompt := req.Topic
		if req.Instructions != "" {
			prompt = req.Instructions
		}
		post := models.Post{
			CompanyID: req.CompanyID,
			UserID:    uid,
			Content:   result.Content,
			Platform:  req.Platform,
			Status:    models.StatusGenerated,
			Hashtags:  result.Hashtags,
			AIPrompt:  &prompt,
		}
		created, err := h.posts.Create(r.Context(), post)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"result": result, "post": created})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

func writePostError(w http.ResponseWriter, err error) {
	switch err {
	case repository.ErrNotFound:
		writeError(w, http.StatusNotFound, "post not found")
	case state.ErrForbidden:
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
