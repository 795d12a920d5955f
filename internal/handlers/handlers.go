// Package handlers exposes the HTTP API.
package handlers

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/aivahq/aiva-backend/internal/auth"
	"github.com/aivahq/aiva-backend/internal/generator"
	"github.com/aivahq/aiva-backend/internal/middleware"
	"github.com/aivahq/aiva-backend/internal/repository"
	"github.com/aivahq/aiva-backend/internal/state"
	"github.com/aivahq/aiva-backend/internal/storage"
)

type Handler struct {
	store         *repository.Store
	companies     *state.CompanyStore
	posts         *state.PostStore
	notifications *state.NotificationStore
	subs          *state.SubscriptionStore
	auth          *auth.Service
	gen           generator.Generator
	uploader      *storage.Uploader
	rt            *Hub

	// genLimiter smooths bursts against the generation backend; plan
	// quotas are enforced separately by the subscription middleware.
	genLimiter *rate.Limiter
}

func New(store *repository.Store, authSvc *auth.Service, gen generator.Generator, uploader *storage.Uploader, companies *state.CompanyStore, posts *state.PostStore, notifications *state.NotificationStore, hub *Hub) *Handler {
	if hub == nil {
		hub = NewHub()
	}
	return &Handler{
		store:         store,
		companies:     companies,
		posts:         posts,
		notifications: notifications,
		subs:          state.NewSubscriptionStore(store.Accounts, store, notifications, hub),
		auth:          authSvc,
		gen:           gen,
		uploader:      uploader,
		rt:            hub,
		genLimiter:    rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func userID(r *http.Request) string {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return ""
	}
	return claims.UserID
}

// GetUsage reports current quota consumption and per-dimension percentages.
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	account, err := h.store.Accounts.GetByID(r.Context(), uid)
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	usage, err := h.subs.Usage(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tier":        account.Subscription,
		"usage":       usage,
		"percentages": h.subs.UsagePercentages(account.Subscription, usage),
	})
}
