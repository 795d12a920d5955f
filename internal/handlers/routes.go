package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aivahq/aiva-backend/internal/middleware"
)

// RegisterRoutes wires the full API surface. Everything under the
// protected subrouter requires a valid bearer token; quota-bounded
// writes additionally pass through the subscription enforcer.
func RegisterRoutes(h *Handler, r *mux.Router, authn *middleware.Authenticator, enforcer *middleware.SubscriptionEnforcer) {
	r.HandleFunc("/health", h.Health).Methods("GET")

	r.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/webhook/stripe", h.StripeWebhook).Methods("POST")

	// The websocket endpoint does its own token validation.
	r.HandleFunc("/api/events/ws", h.EventsWebSocket)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(authn.Middleware)
	protected.Use(enforcer.Middleware)

	protected.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	protected.HandleFunc("/auth/me", h.Me).Methods("GET")
	protected.HandleFunc("/auth/me", h.UpdateProfile).Methods("PUT")

	protected.HandleFunc("/companies", h.ListCompanies).Methods("GET")
	protected.HandleFunc("/companies", h.CreateCompany).Methods("POST")
	protected.HandleFunc("/companies/current", h.GetCurrentCompany).Methods("GET")
	protected.HandleFunc("/companies/{id}", h.GetCompany).Methods("GET")
	protected.HandleFunc("/companies/{id}", h.UpdateCompany).Methods("PUT")
	protected.HandleFunc("/companies/{id}", h.DeleteCompany).Methods("DELETE")
	protected.HandleFunc("/companies/{id}/select", h.SelectCompany).Methods("PUT")
	protected.HandleFunc("/companies/{id}/logo", h.UploadCompanyLogo).Methods("POST")

	protected.HandleFunc("/posts", h.ListPosts).Methods("GET")
	protected.HandleFunc("/posts", h.CreatePost).Methods("POST")
	protected.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	protected.HandleFunc("/posts/{id}", h.UpdatePost).Methods("PUT")
	protected.HandleFunc("/posts/{id}", h.DeletePost).Methods("DELETE")
	protected.HandleFunc("/posts/{id}/duplicate", h.DuplicatePost).Methods("POST")
	protected.HandleFunc("/posts/{id}/schedule", h.SchedulePost).Methods("POST")
	protected.HandleFunc("/posts/{id}/publish", h.PublishPost).Methods("POST")

	protected.HandleFunc("/ai/generate", h.GenerateContent).Methods("POST")

	protected.HandleFunc("/notifications", h.ListNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread", h.UnreadNotificationCount).Methods("GET")
	protected.HandleFunc("/notifications/read-all", h.MarkAllNotificationsRead).Methods("POST")
	protected.HandleFunc("/notifications/read", h.DeleteReadNotifications).Methods("DELETE")
	protected.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods("POST")
	protected.HandleFunc("/notifications/{id}", h.DeleteNotification).Methods("DELETE")

	protected.HandleFunc("/uploads", h.ListUploads).Methods("GET")
	protected.HandleFunc("/uploads", h.UploadFile).Methods("POST")
	protected.HandleFunc("/uploads/{id}/url", h.GetUploadURL).Methods("GET")
	protected.HandleFunc("/uploads/{id}", h.DeleteUpload).Methods("DELETE")

	protected.HandleFunc("/usage", h.GetUsage).Methods("GET")

	protected.HandleFunc("/billing/plans", h.GetBillingPlans).Methods("GET")
	protected.HandleFunc("/billing/subscription", h.GetSubscription).Methods("GET")
	protected.HandleFunc("/billing/subscription", h.UpgradeSubscription).Methods("PUT")
	protected.HandleFunc("/billing/checkout", h.CreateCheckoutSession).Methods("POST")
}

// NotFound keeps 404s JSON-shaped for API clients.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}
