package handlers

import (
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/aivahq/aiva-backend/internal/entitlement"
	"github.com/aivahq/aiva-backend/internal/models"
	"github.com/aivahq/aiva-backend/internal/repository"
)

var (
	stripeClient *client.API
	stripeOnce   sync.Once
)

func initStripe() {
	stripeOnce.Do(func() {
		secretKey := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
		if secretKey == "" {
			log.Printf("[Billing] STRIPE_SECRET_KEY not set, checkout disabled")
			return
		}
		stripeClient = &client.API{}
		stripeClient.Init(secretKey, nil)
	})
}

type billingPlan struct {
	entitlement.Plan
	StripePriceID *string `json:"stripePriceId,omitempty"`
}

// GetBillingPlans returns every plan with its Stripe price when one is
// provisioned in subscription_plans.
func (h *Handler) GetBillingPlans(w http.ResponseWriter, r *http.Request) {
	priceIDs := map[string]string{}
	rows, err := h.store.DB.QueryContext(r.Context(), `
		SELECT tier, stripe_price_id FROM public.subscription_plans WHERE stripe_price_id IS NOT NULL`)
	if err != nil && err != sql.ErrNoRows {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rows != nil {
		defer rows.Close()
		for rows.Next() {
			var tier, priceID string
			if err := rows.Scan(&tier, &priceID); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			priceIDs[tier] = priceID
		}
		if err := rows.Err(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	plans := []billingPlan{}
	for _, p := range entitlement.Plans() {
		bp := billingPlan{Plan: p}
		if id, ok := priceIDs[string(p.Tier)]; ok {
			bp.StripePriceID = &id
		}
		plans = append(plans, bp)
	}
	writeJSON(w, http.StatusOK, plans)
}

// GetSubscription reports the user's current plan.
func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	tier, err := h.subs.Tier(r.Context(), userID(r))
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tier": tier,
		"plan": entitlement.GetPlan(tier),
	})
}

// UpgradeSubscription changes the tier directly. Used for free downgrades
// and for environments without Stripe; paid upgrades normally go through
// CreateCheckoutSession and the webhook.
func (h *Handler) UpgradeSubscription(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Tier models.SubscriptionTier `json:"tier"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch input.Tier {
	case models.TierFree, models.TierStarter, models.TierProfessional, models.TierEnterprise:
	default:
		writeError(w, http.StatusBadRequest, "unknown tier")
		return
	}
	uid := userID(r)
	plan, err := h.subs.SetTier(r.Context(), uid, input.Tier)
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tier": input.Tier, "plan": plan})
}

// CreateCheckoutSession opens a Stripe checkout for a paid tier.
func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	initStripe()
	if stripeClient == nil {
		writeError(w, http.StatusServiceUnavailable, "Stripe not configured")
		return
	}
	var input struct {
		Tier       models.SubscriptionTier `json:"tier"`
		SuccessURL string                  `json:"successUrl"`
		CancelURL  string                  `json:"cancelUrl"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.Tier == models.TierFree {
		writeError(w, http.StatusBadRequest, "free tier needs no checkout")
		return
	}

	var priceID string
	err := h.store.DB.QueryRowContext(r.Context(), `
		SELECT stripe_price_id FROM public.subscription_plans
		WHERE tier = $1 AND stripe_price_id IS NOT NULL`, string(input.Tier)).Scan(&priceID)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusBadRequest, "no Stripe price configured for tier")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	uid := userID(r)
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(input.SuccessURL),
		CancelURL:         stripe.String(input.CancelURL),
		ClientReferenceID: stripe.String(uid),
	}
	params.AddMetadata("tier", string(input.Tier))

	session, err := stripeClient.CheckoutSessions.New(params)
	if err != nil {
		log.Printf("[Billing][Checkout] session error user=%s err=%v", uid, err)
		writeError(w, http.StatusBadGateway, "failed to create checkout session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"sessionId": session.ID, "url": session.URL})
}

// StripeWebhook applies subscription lifecycle events from Stripe.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[Billing][Webhook] read error: %v", err)
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var event stripe.Event
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if webhookSecret != "" {
		sig := r.Header.Get("Stripe-Signature")
		if sig == "" {
			writeError(w, http.StatusBadRequest, "missing signature")
			return
		}
		event, err = webhook.ConstructEvent(payload, sig, webhookSecret)
		if err != nil {
			log.Printf("[Billing][Webhook] signature verification error: %v", err)
			writeError(w, http.StatusBadRequest, "invalid signature")
			return
		}
	} else {
		log.Printf("[Billing][Webhook] STRIPE_WEBHOOK_SECRET not set, skipping signature verification")
		if err := json.Unmarshal(payload, &event); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	h.processStripeEvent(r, event)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) processStripeEvent(r *http.Request, event stripe.Event) {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			log.Printf("[Billing][Webhook] session unmarshal error: %v", err)
			return
		}
		uid := session.ClientReferenceID
		tier := models.SubscriptionTier(session.Metadata["tier"])
		if uid == "" || tier == "" {
			log.Printf("[Billing][Webhook] session missing reference or tier id=%s", session.ID)
			return
		}
		if _, err := h.subs.SetTier(r.Context(), uid, tier); err != nil {
			log.Printf("[Billing][Webhook] tier update failed user=%s err=%v", uid, err)
			return
		}
		log.Printf("[Billing][Webhook] upgraded user=%s tier=%s", uid, tier)

	case "customer.subscription.deleted":
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			log.Printf("[Billing][Webhook] subscription unmarshal error: %v", err)
			return
		}
		uid := subscription.Metadata["user_id"]
		if uid == "" {
			log.Printf("[Billing][Webhook] subscription missing user metadata id=%s", subscription.ID)
			return
		}
		if _, err := h.subs.SetTier(r.Context(), uid, models.TierFree); err != nil {
			log.Printf("[Billing][Webhook] downgrade failed user=%s err=%v", uid, err)
			return
		}
		log.Printf("[Billing][Webhook] downgraded user=%s to free", uid)

	default:
		log.Printf("[Billing][Webhook] unhandled event type: %s", event.Type)
	}
}
