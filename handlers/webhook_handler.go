package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"parkingQrAPI/services"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// WebhookHandler processes Stripe events. A completed checkout session for a
// premium purchase flips the user's plan; the /user/upgrade endpoint remains
// usable without it.
type WebhookHandler struct {
	userService   *services.UserService
	webhookSecret string
}

func NewWebhookHandler(userService *services.UserService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		userService:   userService,
		webhookSecret: webhookSecret,
	}
}

func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	const MaxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading request body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	if h.webhookSecret == "" {
		log.Println("STRIPE_WEBHOOK_SECRET is not set")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		log.Printf("Error verifying webhook signature: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			log.Printf("Error parsing webhook JSON: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		email := session.Metadata["email"]
		if email == "" && session.CustomerDetails != nil {
			email = session.CustomerDetails.Email
		}
		if email == "" {
			log.Println("checkout.session.completed without a customer email")
			break
		}

		if _, err := h.userService.UpgradeToPremium(ctx, email); err != nil {
			log.Printf("Error upgrading %s after checkout: %v", email, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		log.Printf("Upgraded %s to premium via Stripe checkout", email)

	default:
		log.Printf("Unhandled webhook event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
