package paymentevent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	cfgpkg "github.com/eduforge/coursepay/pkg/config"
	"github.com/eduforge/coursepay/pkg/types"
)

// StripeVerifier authenticates Stripe webhook deliveries via their signed
// payloads. Stripe signs every event, so no re-fetch is needed.
type StripeVerifier struct {
	signingSecret string
	log           *zap.SugaredLogger
}

func NewStripeVerifier(cfg *cfgpkg.Config, log *zap.SugaredLogger) *StripeVerifier {
	return &StripeVerifier{signingSecret: cfg.Stripe.WebhookSecret, log: log}
}

func (v *StripeVerifier) Provider() types.PaymentProvider {
	return types.PaymentProviderStripe
}

func (v *StripeVerifier) Verify(ctx context.Context, payload []byte, header http.Header) (*PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, header.Get("Stripe-Signature"), v.signingSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: signature verification failed: %v", ErrInvalidPayload, err)
	}

	var out *PaymentEvent
	switch event.Type {
	case "checkout.session.completed", "checkout.session.expired":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("%w: malformed checkout session: %v", ErrInvalidPayload, err)
		}
		out = v.fromCheckoutSession(event.Type, &s)
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: malformed payment intent: %v", ErrInvalidPayload, err)
		}
		out = &PaymentEvent{
			Provider:          types.PaymentProviderStripe,
			TransactionID:     pi.ID,
			ProviderStatus:    "rejected",
			ExternalReference: pi.Metadata["external_reference"],
			Currency:          string(pi.Currency),
		}
	default:
		return nil, fmt.Errorf("%w: unhandled event type %s", ErrInvalidPayload, event.Type)
	}

	if out.TransactionID == "" {
		return nil, fmt.Errorf("%w: missing transaction id", ErrInvalidPayload)
	}
	if _, err := DecodeExternalReference(out.ExternalReference); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *StripeVerifier) fromCheckoutSession(eventType stripe.EventType, s *stripe.CheckoutSession) *PaymentEvent {
	// The session id is the transaction id. The checkout flow pre-creates the
	// PENDING purchase keyed by it, and session events must land on that row.
	txID := s.ID

	status := "pending"
	switch {
	case eventType == "checkout.session.expired":
		status = "cancelled"
	case s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		status = "approved"
	}

	ref := s.ClientReferenceID
	if ref == "" {
		ref = s.Metadata["external_reference"]
	}

	return &PaymentEvent{
		Provider:          types.PaymentProviderStripe,
		TransactionID:     txID,
		ProviderStatus:    status,
		ExternalReference: ref,
		PaymentMethod:     "card",
		Amount:            float64(s.AmountTotal) / 100,
		Currency:          string(s.Currency),
	}
}
