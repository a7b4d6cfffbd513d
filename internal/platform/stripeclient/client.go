package stripeclient

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"go.uber.org/fx"

	cfgpkg "github.com/eduforge/coursepay/pkg/config"
)

// CheckoutSession is the subset of a Stripe checkout session the checkout
// service needs back.
type CheckoutSession struct {
	ID          string
	RedirectURL string
}

type LineItem struct {
	Name string
	// UnitAmount is in the currency's smallest unit (centavos).
	UnitAmount int64
	Currency   string
}

// Client wraps the Stripe SDK for checkout-session creation. Webhook
// verification does not go through here; it only needs the signing secret.
type Client struct {
	cfg *cfgpkg.Config
}

func NewClient(cfg *cfgpkg.Config) *Client {
	stripe.Key = cfg.Stripe.SecretKey
	return &Client{cfg: cfg}
}

// CreateCheckoutSession creates a provider-hosted payment page. The external
// reference rides in ClientReferenceID and in the payment intent metadata so
// both session and payment-intent events can be resolved back to a purchase.
func (c *Client) CreateCheckoutSession(ctx context.Context, item LineItem, externalReference string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(c.cfg.Stripe.SuccessURL),
		CancelURL:         stripe.String(c.cfg.Stripe.CancelURL),
		ClientReferenceID: stripe.String(externalReference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(item.Currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		}},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"external_reference": externalReference},
		},
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &CheckoutSession{ID: s.ID, RedirectURL: s.URL}, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
