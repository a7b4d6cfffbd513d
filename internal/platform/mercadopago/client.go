package mercadopago

import (
	"context"
	"fmt"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/fx"

	cfgpkg "github.com/eduforge/coursepay/pkg/config"
)

// Payment is the normalized view of a Mercado Pago payment as returned by the
// authoritative query API. Webhook bodies are never trusted for these fields.
type Payment struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	PaymentMethod     string
	Amount            float64
	Currency          string
}

// CheckoutPreference is the provider-hosted checkout session Mercado Pago
// calls a preference.
type CheckoutPreference struct {
	ID          string
	RedirectURL string
}

type PreferenceItem struct {
	Title       string
	Description string
	Quantity    int
	UnitPrice   float64
	Currency    string
}

// Client wraps the Mercado Pago SDK behind the two calls this service needs:
// the payment query API and preference creation.
type Client struct {
	payments    payment.Client
	preferences preference.Client
	cfg         *cfgpkg.Config
}

func NewClient(cfg *cfgpkg.Config) (*Client, error) {
	sdkCfg, err := mpconfig.New(cfg.MercadoPago.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init mercadopago client: %w", err)
	}
	return &Client{
		payments:    payment.NewClient(sdkCfg),
		preferences: preference.NewClient(sdkCfg),
		cfg:         cfg,
	}, nil
}

// GetPayment fetches the authoritative payment details for a payment id
// extracted from a webhook notification.
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	numericID, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("non-numeric payment id %q: %w", id, err)
	}
	if c.cfg.MercadoPago.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.MercadoPago.QueryTimeout)
		defer cancel()
	}
	res, err := c.payments.Get(ctx, numericID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment %s: %w", id, err)
	}
	return &Payment{
		ID:                strconv.Itoa(res.ID),
		Status:            res.Status,
		StatusDetail:      res.StatusDetail,
		ExternalReference: res.ExternalReference,
		PaymentMethod:     res.PaymentMethodID,
		Amount:            res.TransactionAmount,
		Currency:          res.CurrencyID,
	}, nil
}

// CreatePreference creates a provider-hosted checkout preference carrying the
// external reference the webhook flow later joins on.
func (c *Client) CreatePreference(ctx context.Context, item PreferenceItem, externalReference string) (*CheckoutPreference, error) {
	req := preference.Request{
		Items: []preference.ItemRequest{{
			Title:       item.Title,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			CurrencyID:  item.Currency,
		}},
		ExternalReference: externalReference,
	}
	if c.cfg.MercadoPago.NotificationURL != "" {
		req.NotificationURL = c.cfg.MercadoPago.NotificationURL
	}
	if c.cfg.MercadoPago.BackURL != "" {
		req.BackURLs = &preference.BackURLsRequest{
			Success: c.cfg.MercadoPago.BackURL,
			Failure: c.cfg.MercadoPago.BackURL,
			Pending: c.cfg.MercadoPago.BackURL,
		}
	}
	res, err := c.preferences.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create preference: %w", err)
	}
	return &CheckoutPreference{ID: res.ID, RedirectURL: res.InitPoint}, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
