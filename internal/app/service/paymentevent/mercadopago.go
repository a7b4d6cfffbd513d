package paymentevent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eduforge/coursepay/internal/platform/mercadopago"
	"github.com/eduforge/coursepay/pkg/types"
)

// PaymentQueryAPI is the authoritative source of truth for Mercado Pago
// payments. Notification bodies are unauthenticated, so every field the
// reconciler acts on comes from here, never from the webhook body.
type PaymentQueryAPI interface {
	GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error)
}

type MercadoPagoVerifier struct {
	api PaymentQueryAPI
	log *zap.SugaredLogger
}

func NewMercadoPagoVerifier(client *mercadopago.Client, log *zap.SugaredLogger) *MercadoPagoVerifier {
	return &MercadoPagoVerifier{api: client, log: log}
}

func (v *MercadoPagoVerifier) Provider() types.PaymentProvider {
	return types.PaymentProviderMercadoPago
}

// mpNotification covers the notification shapes Mercado Pago sends: the
// current {"type":"payment","data":{"id":...}} form and the legacy
// topic/resource form.
type mpNotification struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID json.Number `json:"id"`
	} `json:"data"`
	Resource string `json:"resource"`
}

func (v *MercadoPagoVerifier) Verify(ctx context.Context, payload []byte, header http.Header) (*PaymentEvent, error) {
	var note mpNotification
	if err := json.Unmarshal(payload, &note); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	topic := note.Type
	if topic == "" {
		topic = note.Topic
	}
	if topic != "payment" {
		return nil, fmt.Errorf("%w: unsupported topic %q", ErrInvalidPayload, topic)
	}

	paymentID := note.Data.ID.String()
	if paymentID == "" && note.Resource != "" {
		// legacy form carries a resource URL ending in the payment id
		parts := strings.Split(strings.TrimSuffix(note.Resource, "/"), "/")
		paymentID = parts[len(parts)-1]
	}
	if paymentID == "" {
		return nil, fmt.Errorf("%w: missing payment id", ErrInvalidPayload)
	}

	p, err := v.api.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderQuery, err)
	}

	if _, err := DecodeExternalReference(p.ExternalReference); err != nil {
		return nil, err
	}

	return &PaymentEvent{
		Provider:          types.PaymentProviderMercadoPago,
		TransactionID:     p.ID,
		ProviderStatus:    p.Status,
		ExternalReference: p.ExternalReference,
		PaymentMethod:     p.PaymentMethod,
		Amount:            p.Amount,
		Currency:          p.Currency,
	}, nil
}
