package paymentevent

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduforge/coursepay/internal/platform/mercadopago"
)

type fakePaymentAPI struct {
	payments map[string]*mercadopago.Payment
	err      error
	calls    int
}

func (f *fakePaymentAPI) GetPayment(_ context.Context, id string) (*mercadopago.Payment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payments[id]
	if !ok {
		return nil, errors.New("payment not found")
	}
	return p, nil
}

func newMPVerifier(api PaymentQueryAPI) *MercadoPagoVerifier {
	return &MercadoPagoVerifier{api: api, log: zap.NewNop().Sugar()}
}

func TestMercadoPagoVerify_UsesAuthoritativeFetch(t *testing.T) {
	api := &fakePaymentAPI{payments: map[string]*mercadopago.Payment{
		"12345": {
			ID:                "12345",
			Status:            "approved",
			ExternalReference: `{"courseId":"c-1","userId":"u-1"}`,
			PaymentMethod:     "pix",
			Amount:            149.9,
			Currency:          "BRL",
		},
	}}
	v := newMPVerifier(api)

	// the body's status is deliberately wrong; only the fetched payment counts
	ev, err := v.Verify(context.Background(), []byte(`{"type":"payment","data":{"id":12345},"status":"rejected"}`), http.Header{})
	require.NoError(t, err)
	require.Equal(t, 1, api.calls)
	require.Equal(t, "12345", ev.TransactionID)
	require.Equal(t, "approved", ev.ProviderStatus)
	require.Equal(t, "pix", ev.PaymentMethod)
	require.InDelta(t, 149.9, ev.Amount, 0.001)
}

func TestMercadoPagoVerify_LegacyResourceForm(t *testing.T) {
	api := &fakePaymentAPI{payments: map[string]*mercadopago.Payment{
		"987": {ID: "987", Status: "pending", ExternalReference: "c-1:u-1"},
	}}
	v := newMPVerifier(api)

	ev, err := v.Verify(context.Background(), []byte(`{"topic":"payment","resource":"https://api.mercadopago.com/v1/payments/987"}`), http.Header{})
	require.NoError(t, err)
	require.Equal(t, "987", ev.TransactionID)
	require.Equal(t, "pending", ev.ProviderStatus)
}

func TestMercadoPagoVerify_IgnoresOtherTopics(t *testing.T) {
	api := &fakePaymentAPI{}
	v := newMPVerifier(api)

	_, err := v.Verify(context.Background(), []byte(`{"topic":"merchant_order","resource":"https://x/1"}`), http.Header{})
	require.ErrorIs(t, err, ErrInvalidPayload)
	require.Equal(t, 0, api.calls)
}

func TestMercadoPagoVerify_ProviderQueryFailureIsTransient(t *testing.T) {
	api := &fakePaymentAPI{err: errors.New("503 from provider")}
	v := newMPVerifier(api)

	_, err := v.Verify(context.Background(), []byte(`{"type":"payment","data":{"id":1}}`), http.Header{})
	require.ErrorIs(t, err, ErrProviderQuery)
}

func TestMercadoPagoVerify_MalformedBody(t *testing.T) {
	v := newMPVerifier(&fakePaymentAPI{})

	_, err := v.Verify(context.Background(), []byte(`{not json`), http.Header{})
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = v.Verify(context.Background(), []byte(`{"type":"payment","data":{}}`), http.Header{})
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestMercadoPagoVerify_BadReferenceFromProvider(t *testing.T) {
	api := &fakePaymentAPI{payments: map[string]*mercadopago.Payment{
		"1": {ID: "1", Status: "approved", ExternalReference: "unparseable"},
	}}
	v := newMPVerifier(api)

	_, err := v.Verify(context.Background(), []byte(`{"type":"payment","data":{"id":1}}`), http.Header{})
	require.ErrorIs(t, err, ErrUnresolvableReference)
}
