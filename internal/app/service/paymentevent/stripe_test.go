package paymentevent

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const stripeTestSecret = "whsec_test_secret"

func signedHeader(t *testing.T, payload []byte) http.Header {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(stripeTestSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	h := http.Header{}
	h.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	return h
}

func newStripeTestVerifier() *StripeVerifier {
	return &StripeVerifier{signingSecret: stripeTestSecret, log: zap.NewNop().Sugar()}
}

func checkoutCompletedPayload(paymentStatus string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_1",
				"object": "checkout.session",
				"payment_intent": "pi_1",
				"payment_status": %q,
				"client_reference_id": "c-1:u-1",
				"amount_total": 14990,
				"currency": "brl"
			}
		}
	}`, stripe.APIVersion, paymentStatus))
}

func TestStripeVerify_CheckoutCompleted(t *testing.T) {
	v := newStripeTestVerifier()
	payload := checkoutCompletedPayload("paid")

	ev, err := v.Verify(context.Background(), payload, signedHeader(t, payload))
	require.NoError(t, err)
	// the session id keys the purchase the checkout flow pre-created, even
	// when the event carries a payment intent id too
	require.Equal(t, "cs_1", ev.TransactionID)
	require.Equal(t, "approved", ev.ProviderStatus)
	require.Equal(t, "c-1:u-1", ev.ExternalReference)
	require.InDelta(t, 149.90, ev.Amount, 0.001)
	require.Equal(t, "brl", ev.Currency)
}

func TestStripeVerify_UnpaidSessionStaysPending(t *testing.T) {
	v := newStripeTestVerifier()
	payload := checkoutCompletedPayload("unpaid")

	ev, err := v.Verify(context.Background(), payload, signedHeader(t, payload))
	require.NoError(t, err)
	require.Equal(t, "pending", ev.ProviderStatus)
}

func TestStripeVerify_ExpiredSessionCancels(t *testing.T) {
	v := newStripeTestVerifier()
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_4",
		"object": "event",
		"api_version": %q,
		"type": "checkout.session.expired",
		"data": {
			"object": {
				"id": "cs_1",
				"object": "checkout.session",
				"payment_intent": "pi_1",
				"payment_status": "unpaid",
				"client_reference_id": "c-1:u-1",
				"currency": "brl"
			}
		}
	}`, stripe.APIVersion))

	ev, err := v.Verify(context.Background(), payload, signedHeader(t, payload))
	require.NoError(t, err)
	require.Equal(t, "cs_1", ev.TransactionID)
	require.Equal(t, "cancelled", ev.ProviderStatus)
}

func TestStripeVerify_PaymentFailed(t *testing.T) {
	v := newStripeTestVerifier()
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_2",
		"object": "event",
		"api_version": %q,
		"type": "payment_intent.payment_failed",
		"data": {
			"object": {
				"id": "pi_2",
				"object": "payment_intent",
				"currency": "brl",
				"metadata": {"external_reference": "c-1:u-1"}
			}
		}
	}`, stripe.APIVersion))

	ev, err := v.Verify(context.Background(), payload, signedHeader(t, payload))
	require.NoError(t, err)
	require.Equal(t, "pi_2", ev.TransactionID)
	require.Equal(t, "rejected", ev.ProviderStatus)
}

func TestStripeVerify_RejectsBadSignature(t *testing.T) {
	v := newStripeTestVerifier()
	payload := checkoutCompletedPayload("paid")

	h := http.Header{}
	h.Set("Stripe-Signature", "t=123,v1=deadbeef")
	_, err := v.Verify(context.Background(), payload, h)
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestStripeVerify_RejectsTamperedPayload(t *testing.T) {
	v := newStripeTestVerifier()
	payload := checkoutCompletedPayload("paid")
	header := signedHeader(t, payload)

	tampered := checkoutCompletedPayload("unpaid")
	_, err := v.Verify(context.Background(), tampered, header)
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestStripeVerify_UnhandledEventType(t *testing.T) {
	v := newStripeTestVerifier()
	payload := []byte(fmt.Sprintf(`{"id":"evt_3","object":"event","api_version":%q,"type":"invoice.paid","data":{"object":{}}}`, stripe.APIVersion))

	_, err := v.Verify(context.Background(), payload, signedHeader(t, payload))
	require.ErrorIs(t, err, ErrInvalidPayload)
}
