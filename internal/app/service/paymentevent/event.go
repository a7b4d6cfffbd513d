package paymentevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/eduforge/coursepay/pkg/types"
)

var (
	// ErrInvalidPayload marks a notification whose transaction id cannot be
	// extracted or whose authenticity check failed. Permanent; not retried.
	ErrInvalidPayload = errors.New("invalid notification payload")
	// ErrUnresolvableReference marks a notification whose external reference
	// is missing or does not decode to (courseId, userId). Permanent.
	ErrUnresolvableReference = errors.New("unresolvable external reference")
	// ErrProviderQuery marks a failed authoritative re-fetch from the
	// provider. Transient; the provider is expected to redeliver.
	ErrProviderQuery = errors.New("provider query failed")
)

// PaymentEvent is the canonical, verified representation of a provider
// notification. ProviderStatus is the provider's own status vocabulary; the
// reconciler maps it onto the internal purchase states.
type PaymentEvent struct {
	Provider          types.PaymentProvider `json:"provider"`
	TransactionID     string                `json:"transaction_id"`
	ProviderStatus    string                `json:"provider_status"`
	ExternalReference string                `json:"external_reference"`
	PaymentMethod     string                `json:"payment_method,omitempty"`
	Amount            float64               `json:"amount,omitempty"`
	Currency          string                `json:"currency,omitempty"`
}

// Verifier validates and normalizes an inbound provider notification. It must
// authenticate the payload (signature check, or authoritative re-fetch when
// the provider does not sign) before trusting any field.
type Verifier interface {
	Provider() types.PaymentProvider
	Verify(ctx context.Context, payload []byte, header http.Header) (*PaymentEvent, error)
}

// Reference is the (courseId, userId) pair the checkout flow embeds in the
// provider-opaque external reference.
type Reference struct {
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
}

// EncodeExternalReference produces the reference string the checkout flow
// attaches to provider sessions.
func EncodeExternalReference(courseID, userID string) string {
	b, _ := json.Marshal(Reference{CourseID: courseID, UserID: userID})
	return string(b)
}

// DecodeExternalReference parses an external reference. The canonical form is
// JSON {"courseId":...,"userId":...} with string or numeric ids; the legacy
// checkout emitted a bare "courseId:userId" pair, still accepted.
func DecodeExternalReference(raw string) (*Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrUnresolvableReference)
	}

	if strings.HasPrefix(raw, "{") {
		var aux map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &aux); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnresolvableReference, err)
		}
		ref := &Reference{
			CourseID: decodeScalar(aux["courseId"]),
			UserID:   decodeScalar(aux["userId"]),
		}
		if ref.CourseID == "" || ref.UserID == "" {
			return nil, fmt.Errorf("%w: courseId and userId are required", ErrUnresolvableReference)
		}
		return ref, nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvableReference, raw)
	}
	return &Reference{CourseID: parts[0], UserID: parts[1]}, nil
}

// decodeScalar accepts JSON strings and numbers, returning their text form.
func decodeScalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
