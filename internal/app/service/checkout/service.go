package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/eduforge/coursepay/internal/app/service/paymentevent"
	"github.com/eduforge/coursepay/internal/app/service/purchase"
	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/internal/platform/mercadopago"
	"github.com/eduforge/coursepay/internal/platform/stripeclient"
	"github.com/eduforge/coursepay/pkg/logctx"
	"github.com/eduforge/coursepay/pkg/types"
)

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
)

var centsPerUnit = decimal.NewFromInt(100)

// StripeGateway creates Stripe-hosted checkout sessions.
type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, item stripeclient.LineItem, externalReference string) (*stripeclient.CheckoutSession, error)
}

// MercadoPagoGateway creates Mercado Pago checkout preferences.
type MercadoPagoGateway interface {
	CreatePreference(ctx context.Context, item mercadopago.PreferenceItem, externalReference string) (*mercadopago.CheckoutPreference, error)
}

type Session struct {
	Provider    types.PaymentProvider `json:"provider"`
	SessionID   string                `json:"session_id"`
	RedirectURL string                `json:"redirect_url"`
	PurchaseID  string                `json:"purchase_id"`
}

type Service struct {
	db     *gorm.DB
	store  *purchase.GormStore
	stripe StripeGateway
	mp     MercadoPagoGateway
	log    *zap.SugaredLogger
}

func NewService(db *gorm.DB, store *purchase.GormStore, stripe *stripeclient.Client, mp *mercadopago.Client, log *zap.SugaredLogger) *Service {
	return &Service{db: db, store: store, stripe: stripe, mp: mp, log: log}
}

// CreateSession creates a provider-hosted payment session for a course and
// pre-creates a PENDING purchase carrying the external reference the webhook
// flow joins on. The session id stands in as the transaction id until the
// provider assigns a payment id; the webhook-created row is the one the
// reconciler settles.
func (s *Service) CreateSession(ctx context.Context, userID, courseID string, provider types.PaymentProvider) (*Session, error) {
	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	extRef := paymentevent.EncodeExternalReference(courseID, userID)

	var sessionID, redirectURL string
	switch provider {
	case types.PaymentProviderStripe:
		cs, err := s.stripe.CreateCheckoutSession(ctx, stripeclient.LineItem{
			Name:       course.Title,
			UnitAmount: course.Price.Mul(centsPerUnit).IntPart(),
			Currency:   course.Currency,
		}, extRef)
		if err != nil {
			return nil, fmt.Errorf("failed to create stripe session: %w", err)
		}
		sessionID, redirectURL = cs.ID, cs.RedirectURL
	case types.PaymentProviderMercadoPago:
		pref, err := s.mp.CreatePreference(ctx, mercadopago.PreferenceItem{
			Title:       course.Title,
			Description: course.Description,
			Quantity:    1,
			UnitPrice:   course.Price.InexactFloat64(),
			Currency:    course.Currency,
		}, extRef)
		if err != nil {
			return nil, fmt.Errorf("failed to create mercadopago preference: %w", err)
		}
		sessionID, redirectURL = pref.ID, pref.RedirectURL
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}

	p, err := s.store.CreatePending(ctx, &models.Purchase{
		UserID:            userID,
		CourseID:          courseID,
		Provider:          provider,
		TransactionID:     sessionID,
		Amount:            course.Price,
		Currency:          course.Currency,
		ExternalReference: extRef,
		Extra:             datatypes.NewJSONType(&models.PurchaseExtra{CheckoutSessionID: sessionID}),
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("checkout session created",
		"provider", provider, "session_id", sessionID, "purchase_id", p.ID)

	return &Session{
		Provider:    provider,
		SessionID:   sessionID,
		RedirectURL: redirectURL,
		PurchaseID:  p.ID,
	}, nil
}
