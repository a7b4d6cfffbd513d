package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eduforge/coursepay/internal/app/service/paymentevent"
	"github.com/eduforge/coursepay/internal/app/service/purchase"
	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/logctx"
	"github.com/eduforge/coursepay/pkg/types"
)

// ErrUnknownProviderStatus marks an event whose provider status has no
// canonical mapping. Rejected, never silently mapped.
var ErrUnknownProviderStatus = errors.New("unknown provider status")

// PurchaseStore is the persistence surface the reconciler needs. The gorm
// implementation lives in the purchase package.
type PurchaseStore interface {
	FindByTransactionID(ctx context.Context, provider types.PaymentProvider, transactionID string) (*models.Purchase, error)
	FindActiveByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Purchase, error)
	CreatePending(ctx context.Context, p *models.Purchase) (*models.Purchase, error)
	UpdateStatus(ctx context.Context, id string, from, to types.PurchaseStatus, paymentMethod string) error
}

// AccessGrantor grants a user access to a course, idempotently.
type AccessGrantor interface {
	Grant(ctx context.Context, userID, courseID, sourcePurchaseID string) error
	HasCourse(ctx context.Context, userID, courseID string) (bool, error)
}

type Outcome string

const (
	// OutcomeApplied means the event moved the purchase to a new state.
	OutcomeApplied Outcome = "applied"
	// OutcomeReplayed means the event re-affirmed the recorded state; no
	// write and no side effects.
	OutcomeReplayed Outcome = "replayed"
	// OutcomeConflict means the event contradicted an already-terminal
	// purchase. The delivery is accepted but recorded for manual review.
	OutcomeConflict Outcome = "conflict"
)

type Result struct {
	Purchase *models.Purchase `json:"purchase"`
	Outcome  Outcome          `json:"outcome"`
	Created  bool             `json:"created"`
	Granted  bool             `json:"granted"`
	// GrantErr is set when the purchase reached APPROVED but the course
	// grant failed. The approval is never rolled back; the grant is
	// idempotent and safe to retry out of band.
	GrantErr error `json:"-"`
}

// Reconciler applies verified payment events to purchase state and triggers
// course grants on approval. Safe for concurrent and repeated invocation for
// the same transaction id: deliveries are serialized per transaction in
// process, and the store's conditional update guards cross-process races.
type Reconciler struct {
	store   PurchaseStore
	grantor AccessGrantor
	log     *zap.SugaredLogger
	locks   keyedMutex
}

func New(store PurchaseStore, grantor AccessGrantor, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{store: store, grantor: grantor, log: log}
}

// mapProviderStatus maps provider status vocabulary onto canonical purchase
// states. Unknown values are rejected.
func mapProviderStatus(providerStatus string) (types.PurchaseStatus, error) {
	switch providerStatus {
	case "approved":
		return types.PurchaseStatusApproved, nil
	case "pending", "in_process", "in_mediation", "authorized":
		return types.PurchaseStatusPending, nil
	case "rejected":
		return types.PurchaseStatusRejected, nil
	case "cancelled", "cancelled_by_user", "refunded", "charged_back":
		return types.PurchaseStatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProviderStatus, providerStatus)
	}
}

func (r *Reconciler) Reconcile(ctx context.Context, event *paymentevent.PaymentEvent) (*Result, error) {
	log := logctx.FromCtx(ctx, r.log)

	if event == nil || event.TransactionID == "" {
		return nil, fmt.Errorf("%w: missing transaction id", paymentevent.ErrInvalidPayload)
	}
	ref, err := paymentevent.DecodeExternalReference(event.ExternalReference)
	if err != nil {
		return nil, err
	}

	unlock := r.locks.Lock(string(event.Provider) + ":" + event.TransactionID)
	defer unlock()

	p, created, err := r.findOrCreate(ctx, event, ref)
	if err != nil {
		return nil, err
	}

	target, err := mapProviderStatus(event.ProviderStatus)
	if err != nil {
		reconcileTotal.WithLabelValues(string(event.Provider), "rejected_status").Inc()
		return nil, err
	}

	res := &Result{Purchase: p, Created: created}

	if p.Status.Terminal() {
		if p.Status == target || target == types.PurchaseStatusPending {
			// pure replay, or a stale non-terminal delivery arriving after
			// settlement; terminal states never downgrade
			res.Outcome = OutcomeReplayed
			if p.Status == types.PurchaseStatusApproved {
				r.ensureGranted(ctx, res, p)
			}
			reconcileTotal.WithLabelValues(string(event.Provider), string(OutcomeReplayed)).Inc()
			return res, nil
		}
		log.Warnw("terminal state conflict, event dropped for manual review",
			"transaction_id", event.TransactionID,
			"recorded_status", p.Status,
			"event_status", event.ProviderStatus,
		)
		res.Outcome = OutcomeConflict
		reconcileTotal.WithLabelValues(string(event.Provider), string(OutcomeConflict)).Inc()
		return res, nil
	}

	if target == types.PurchaseStatusPending {
		// re-affirmation of the initial state, nothing to write
		res.Outcome = OutcomeReplayed
		if created {
			res.Outcome = OutcomeApplied
		}
		reconcileTotal.WithLabelValues(string(event.Provider), string(res.Outcome)).Inc()
		return res, nil
	}

	if err := r.store.UpdateStatus(ctx, p.ID, types.PurchaseStatusPending, target, event.PaymentMethod); err != nil {
		if errors.Is(err, purchase.ErrStaleStatus) {
			return r.resolveStale(ctx, event, target)
		}
		return nil, fmt.Errorf("failed to persist status transition: %w", err)
	}
	p.Status = target
	res.Outcome = OutcomeApplied
	reconcileTotal.WithLabelValues(string(event.Provider), string(OutcomeApplied)).Inc()

	if target == types.PurchaseStatusApproved {
		if gerr := r.grantor.Grant(ctx, p.UserID, p.CourseID, p.ID); gerr != nil {
			// The payment is settled externally; the approval stands. The
			// missing grant is surfaced distinctly so it can be retried.
			grantFailures.Inc()
			log.Errorw("purchase approved but course grant failed",
				"purchase_id", p.ID,
				"transaction_id", p.TransactionID,
				"user_id", p.UserID,
				"course_id", p.CourseID,
				"error", gerr.Error(),
			)
			res.GrantErr = gerr
			return res, nil
		}
		res.Granted = true
		log.Infow("course granted",
			"purchase_id", p.ID, "user_id", p.UserID, "course_id", p.CourseID)
	}
	return res, nil
}

// findOrCreate looks up the purchase by transaction id and creates a PENDING
// row when absent. A second approved purchase for the same (user, course) is
// tolerated but logged.
func (r *Reconciler) findOrCreate(ctx context.Context, event *paymentevent.PaymentEvent, ref *paymentevent.Reference) (*models.Purchase, bool, error) {
	p, err := r.store.FindByTransactionID(ctx, event.Provider, event.TransactionID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, purchase.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to load purchase: %w", err)
	}

	if dup, derr := r.store.FindActiveByUserAndCourse(ctx, ref.UserID, ref.CourseID); derr == nil && dup != nil {
		logctx.FromCtx(ctx, r.log).Warnw("user already holds an approved purchase for course",
			"user_id", ref.UserID,
			"course_id", ref.CourseID,
			"existing_purchase_id", dup.ID,
			"incoming_transaction_id", event.TransactionID,
		)
	}

	p, err = r.store.CreatePending(ctx, &models.Purchase{
		UserID:            ref.UserID,
		CourseID:          ref.CourseID,
		Provider:          event.Provider,
		TransactionID:     event.TransactionID,
		Status:            types.PurchaseStatusPending,
		PaymentMethod:     event.PaymentMethod,
		Amount:            decimal.NewFromFloat(event.Amount),
		Currency:          event.Currency,
		ExternalReference: event.ExternalReference,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create pending purchase: %w", err)
	}
	return p, true, nil
}

// ensureGranted re-runs the course grant on an approved replay when the
// entitlement is missing. Redelivery is the retry path for a grant that
// failed after approval; the grant is idempotent, so a settled purchase is
// left alone.
func (r *Reconciler) ensureGranted(ctx context.Context, res *Result, p *models.Purchase) {
	has, err := r.grantor.HasCourse(ctx, p.UserID, p.CourseID)
	if err != nil {
		res.GrantErr = err
		return
	}
	if has {
		return
	}
	log := logctx.FromCtx(ctx, r.log)
	if gerr := r.grantor.Grant(ctx, p.UserID, p.CourseID, p.ID); gerr != nil {
		grantFailures.Inc()
		log.Errorw("approved purchase still ungranted after retry",
			"purchase_id", p.ID,
			"transaction_id", p.TransactionID,
			"user_id", p.UserID,
			"course_id", p.CourseID,
			"error", gerr.Error(),
		)
		res.GrantErr = gerr
		return
	}
	res.Granted = true
	log.Infow("course granted on redelivery",
		"purchase_id", p.ID, "user_id", p.UserID, "course_id", p.CourseID)
}

// resolveStale re-reads the purchase after a lost conditional update. The
// concurrent writer's state decides whether this delivery was a replay or a
// conflict.
func (r *Reconciler) resolveStale(ctx context.Context, event *paymentevent.PaymentEvent, target types.PurchaseStatus) (*Result, error) {
	p, err := r.store.FindByTransactionID(ctx, event.Provider, event.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload purchase after stale update: %w", err)
	}
	res := &Result{Purchase: p}
	if p.Status == target {
		res.Outcome = OutcomeReplayed
	} else {
		logctx.FromCtx(ctx, r.log).Warnw("concurrent delivery won conflicting transition",
			"transaction_id", event.TransactionID,
			"recorded_status", p.Status,
			"event_status", event.ProviderStatus,
		)
		res.Outcome = OutcomeConflict
	}
	reconcileTotal.WithLabelValues(string(event.Provider), string(res.Outcome)).Inc()
	return res, nil
}
