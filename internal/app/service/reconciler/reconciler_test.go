package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduforge/coursepay/internal/app/service/paymentevent"
	"github.com/eduforge/coursepay/internal/app/service/purchase"
	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/types"
)

type fakeStore struct {
	mu        sync.Mutex
	byTx      map[string]*models.Purchase
	nextID    int
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byTx: map[string]*models.Purchase{}}
}

func key(provider types.PaymentProvider, txID string) string {
	return string(provider) + ":" + txID
}

func (s *fakeStore) FindByTransactionID(_ context.Context, provider types.PaymentProvider, txID string) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byTx[key(provider, txID)]
	if !ok {
		return nil, purchase.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) FindActiveByUserAndCourse(_ context.Context, userID, courseID string) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byTx {
		if p.UserID == userID && p.CourseID == courseID && p.Status == types.PurchaseStatusApproved {
			cp := *p
			return &cp, nil
		}
	}
	return nil, purchase.ErrNotFound
}

func (s *fakeStore) CreatePending(_ context.Context, p *models.Purchase) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(p.Provider, p.TransactionID)
	if existing, ok := s.byTx[k]; ok {
		cp := *existing
		return &cp, nil
	}
	s.nextID++
	cp := *p
	cp.ID = fmt.Sprintf("purchase-%d", s.nextID)
	cp.Status = types.PurchaseStatusPending
	s.byTx[k] = &cp
	out := cp
	return &out, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id string, from, to types.PurchaseStatus, paymentMethod string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	for _, p := range s.byTx {
		if p.ID == id {
			if p.Status != from {
				return purchase.ErrStaleStatus
			}
			p.Status = to
			if paymentMethod != "" {
				p.PaymentMethod = paymentMethod
			}
			return nil
		}
	}
	return purchase.ErrNotFound
}

func (s *fakeStore) get(provider types.PaymentProvider, txID string) *models.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byTx[key(provider, txID)]
}

type fakeGrantor struct {
	mu      sync.Mutex
	calls   int
	err     error
	granted map[string]bool
}

func (g *fakeGrantor) Grant(_ context.Context, userID, courseID, sourcePurchaseID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return g.err
	}
	if g.granted == nil {
		g.granted = map[string]bool{}
	}
	g.granted[userID+":"+courseID] = true
	return nil
}

func (g *fakeGrantor) HasCourse(_ context.Context, userID, courseID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.granted[userID+":"+courseID], nil
}

func (g *fakeGrantor) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGrantor) setErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func approvedEvent(txID string) *paymentevent.PaymentEvent {
	return &paymentevent.PaymentEvent{
		Provider:          types.PaymentProviderMercadoPago,
		TransactionID:     txID,
		ProviderStatus:    "approved",
		ExternalReference: `{"courseId":42,"userId":7}`,
		PaymentMethod:     "pix",
		Amount:            149.9,
		Currency:          "BRL",
	}
}

func newTestReconciler(store PurchaseStore, grantor AccessGrantor) *Reconciler {
	return New(store, grantor, zap.NewNop().Sugar())
}

func TestReconcile_ApprovedCreatesAndGrants(t *testing.T) {
	store := newFakeStore()
	grantor := &fakeGrantor{}
	r := newTestReconciler(store, grantor)

	res, err := r.Reconcile(context.Background(), approvedEvent("tx-1"))
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, res.Outcome)
	require.True(t, res.Created)
	require.True(t, res.Granted)
	require.Equal(t, types.PurchaseStatusApproved, res.Purchase.Status)
	require.Equal(t, "42", res.Purchase.CourseID)
	require.Equal(t, "7", res.Purchase.UserID)
	require.Equal(t, 1, grantor.count())

	stored := store.get(types.PaymentProviderMercadoPago, "tx-1")
	require.Equal(t, types.PurchaseStatusApproved, stored.Status)
	require.Equal(t, "pix", stored.PaymentMethod)
}

func TestReconcile_ReplayDoesNotRegrant(t *testing.T) {
	store := newFakeStore()
	grantor := &fakeGrantor{}
	r := newTestReconciler(store, grantor)

	_, err := r.Reconcile(context.Background(), approvedEvent("tx-1"))
	require.NoError(t, err)

	res, err := r.Reconcile(context.Background(), approvedEvent("tx-1"))
	require.NoError(t, err)
	require.Equal(t, OutcomeReplayed, res.Outcome)
	require.False(t, res.Created)
	require.False(t, res.Granted)
	require.Equal(t, 1, grantor.count())
}

func TestReconcile_OutOfOrderDeliveriesConverge(t *testing.T) {
	// approved then stale pending
	store := newFakeStore()
	grantor := &fakeGrantor{}
	r := newTestReconciler(store, grantor)

	_, err := r.Reconcile(context.Background(), approvedEvent("tx-1"))
	require.NoError(t, err)

	stale := approvedEvent("tx-1")
	stale.ProviderStatus = "pending"
	res, err := r.Reconcile(context.Background(), stale)
	require.NoError(t, err)
	require.Equal(t, OutcomeReplayed, res.Outcome)
	require.Equal(t, types.PurchaseStatusApproved, store.get(types.PaymentProviderMercadoPago, "tx-1").Status)
	require.Equal(t, 1, grantor.count())

	// pending then approved
	store2 := newFakeStore()
	grantor2 := &fakeGrantor{}
	r2 := newTestReconciler(store2, grantor2)

	first := approvedEvent("tx-2")
	first.ProviderStatus = "pending"
	_, err = r2.Reconcile(context.Background(), first)
	require.NoError(t, err)

	second := approvedEvent("tx-2")
	res, err = r2.Reconcile(context.Background(), second)
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, res.Outcome)
	require.Equal(t, types.PurchaseStatusApproved, store2.get(types.PaymentProviderMercadoPago, "tx-2").Status)
	require.Equal(t, 1, grantor2.count())
}

func TestReconcile_TerminalConflictIsAcceptedWithoutWrite(t *testing.T) {
	store := newFakeStore()
	grantor := &fakeGrantor{}
	r := newTestReconciler(store, grantor)

	_, err := r.Reconcile(context.Background(), approvedEvent("tx-1"))
	require.NoError(t, err)

	ev := approvedEvent("tx-1")
	ev.ProviderStatus = "cancelled"
	res, err := r.Reconcile(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, OutcomeConflict, res.Outcome)
	require.Equal(t, 1, grantor.count())

	stored := store.get(types.PaymentProviderMercadoPago, "tx-1")
	require.Equal(t, types.PurchaseStatusApproved, stored.Status)
}

func TestReconcile_UnknownStatusRejectedAfterCreate(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store, &fakeGrantor{})

	ev := approvedEvent("tx-1")
	ev.ProviderStatus = "mystery"
	_, err := r.Reconcile(context.Background(), ev)
	require.ErrorIs(t, err, ErrUnknownProviderStatus)

	// the initial row exists even though the event was rejected
	stored := store.get(types.PaymentProviderMercadoPago, "tx-1")
	require.NotNil(t, stored)
	require.Equal(t, types.PurchaseStatusPending, stored.Status)
}

func TestReconcile_PendingEventIsNoOpWrite(t *testing.T) {
	store := newFakeStore()
	grantor := &fakeGrantor{}
	r := newTestReconciler(store, grantor)

	ev := approvedEvent("tx-1")
	ev.ProviderStatus = "in_process"
	res, err := r.Reconcile(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, res.Outcome)
	require.True(t, res.Created)
	require.Equal(t, 0, grantor.count())

	// second pending delivery re-affirms the recorded state
	res, err = r.Reconcile(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, OutcomeReplayed, res.Outcome)
	require.Equal(t, types.PurchaseStatusPending, store.get(types.PaymentProviderMercadoPago, "tx-1").Status)
}

func TestReconcile_RejectedAndCancelledMap(t *testing.T) {
	for providerStatus, want := range map[string]types.PurchaseStatus{
		"rejected":     types.PurchaseStatusRejected,
		"cancelled":    types.PurchaseStatusCancelled,
		"refunded":     types.PurchaseStatusCancelled,
		"charged_back": types.PurchaseStatusCancelled,
	} {
		store := newFakeStore()
		grantor := &fakeGrantor{}
		r := newTestReconciler(store, grantor)

		ev := approvedEvent("tx-1")
		ev.ProviderStatus = providerStatus
		res, err := r.Reconcile(context.Background(), ev)
		require.NoError(t, err, providerStatus)
		require.Equal(t, OutcomeApplied, res.Outcome, providerStatus)
		require.Equal(t, want, res.Purchase.Status, providerStatus)
		require.Equal(t, 0, grantor.count(), providerStatus)
	}
}

func TestReconcile_GrantFailureKeepsApproval(t *testing.T) {
	store := newFakeStore()
	grantor := &fakeGrantor{err: errors.New("entitlement db down")}
	r := newTestReconciler(store, grantor)

	res, err := r.Reconcile(context.Background(), approvedEvent("tx-1"))
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, res.Outcome)
	require.False(t, res.Granted)
	require.Error(t, res.GrantErr)
	require.Equal(t, types.PurchaseStatusApproved, store.get(types.PaymentProviderMercadoPago, "tx-1").Status)
}

func TestReconcile_FailedGrantRetriedOnRedelivery(t *testing.T) {
	store := newFakeStore()
	grantor := &fakeGrantor{err: errors.New("entitlement db down")}
	r := newTestReconciler(store, grantor)

	res, err := r.Reconcile(context.Background(), approvedEvent("tx-1"))
	require.NoError(t, err)
	require.False(t, res.Granted)
	require.Error(t, res.GrantErr)

	// the provider redelivers; the replay notices the missing entitlement
	// and retries the grant
	grantor.setErr(nil)
	res, err = r.Reconcile(context.Background(), approvedEvent("tx-1"))
	require.NoError(t, err)
	require.Equal(t, OutcomeReplayed, res.Outcome)
	require.True(t, res.Granted)
	require.NoError(t, res.GrantErr)
	require.Equal(t, 2, grantor.count())

	// once granted, further replays stop calling the grantor
	res, err = r.Reconcile(context.Background(), approvedEvent("tx-1"))
	require.NoError(t, err)
	require.Equal(t, OutcomeReplayed, res.Outcome)
	require.False(t, res.Granted)
	require.Equal(t, 2, grantor.count())
}

func TestReconcile_StaleUpdateResolvedByReread(t *testing.T) {
	store := newFakeStore()
	grantor := &fakeGrantor{}
	r := newTestReconciler(store, grantor)

	// seed a pending row, then make the conditional update fail as if a
	// concurrent writer moved the purchase first
	ev := approvedEvent("tx-1")
	ev.ProviderStatus = "pending"
	_, err := r.Reconcile(context.Background(), ev)
	require.NoError(t, err)

	store.mu.Lock()
	store.byTx[key(types.PaymentProviderMercadoPago, "tx-1")].Status = types.PurchaseStatusApproved
	store.updateErr = purchase.ErrStaleStatus
	store.mu.Unlock()

	res, err := r.Reconcile(context.Background(), approvedEvent("tx-1"))
	require.NoError(t, err)
	require.Equal(t, OutcomeReplayed, res.Outcome)
	require.Equal(t, 0, grantor.count())

	// a conflicting concurrent outcome is reported as such
	ev = approvedEvent("tx-1")
	ev.ProviderStatus = "cancelled"
	store.mu.Lock()
	store.byTx[key(types.PaymentProviderMercadoPago, "tx-1")].Status = types.PurchaseStatusPending
	store.mu.Unlock()
	res, err = r.Reconcile(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, OutcomeConflict, res.Outcome)
}

func TestReconcile_InvalidInput(t *testing.T) {
	r := newTestReconciler(newFakeStore(), &fakeGrantor{})

	_, err := r.Reconcile(context.Background(), nil)
	require.ErrorIs(t, err, paymentevent.ErrInvalidPayload)

	ev := approvedEvent("tx-1")
	ev.ExternalReference = "garbage"
	_, err = r.Reconcile(context.Background(), ev)
	require.ErrorIs(t, err, paymentevent.ErrUnresolvableReference)
}

func TestReconcile_ConcurrentDeliveriesGrantOnce(t *testing.T) {
	store := newFakeStore()
	grantor := &fakeGrantor{}
	r := newTestReconciler(store, grantor)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Reconcile(context.Background(), approvedEvent("tx-1"))
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, grantor.count())
	require.Equal(t, types.PurchaseStatusApproved, store.get(types.PaymentProviderMercadoPago, "tx-1").Status)
}
