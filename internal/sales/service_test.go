package sales

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/salepoint/pos-backend/internal/postgres"
)

type fakeStore struct {
	inserted     *Sale
	insertErr    error
	lineItems    []LineItem
	lineItemErr  error
	detail       *SaleDetail
	detailErr    error
	list         []SaleSummary
	updateN      int64
	updateErr    error
	updateFrom   Status
	updateTo     Status
	status       Status
	statusErr    error
	statusCalled bool
}

func (f *fakeStore) InsertSale(ctx context.Context, tx postgres.Querier, s *Sale) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = s
	return nil
}

func (f *fakeStore) InsertLineItem(ctx context.Context, tx postgres.Querier, saleID string, it LineItem) error {
	if f.lineItemErr != nil {
		return f.lineItemErr
	}
	f.lineItems = append(f.lineItems, it)
	return nil
}

func (f *fakeStore) GetSaleByID(ctx context.Context, id string) (*SaleDetail, error) {
	return f.detail, f.detailErr
}

func (f *fakeStore) ListSales(ctx context.Context) ([]SaleSummary, error) {
	return f.list, nil
}

func (f *fakeStore) UpdateStatusFrom(ctx context.Context, id string, from, to Status) (int64, error) {
	f.updateFrom, f.updateTo = from, to
	return f.updateN, f.updateErr
}

func (f *fakeStore) GetStatus(ctx context.Context, id string) (Status, error) {
	f.statusCalled = true
	return f.status, f.statusErr
}

type fakeLedger struct {
	stock    map[string]int
	reserved []LineItem
}

func (f *fakeLedger) Reserve(ctx context.Context, tx postgres.Querier, productID string, qty int) error {
	if f.stock[productID] < qty {
		return &InsufficientStockError{ProductID: productID, Requested: qty}
	}
	f.stock[productID] -= qty
	f.reserved = append(f.reserved, LineItem{ProductID: productID, Quantity: qty})
	return nil
}

type fakeRunner struct {
	began      bool
	committed  bool
	rolledBack bool
}

func (f *fakeRunner) WithinTx(ctx context.Context, fn func(tx postgres.Querier) error) error {
	f.began = true
	if err := fn(nil); err != nil {
		f.rolledBack = true
		return err
	}
	f.committed = true
	return nil
}

type projection struct {
	customerID string
	saleID     string
	total      float64
	at         time.Time
}

type fakeProjector struct {
	err  error
	last *projection
}

func (f *fakeProjector) Project(ctx context.Context, customerID, saleID string, total float64, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.last = &projection{customerID, saleID, total, at}
	return nil
}

type fakePublisher struct{ msgs [][]byte }

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.msgs = append(f.msgs, value)
}

func (f *fakePublisher) envelopes(t *testing.T) []Envelope {
	t.Helper()
	out := make([]Envelope, 0, len(f.msgs))
	for _, m := range f.msgs {
		var env Envelope
		require.NoError(t, json.Unmarshal(m, &env))
		out = append(out, env)
	}
	return out
}

type serviceFixture struct {
	svc       *Service
	store     *fakeStore
	ledger    *fakeLedger
	runner    *fakeRunner
	projector *fakeProjector
	created   *fakePublisher
	retry     *fakePublisher
}

func newFixture(t *testing.T, stock map[string]int) *serviceFixture {
	t.Helper()
	fx := &serviceFixture{
		store:     &fakeStore{},
		ledger:    &fakeLedger{stock: stock},
		runner:    &fakeRunner{},
		projector: &fakeProjector{},
		created:   &fakePublisher{},
		retry:     &fakePublisher{},
	}
	fx.svc = NewService(fx.store, fx.ledger, fx.runner, fx.projector,
		fx.created, fx.retry, zaptest.NewLogger(t), "salepoint-test")
	fx.svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	fx.svc.newID = func() string { return "sale-fixed-id" }
	return fx
}

func validInput() CreateSaleInput {
	return CreateSaleInput{
		CustomerID: "c1",
		SalesRepID: "r1",
		Items: []LineItem{
			{ProductID: "p1", Quantity: 2, Price: 10.0},
			{ProductID: "p2", Quantity: 1, Price: 5.0},
		},
	}
}

func TestCreateSale_HappyPath(t *testing.T) {
	fx := newFixture(t, map[string]int{"p1": 10, "p2": 10})

	res, err := fx.svc.CreateSale(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "sale-fixed-id", res.SaleID)
	assert.InDelta(t, 26.75, res.TotalAmount, 1e-9)

	require.NotNil(t, fx.store.inserted)
	assert.Equal(t, StatusPending, fx.store.inserted.Status)
	assert.Equal(t, "CASH", fx.store.inserted.PaymentMethod)
	assert.InDelta(t, 25.0, fx.store.inserted.Subtotal, 1e-9)
	assert.InDelta(t, 1.75, fx.store.inserted.TaxAmount, 1e-9)

	// line items and reservations follow input order
	require.Len(t, fx.store.lineItems, 2)
	assert.Equal(t, "p1", fx.store.lineItems[0].ProductID)
	assert.Equal(t, "p2", fx.store.lineItems[1].ProductID)
	assert.Equal(t, 8, fx.ledger.stock["p1"])
	assert.Equal(t, 9, fx.ledger.stock["p2"])

	assert.True(t, fx.runner.committed)
	assert.False(t, fx.runner.rolledBack)

	require.NotNil(t, fx.projector.last)
	assert.Equal(t, "c1", fx.projector.last.customerID)
	assert.Equal(t, "sale-fixed-id", fx.projector.last.saleID)
	assert.InDelta(t, 26.75, fx.projector.last.total, 1e-9)

	envs := fx.created.envelopes(t)
	require.Len(t, envs, 1)
	assert.Equal(t, EventSaleCreated, envs[0].EventType)
	assert.Equal(t, "sale-fixed-id", envs[0].CorrelationID)
	assert.Empty(t, fx.retry.msgs)
}

func TestCreateSale_MissingFields(t *testing.T) {
	fx := newFixture(t, nil)

	for _, in := range []CreateSaleInput{
		{SalesRepID: "r1", Items: validInput().Items},
		{CustomerID: "c1", Items: validInput().Items},
		{CustomerID: "c1", SalesRepID: "r1"},
	} {
		_, err := fx.svc.CreateSale(context.Background(), in)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	}
	assert.False(t, fx.runner.began, "validation failures must not open a transaction")
}

func TestCreateSale_InvalidQuantity(t *testing.T) {
	fx := newFixture(t, nil)

	in := validInput()
	in.Items[0].Quantity = 0
	_, err := fx.svc.CreateSale(context.Background(), in)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.False(t, fx.runner.began)
}

func TestCreateSale_InsufficientStockRollsBack(t *testing.T) {
	// p2 is out of stock; p1's reservation earlier in the same request must
	// be undone with the rest of the unit of work
	fx := newFixture(t, map[string]int{"p1": 10, "p2": 0})

	_, err := fx.svc.CreateSale(context.Background(), validInput())

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p2", stockErr.ProductID)

	assert.True(t, fx.runner.rolledBack)
	assert.False(t, fx.runner.committed)
	assert.Nil(t, fx.projector.last, "no projection for an aborted sale")
	assert.Empty(t, fx.created.msgs, "no created event for an aborted sale")
}

func TestCreateSale_ProjectionFailureDoesNotFailRequest(t *testing.T) {
	fx := newFixture(t, map[string]int{"p1": 10, "p2": 10})
	fx.projector.err = errors.New("profile store down")

	res, err := fx.svc.CreateSale(context.Background(), validInput())
	require.NoError(t, err, "the sale is committed; projection failure is isolated")
	assert.Equal(t, "sale-fixed-id", res.SaleID)

	envs := fx.retry.envelopes(t)
	require.Len(t, envs, 1)
	assert.Equal(t, EventProjectionRequested, envs[0].EventType)

	var p ProjectionRequestedPayload
	require.NoError(t, json.Unmarshal(envs[0].Payload, &p))
	assert.Equal(t, "c1", p.CustomerID)
	assert.Equal(t, "sale-fixed-id", p.SaleID)
	assert.InDelta(t, 26.75, p.TotalAmount, 1e-9)
	assert.Equal(t, 1, p.Attempt)

	// the created event still goes out
	assert.Len(t, fx.created.msgs, 1)
}

func TestUpdateStatus_HappyPath(t *testing.T) {
	fx := newFixture(t, nil)
	fx.store.updateN = 1

	st, err := fx.svc.UpdateStatus(context.Background(), "s1", "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, st)
	assert.Equal(t, StatusPending, fx.store.updateFrom)
	assert.Equal(t, StatusCompleted, fx.store.updateTo)
}

func TestUpdateStatus_InvalidValue(t *testing.T) {
	fx := newFixture(t, nil)

	_, err := fx.svc.UpdateStatus(context.Background(), "s1", "SHIPPED")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.False(t, fx.store.statusCalled, "invalid values never reach storage")
}

func TestUpdateStatus_BackToPendingRejected(t *testing.T) {
	fx := newFixture(t, nil)

	_, err := fx.svc.UpdateStatus(context.Background(), "s1", "PENDING")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_TerminalSaleRejected(t *testing.T) {
	fx := newFixture(t, nil)
	fx.store.updateN = 0
	fx.store.status = StatusCompleted

	_, err := fx.svc.UpdateStatus(context.Background(), "s1", "COMPLETED")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	fx := newFixture(t, nil)
	fx.store.updateN = 0
	fx.store.statusErr = ErrSaleNotFound

	_, err := fx.svc.UpdateStatus(context.Background(), "missing", "CANCELLED")
	assert.ErrorIs(t, err, ErrSaleNotFound)
}
