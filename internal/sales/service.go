package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/salepoint/pos-backend/internal/kafka"
	"github.com/salepoint/pos-backend/internal/metrics"
	"github.com/salepoint/pos-backend/internal/postgres"
)

// SaleStore persists sale headers and line items. Implemented by Repo;
// faked in tests.
type SaleStore interface {
	InsertSale(ctx context.Context, tx postgres.Querier, s *Sale) error
	InsertLineItem(ctx context.Context, tx postgres.Querier, saleID string, it LineItem) error
	GetSaleByID(ctx context.Context, id string) (*SaleDetail, error)
	ListSales(ctx context.Context) ([]SaleSummary, error)
	UpdateStatusFrom(ctx context.Context, id string, from, to Status) (int64, error)
	GetStatus(ctx context.Context, id string) (Status, error)
}

// StockLedger reserves product stock inside the sale's transaction.
type StockLedger interface {
	Reserve(ctx context.Context, tx postgres.Querier, productID string, qty int) error
}

// TxRunner wraps a unit of work in a single transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx postgres.Querier) error) error
}

// Projector overwrites the denormalized customer profile. Called only after
// the sale transaction has committed.
type Projector interface {
	Project(ctx context.Context, customerID, saleID string, total float64, at time.Time) error
}

// Publisher emits domain events; satisfied by the kafka producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type CreateSaleInput struct {
	CustomerID     string
	SalesRepID     string
	Items          []LineItem
	DiscountAmount *float64
	TaxAmount      *float64
	PaymentMethod  string
	Notes          string
	TraceID        string
}

type CreateSaleResult struct {
	SaleID      string
	TotalAmount float64
}

// Service orchestrates sale creation, reads and status updates.
type Service struct {
	Store       SaleStore
	Ledger      StockLedger
	Tx          TxRunner
	Projector   Projector
	Created     Publisher // sale.created
	RetryQueue  Publisher // sale.projection.retry
	Logger      *zap.Logger
	ServiceName string

	now   func() time.Time
	newID func() string
}

func NewService(store SaleStore, ledger StockLedger, tx TxRunner, projector Projector,
	created, retryQueue Publisher, logger *zap.Logger, serviceName string) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Service{
		Store:       store,
		Ledger:      ledger,
		Tx:          tx,
		Projector:   projector,
		Created:     created,
		RetryQueue:  retryQueue,
		Logger:      logger,
		ServiceName: serviceName,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// CreateSale validates the request, prices it, and commits the sale header,
// line items and stock reservations as one unit of work. The customer
// profile projection and the created event happen after commit only; their
// failures never fail the request.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (*CreateSaleResult, error) {
	if in.CustomerID == "" || in.SalesRepID == "" || len(in.Items) == 0 {
		metrics.SaleCreateFailures.WithLabelValues("validation").Inc()
		return nil, &ValidationError{Msg: "customer id, sales rep id and items are required"}
	}

	totals, err := PriceItems(in.Items, in.DiscountAmount, in.TaxAmount)
	if err != nil {
		metrics.SaleCreateFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	payment := in.PaymentMethod
	if payment == "" {
		payment = "CASH"
	}

	sale := &Sale{
		ID:             s.newID(),
		CustomerID:     in.CustomerID,
		SalesRepID:     in.SalesRepID,
		SaleDate:       s.now().UTC(),
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.Discount,
		TaxAmount:      totals.Tax,
		TotalAmount:    totals.Total,
		Status:         StatusPending,
		PaymentMethod:  payment,
		Notes:          in.Notes,
	}

	err = s.Tx.WithinTx(ctx, func(tx postgres.Querier) error {
		if err := s.Store.InsertSale(ctx, tx, sale); err != nil {
			return err
		}
		// line items in input order; the first insufficiency aborts the loop
		// and rolls everything back
		for _, it := range in.Items {
			if err := s.Store.InsertLineItem(ctx, tx, sale.ID, it); err != nil {
				return err
			}
			if err := s.Ledger.Reserve(ctx, tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// anything that is not a domain error is an infrastructure failure
		// of the unit of work
		var stockErr *InsufficientStockError
		var txErr *postgres.TransactionError
		if !errors.As(err, &stockErr) && !errors.As(err, &txErr) {
			err = &postgres.TransactionError{Op: "statement", Err: err}
		}
		metrics.SaleCreateFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	metrics.SalesCreated.Inc()
	s.Logger.Info("sale created",
		zap.String("sale_id", sale.ID),
		zap.String("customer_id", sale.CustomerID),
		zap.Float64("total_amount", sale.TotalAmount),
	)

	s.projectProfile(ctx, sale, in.TraceID)
	s.publishCreated(sale, in.Items, in.TraceID)

	return &CreateSaleResult{SaleID: sale.ID, TotalAmount: sale.TotalAmount}, nil
}

// GetSale reads one sale. Transaction-free.
func (s *Service) GetSale(ctx context.Context, id string) (*SaleDetail, error) {
	return s.Store.GetSaleByID(ctx, id)
}

// ListSales lists all sales, most recent first. Transaction-free.
func (s *Service) ListSales(ctx context.Context) ([]SaleSummary, error) {
	return s.Store.ListSales(ctx)
}

// UpdateStatus applies one lifecycle transition. A single conditional update
// suffices since PENDING is the only state with outgoing transitions; on a
// miss a status read tells a missing sale from a terminal one.
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string) (Status, error) {
	to, err := ParseStatus(rawStatus)
	if err != nil {
		return "", err
	}
	if !CanTransition(StatusPending, to) {
		return "", ErrInvalidTransition
	}
	n, err := s.Store.UpdateStatusFrom(ctx, id, StatusPending, to)
	if err != nil {
		return "", err
	}
	if n == 0 {
		cur, err := s.Store.GetStatus(ctx, id)
		if err != nil {
			return "", err
		}
		s.Logger.Warn("status transition rejected",
			zap.String("sale_id", id),
			zap.String("from", string(cur)),
			zap.String("to", string(to)),
		)
		return "", ErrInvalidTransition
	}
	return to, nil
}

func (s *Service) projectProfile(ctx context.Context, sale *Sale, trace string) {
	err := s.Projector.Project(ctx, sale.CustomerID, sale.ID, sale.TotalAmount, sale.SaleDate)
	if err == nil {
		return
	}
	perr := &ProjectionError{CustomerID: sale.CustomerID, SaleID: sale.ID, Err: err}
	metrics.ProjectionFailures.Inc()
	s.Logger.Warn("customer profile projection failed, queued for retry",
		zap.String("sale_id", sale.ID),
		zap.Error(perr),
	)
	s.publish(s.RetryQueue, EventProjectionRequested, sale.ID, trace,
		ProjectionRequestedPayload{
			CustomerID:  sale.CustomerID,
			SaleID:      sale.ID,
			TotalAmount: sale.TotalAmount,
			SaleDate:    sale.SaleDate,
			Attempt:     1,
		})
}

func (s *Service) publishCreated(sale *Sale, items []LineItem, trace string) {
	s.publish(s.Created, EventSaleCreated, sale.ID, trace,
		SaleCreatedPayload{
			SaleID:      sale.ID,
			CustomerID:  sale.CustomerID,
			SalesRepID:  sale.SalesRepID,
			Items:       items,
			TotalAmount: sale.TotalAmount,
		})
}

func (s *Service) publish(p Publisher, eventType, saleID, trace string, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: saleID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(saleID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func failureReason(err error) string {
	var stockErr *InsufficientStockError
	var txErr *postgres.TransactionError
	switch {
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.As(err, &txErr):
		return "transaction"
	default:
		return "storage"
	}
}
