package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/salepoint/pos-backend/internal/kafka"
	"github.com/salepoint/pos-backend/internal/redisx"
	"github.com/salepoint/pos-backend/internal/sales"
)

// Reconciler replays customer-profile projections that failed inline after a
// sale committed. The sale record is the source of truth; this worker only
// brings the best-effort cache back in line.
type Reconciler struct {
	Projector   *Projector
	Redis       *redis.Client
	Logger      *zap.Logger
	ServiceName string
}

// HandleProjectionRetry is wired as the consumer handler for the
// sale.projection.retry topic. Returning an error leaves the offset
// uncommitted so the message is redelivered.
func (rc *Reconciler) HandleProjectionRetry(ctx context.Context, m kafkago.Message) error {
	var env sales.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != sales.EventProjectionRequested {
		return nil // ignore
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, rc.ServiceName, env.EventID)
	if ok, _ := redisx.Exists(ctx, rc.Redis, dkey); ok {
		return nil
	}

	p, err := kafkax.UnwrapPayload[sales.ProjectionRequestedPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := rc.Projector.Project(ctx, p.CustomerID, p.SaleID, p.TotalAmount, p.SaleDate); err != nil {
		rc.Logger.Warn("projection retry failed",
			zap.String("sale_id", p.SaleID),
			zap.String("customer_id", p.CustomerID),
			zap.Int("attempt", p.Attempt),
			zap.Error(err),
		)
		return err
	}

	// dedup only after the write landed
	_ = rc.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	rc.Logger.Info("customer profile reconciled",
		zap.String("sale_id", p.SaleID),
		zap.String("customer_id", p.CustomerID),
	)
	return nil
}
