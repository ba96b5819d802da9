package profile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salepoint/pos-backend/internal/redisx"
)

// HashWriter is the slice of redis the projector needs; *redis.Client
// satisfies it.
type HashWriter interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Projector maintains the denormalized customer profile view. It is written
// only after the owning sale transaction has committed, as an unconditional
// overwrite: last writer wins when sales for the same customer race.
type Projector struct {
	Redis HashWriter
}

func (p *Projector) Project(ctx context.Context, customerID, saleID string, total float64, at time.Time) error {
	key := fmt.Sprintf(redisx.KeyCustomerProfile, customerID)
	return p.Redis.HSet(ctx, key,
		redisx.FieldLastPurchaseDate, at.UTC().Format(time.RFC3339),
		redisx.FieldLastPurchaseAmount, strconv.FormatFloat(total, 'f', 2, 64),
		redisx.FieldLastSaleID, saleID,
	).Err()
}
