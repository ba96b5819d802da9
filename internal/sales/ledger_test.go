package sales

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerReserve_Decrements(t *testing.T) {
	q := &fakeQuerier{execTag: pgconn.NewCommandTag("UPDATE 1")}

	err := Ledger{}.Reserve(context.Background(), q, "p1", 2)
	require.NoError(t, err)

	require.Len(t, q.execs, 1)
	assert.Contains(t, q.execs[0].sql, "stock >= $2")
	assert.Equal(t, []any{"p1", 2}, q.execs[0].args)
}

func TestLedgerReserve_InsufficientStock(t *testing.T) {
	q := &fakeQuerier{execTag: pgconn.NewCommandTag("UPDATE 0")}

	err := Ledger{}.Reserve(context.Background(), q, "p2", 5)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p2", stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Requested)
}
