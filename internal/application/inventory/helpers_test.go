package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

var (
	fixedNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	cost     = decimal.NewFromInt(2500)
)

const (
	prodID  = "prod-1"
	branchA = "suc-a"
	branchB = "suc-b"
)

type engine struct {
	store    *memory.Store
	mutation *inventory.StockMutationUseCase
	query    *inventory.StockQueryUseCase
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	store := memory.NewStore()
	now := func() time.Time { return fixedNow }
	return &engine{
		store:    store,
		mutation: inventory.NewStockMutationUseCase(memory.NewTxRunner(store), inventory.MutationConfig{Now: now}, zerolog.Nop()),
		query:    inventory.NewStockQueryUseCase(store.StockRecords(), store.Ledger(), inventory.QueryConfig{Now: now}),
	}
}

// seed crea el registro (producto, sucursal) con el stock inicial y mínimo indicados.
func (e *engine) seed(t *testing.T, branchID string, current, minLevel int64) *entity.StockRecord {
	t.Helper()
	rec, err := e.mutation.CreateStockRecord(context.Background(), inventory.CreateStockInput{
		ProductID:    prodID,
		BranchID:     branchID,
		CurrentStock: current,
		Thresholds:   entity.Thresholds{MinStockLevel: minLevel, MaxStockLevel: 100, ReorderPoint: minLevel, ReorderQuantity: 20},
		UnitCost:     cost,
	})
	require.NoError(t, err)
	return rec
}

func (e *engine) record(t *testing.T, branchID string) *entity.StockRecord {
	t.Helper()
	rec, err := e.query.GetStockRecord(context.Background(), entity.StockKey{ProductID: prodID, BranchID: branchID})
	require.NoError(t, err)
	return rec
}

func (e *engine) ledger(t *testing.T) []*entity.LedgerEntry {
	t.Helper()
	page, err := e.store.Ledger().Query(context.Background(), entity.LedgerFilter{ProductID: prodID})
	require.NoError(t, err)
	return page.Entries
}

func adjust(typ entity.LedgerType, branchID string, qty int64) inventory.AdjustStockInput {
	return inventory.AdjustStockInput{
		ProductID: prodID,
		BranchID:  branchID,
		Type:      typ,
		Quantity:  qty,
		UnitCost:  cost,
		UserID:    "user-1",
	}
}

func reservation(branchID string, qty int64) inventory.ReservationInput {
	return inventory.ReservationInput{ProductID: prodID, BranchID: branchID, Quantity: qty, UserID: "user-1"}
}

func transfer(from, to string, qty int64) inventory.TransferStockInput {
	return inventory.TransferStockInput{
		ProductID:    prodID,
		FromBranchID: from,
		ToBranchID:   to,
		Quantity:     qty,
		UnitCost:     cost,
		UserID:       "user-1",
	}
}
