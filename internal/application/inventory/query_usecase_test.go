package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestLowStockItems_OrdenYSugerido(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 4, 5)
	e.seed(t, branchB, 1, 5)
	ctx := context.Background()
	_, err := e.mutation.CreateStockRecord(ctx, inventory.CreateStockInput{
		ProductID: "prod-2", BranchID: branchA, CurrentStock: 50,
		Thresholds: entity.Thresholds{MinStockLevel: 5},
	})
	require.NoError(t, err)

	items, err := e.query.LowStockItems(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, branchB, items[0].Record.BranchID, "menor stock primero")
	assert.Equal(t, int64(20), items[0].SuggestedOrderQty)

	items, err = e.query.LowStockItems(ctx, branchA, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4), items[0].Record.CurrentStock)
}

func TestSuggestedOrderQty(t *testing.T) {
	tests := []struct {
		name string
		rec  entity.StockRecord
		want int64
	}{
		{name: "cantidad de reorden configurada", rec: entity.StockRecord{ReorderQuantity: 12, CurrentStock: 1}, want: 12},
		{name: "hasta el máximo", rec: entity.StockRecord{MaxStockLevel: 30, CurrentStock: 4}, want: 26},
		{name: "sin máximo, hasta el mínimo", rec: entity.StockRecord{MinStockLevel: 10, CurrentStock: 3}, want: 7},
		{name: "ya cubierto", rec: entity.StockRecord{MinStockLevel: 2, CurrentStock: 3}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inventory.SuggestedOrderQty(&tt.rec))
		})
	}
}

func TestStats_Valorizacion(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 10, 0)
	e.seed(t, branchB, 0, 0)

	stats, err := e.query.Stats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRecords)
	assert.Equal(t, 1, stats.LowStockCount, "0 <= min 0")
	assert.Equal(t, 1, stats.OutOfStockCount)
	assert.True(t, decimal.NewFromInt(25000).Equal(stats.TotalValue))

	stats, err = e.query.Stats(context.Background(), branchA)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRecords)
	assert.Equal(t, 0, stats.OutOfStockCount)
}

func TestQueryLedger_LimitesYTipo(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 0, 0)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerPurchase, branchA, 1))
		require.NoError(t, err)
	}

	page, err := e.query.QueryLedger(ctx, entity.LedgerFilter{ProductID: prodID})
	require.NoError(t, err)
	assert.Len(t, page.Entries, 20, "límite por defecto")
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, int64(25), page.Entries[0].NewStock, "más reciente primero")

	page, err = e.query.QueryLedger(ctx, entity.LedgerFilter{Limit: 1000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
	assert.Equal(t, 0, page.Offset)

	_, err = e.query.QueryLedger(ctx, entity.LedgerFilter{Type: "robo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovementHistory_PorSucursalEnCualquierLado(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 10, 0)
	ctx := context.Background()
	_, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerSale, branchA, 1))
	require.NoError(t, err)
	_, err = e.mutation.TransferStock(ctx, transfer(branchA, branchB, 2))
	require.NoError(t, err)
	_, err = e.mutation.AdjustStock(ctx, adjust(entity.LedgerReturn, branchB, 1))
	require.NoError(t, err)

	all, err := e.query.MovementHistory(ctx, prodID, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, entity.LedgerReturn, all[0].Type, "más reciente primero")

	onB, err := e.query.MovementHistory(ctx, prodID, branchB, 7)
	require.NoError(t, err)
	assert.Len(t, onB, 2, "traslado entrante y devolución")

	_, err = e.query.MovementHistory(ctx, "", "", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovementHistory_DevuelveMasDeUnaPagina(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 0, 0)
	ctx := context.Background()
	const purchases = 250
	for i := 0; i < purchases; i++ {
		_, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerPurchase, branchA, 1))
		require.NoError(t, err)
	}

	history, err := e.query.MovementHistory(ctx, prodID, branchA, 0)
	require.NoError(t, err)
	require.Len(t, history, purchases, "sin truncar ni duplicar")
	seen := make(map[string]bool, purchases)
	for _, entry := range history {
		assert.False(t, seen[entry.TransactionID], "asiento repetido %s", entry.TransactionID)
		seen[entry.TransactionID] = true
	}
	assert.Equal(t, int64(purchases), history[0].NewStock)
	assert.Equal(t, int64(1), history[purchases-1].NewStock)
}

func TestMovementHistory_VentanaFijaEnAhora(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 10, 0)
	ctx := context.Background()
	_, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerSale, branchA, 1))
	require.NoError(t, err)

	// Un asiento posterior al instante de la consulta queda fuera de la ventana.
	later := fixedNow.Add(time.Minute)
	from := branchA
	require.NoError(t, e.store.Ledger().Append(ctx, &entity.LedgerEntry{
		ID:            "ledger-futuro",
		TransactionID: "SAL-FUTURO",
		ProductID:     prodID,
		FromBranchID:  &from,
		Type:          entity.LedgerSale,
		Quantity:      1,
		UnitCost:      cost,
		TotalCost:     cost,
		CreatedAt:     later,
	}))

	history, err := e.query.MovementHistory(ctx, prodID, "", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.LedgerSale, history[0].Type)
}
