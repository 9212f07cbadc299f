package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestCreateStockRecord_DerivadosYVersion(t *testing.T) {
	e := newEngine(t)
	rec := e.seed(t, branchA, 4, 5)

	assert.Equal(t, int64(1), rec.Version)
	assert.Equal(t, int64(4), rec.AvailableStock)
	assert.True(t, rec.IsLowStock)
	assert.Equal(t, "COP", rec.Currency, "moneda por defecto")
	require.NotNil(t, rec.LastRestockedAt)
	assert.Empty(t, e.ledger(t), "el stock inicial no genera asiento")
}

func TestCreateStockRecord_DuplicadoEsConflicto(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 1, 0)

	_, err := e.mutation.CreateStockRecord(context.Background(), inventory.CreateStockInput{ProductID: prodID, BranchID: branchA})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateStockRecord_EntradaInvalida(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.mutation.CreateStockRecord(ctx, inventory.CreateStockInput{ProductID: prodID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.mutation.CreateStockRecord(ctx, inventory.CreateStockInput{ProductID: prodID, BranchID: branchA, CurrentStock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.mutation.CreateStockRecord(ctx, inventory.CreateStockInput{
		ProductID: prodID, BranchID: branchA,
		Thresholds: entity.Thresholds{MinStockLevel: 10, MaxStockLevel: 5},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustStock_PorTipo(t *testing.T) {
	tests := []struct {
		name    string
		typ     entity.LedgerType
		qty     int64
		want    int64
		fromSet bool
	}{
		{name: "compra suma", typ: entity.LedgerPurchase, qty: 5, want: 15},
		{name: "devolución suma", typ: entity.LedgerReturn, qty: 2, want: 12},
		{name: "venta resta", typ: entity.LedgerSale, qty: 4, want: 6, fromSet: true},
		{name: "ajuste fija el valor absoluto", typ: entity.LedgerAdjustment, qty: 3, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t)
			e.seed(t, branchA, 10, 2)

			res, err := e.mutation.AdjustStock(context.Background(), adjust(tt.typ, branchA, tt.qty))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Record.CurrentStock)
			assert.Equal(t, tt.want, res.Record.AvailableStock)
			assert.Equal(t, int64(2), res.Record.Version)

			entry := res.Entry
			assert.Equal(t, tt.typ, entry.Type)
			assert.Equal(t, tt.qty, entry.Quantity)
			assert.True(t, decimal.NewFromInt(tt.qty).Mul(cost).Equal(entry.TotalCost))
			assert.Equal(t, int64(10), entry.PreviousStock)
			assert.Equal(t, tt.want, entry.NewStock)
			assert.Equal(t, "user-1", entry.CreatedBy)
			assert.Equal(t, domaininv.TypePrefix(tt.typ), entry.TransactionID[:3])
			if tt.fromSet {
				require.NotNil(t, entry.FromBranchID)
				assert.Nil(t, entry.ToBranchID)
			} else {
				require.NotNil(t, entry.ToBranchID)
				assert.Nil(t, entry.FromBranchID)
			}
			assert.Len(t, e.ledger(t), 1)
		})
	}
}

func TestAdjustStock_SobrescribeCostoUnitario(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 1, 0)
	in := adjust(entity.LedgerPurchase, branchA, 1)
	in.UnitCost = decimal.RequireFromString("3100.50")

	res, err := e.mutation.AdjustStock(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, in.UnitCost.Equal(res.Record.UnitCost))
	assert.True(t, in.UnitCost.Equal(e.record(t, branchA).UnitCost))
}

func TestAdjustStock_VentaInsuficienteNoModifica(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 5, 0)
	_, err := e.mutation.ReserveStock(context.Background(), reservation(branchA, 2))
	require.NoError(t, err)

	// Disponible 3: vender 4 falla aunque haya 5 físicas.
	_, err = e.mutation.AdjustStock(context.Background(), adjust(entity.LedgerSale, branchA, 4))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, domain.KindInsufficientStock, domain.Kind(err))

	rec := e.record(t, branchA)
	assert.Equal(t, int64(5), rec.CurrentStock)
	assert.Equal(t, int64(2), rec.Version, "solo la reserva escribió")
	assert.Empty(t, e.ledger(t))

	// Exactamente el disponible sí pasa.
	_, err = e.mutation.AdjustStock(context.Background(), adjust(entity.LedgerSale, branchA, 3))
	assert.NoError(t, err)
}

func TestAdjustStock_AjustePorDebajoDeLoReservado(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 10, 0)
	_, err := e.mutation.ReserveStock(context.Background(), reservation(branchA, 4))
	require.NoError(t, err)

	_, err = e.mutation.AdjustStock(context.Background(), adjust(entity.LedgerAdjustment, branchA, 3))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), e.record(t, branchA).CurrentStock)
}

func TestAdjustStock_Validaciones(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 10, 0)
	ctx := context.Background()

	_, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerSale, branchA, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad no positiva")

	_, err = e.mutation.AdjustStock(ctx, adjust(entity.LedgerTransfer, branchA, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "los traslados van por TransferStock")

	in := adjust(entity.LedgerPurchase, branchA, 1)
	in.UnitCost = decimal.NewFromInt(-1)
	_, err = e.mutation.AdjustStock(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.mutation.AdjustStock(ctx, adjust(entity.LedgerPurchase, branchB, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransferStock_CreaDestinoEHeredaUmbrales(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 10, 3)

	res, err := e.mutation.TransferStock(context.Background(), transfer(branchA, branchB, 4))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(6), res.Source.CurrentStock)
	assert.Equal(t, int64(4), res.Destination.CurrentStock)
	assert.Equal(t, int64(3), res.Destination.MinStockLevel)
	assert.Equal(t, int64(20), res.Destination.ReorderQuantity)
	assert.Equal(t, "COP", res.Destination.Currency)
	assert.Equal(t, int64(1), res.Destination.Version)

	entries := e.ledger(t)
	require.Len(t, entries, 1, "un traslado escribe un solo asiento")
	entry := entries[0]
	assert.Equal(t, entity.LedgerTransfer, entry.Type)
	assert.Equal(t, branchA, *entry.FromBranchID)
	assert.Equal(t, branchB, *entry.ToBranchID)
	assert.Equal(t, int64(10), entry.PreviousStock)
	assert.Equal(t, int64(6), entry.NewStock)
}

func TestTransferStock_DestinoExistenteConservaCosto(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 10, 0)
	dst := e.seed(t, branchB, 1, 0)

	in := transfer(branchA, branchB, 2)
	in.UnitCost = decimal.NewFromInt(9999)
	res, err := e.mutation.TransferStock(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, int64(3), res.Destination.CurrentStock)
	assert.True(t, dst.UnitCost.Equal(res.Destination.UnitCost))
}

func TestTransferStock_Rechazos(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 3, 0)
	ctx := context.Background()

	_, err := e.mutation.TransferStock(ctx, transfer(branchA, branchA, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.mutation.TransferStock(ctx, transfer(branchB, branchA, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.mutation.TransferStock(ctx, transfer(branchA, branchB, 4))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = e.query.GetStockRecord(ctx, entity.StockKey{ProductID: prodID, BranchID: branchB})
	assert.ErrorIs(t, err, domain.ErrNotFound, "un traslado rechazado no crea el destino")
	assert.Equal(t, int64(3), e.record(t, branchA).CurrentStock)
	assert.Empty(t, e.ledger(t))
}

func TestReserveRelease(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 10, 0)
	ctx := context.Background()

	rec, err := e.mutation.ReserveStock(ctx, reservation(branchA, 6))
	require.NoError(t, err)
	assert.Equal(t, int64(6), rec.ReservedStock)
	assert.Equal(t, int64(4), rec.AvailableStock)
	assert.Equal(t, int64(10), rec.CurrentStock)

	_, err = e.mutation.ReserveStock(ctx, reservation(branchA, 5))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = e.mutation.ReleaseReservedStock(ctx, reservation(branchA, 7))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "liberar más de lo reservado")

	rec, err = e.mutation.ReleaseReservedStock(ctx, reservation(branchA, 6))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.ReservedStock)
	assert.Equal(t, int64(10), rec.AvailableStock)

	_, err = e.mutation.ReserveStock(ctx, reservation(branchA, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, e.ledger(t), "las reservas no generan asientos")
}

func TestCommitReservedSale(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 10, 0)
	ctx := context.Background()
	_, err := e.mutation.ReserveStock(ctx, reservation(branchA, 3))
	require.NoError(t, err)

	_, err = e.mutation.CommitReservedSale(ctx, adjust(entity.LedgerSale, branchA, 4))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no puede confirmar más de lo apartado")

	in := adjust(entity.LedgerPurchase, branchA, 3) // el tipo se fuerza a venta
	orderID := "ord-77"
	in.OrderID = &orderID
	res, err := e.mutation.CommitReservedSale(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Record.CurrentStock)
	assert.Equal(t, int64(0), res.Record.ReservedStock)
	assert.Equal(t, int64(7), res.Record.AvailableStock)
	assert.Equal(t, entity.LedgerSale, res.Entry.Type)
	require.NotNil(t, res.Entry.OrderID)
	assert.Equal(t, orderID, *res.Entry.OrderID)
	assert.Len(t, e.ledger(t), 1)
}

func TestUpdateThresholds_RecalculaIndicadores(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 8, 2)
	ctx := context.Background()

	rec, err := e.mutation.UpdateThresholds(ctx, inventory.UpdateThresholdsInput{
		ProductID:  prodID,
		BranchID:   branchA,
		Thresholds: entity.Thresholds{MinStockLevel: 10, MaxStockLevel: 50, ReorderPoint: 12, ReorderQuantity: 30},
	})
	require.NoError(t, err)
	assert.True(t, rec.IsLowStock)
	assert.Equal(t, int64(30), rec.ReorderQuantity)
	assert.Empty(t, e.ledger(t))

	_, err = e.mutation.UpdateThresholds(ctx, inventory.UpdateThresholdsInput{
		ProductID: prodID, BranchID: branchA, Thresholds: entity.Thresholds{MinStockLevel: -1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteStockRecord(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 5, 0)
	ctx := context.Background()
	key := entity.StockKey{ProductID: prodID, BranchID: branchA}

	_, err := e.mutation.ReserveStock(ctx, reservation(branchA, 1))
	require.NoError(t, err)
	assert.ErrorIs(t, e.mutation.DeleteStockRecord(ctx, key), domain.ErrConflict, "con reservas no se borra")

	_, err = e.mutation.ReleaseReservedStock(ctx, reservation(branchA, 1))
	require.NoError(t, err)
	require.NoError(t, e.mutation.DeleteStockRecord(ctx, key))

	_, err = e.query.GetStockRecord(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.mutation.AdjustStock(ctx, adjust(entity.LedgerPurchase, branchA, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound, "un registro borrado no es destino de mutaciones")
	assert.ErrorIs(t, e.mutation.DeleteStockRecord(ctx, key), domain.ErrNotFound)
}

// Escenario de referencia: reserva, venta sin liberar la reserva y traslado a una sucursal nueva.
func TestEscenarioCheckoutYTraslado(t *testing.T) {
	e := newEngine(t)
	e.seed(t, branchA, 10, 0)
	ctx := context.Background()

	rec, err := e.mutation.ReserveStock(ctx, reservation(branchA, 3))
	require.NoError(t, err)
	assert.Equal(t, [3]int64{10, 3, 7}, [3]int64{rec.CurrentStock, rec.ReservedStock, rec.AvailableStock})

	res, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerSale, branchA, 3))
	require.NoError(t, err)
	rec = res.Record
	assert.Equal(t, [3]int64{7, 3, 4}, [3]int64{rec.CurrentStock, rec.ReservedStock, rec.AvailableStock},
		"la venta no libera la reserva")

	tr, err := e.mutation.TransferStock(ctx, transfer(branchA, branchB, 2))
	require.NoError(t, err)
	assert.True(t, tr.Created)
	assert.Equal(t, int64(2), tr.Destination.CurrentStock)
	assert.Equal(t, int64(5), tr.Source.CurrentStock)
	assert.Equal(t, int64(2), tr.Source.AvailableStock)

	for _, r := range e.store.Snapshot() {
		assert.True(t, domaininv.CheckInvariants(r), "invariantes de %s", r.Key())
	}
}

func TestLedger_CompletitudYConservacion(t *testing.T) {
	e := newEngine(t)
	initialA := e.seed(t, branchA, 20, 0).CurrentStock
	ctx := context.Background()

	ops := []func() error{
		func() error { _, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerPurchase, branchA, 5)); return err },
		func() error { _, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerSale, branchA, 7)); return err },
		func() error { _, err := e.mutation.TransferStock(ctx, transfer(branchA, branchB, 6)); return err },
		func() error { _, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerReturn, branchB, 1)); return err },
		func() error { _, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerAdjustment, branchA, 9)); return err },
		func() error { _, err := e.mutation.TransferStock(ctx, transfer(branchB, branchA, 3)); return err },
		func() error { _, err := e.mutation.AdjustStock(ctx, adjust(entity.LedgerSale, branchA, 50)); return err }, // rechazada
	}
	succeeded := 0
	for _, op := range ops {
		if op() == nil {
			succeeded++
		}
	}
	require.Equal(t, 6, succeeded)

	entries := e.ledger(t)
	assert.Len(t, entries, succeeded, "un asiento por operación exitosa")

	recA, recB := e.record(t, branchA), e.record(t, branchB)
	assert.Equal(t, recA.CurrentStock-initialA, domaininv.SumDeltas(entries, branchA))
	assert.Equal(t, recB.CurrentStock, domaininv.SumDeltas(entries, branchB), "B se creó con 0")

	seen := map[string]bool{}
	for _, en := range entries {
		assert.False(t, seen[en.TransactionID], "transaction_id repetido %s", en.TransactionID)
		seen[en.TransactionID] = true
	}
}
