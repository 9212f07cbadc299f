package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

var fixedNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

func TestRecompute_CalculaDisponible(t *testing.T) {
	r := inventory.Recompute(entity.StockRecord{CurrentStock: 10, ReservedStock: 3, MinStockLevel: 2}, fixedNow)

	assert.Equal(t, int64(7), r.AvailableStock)
	assert.False(t, r.IsLowStock)
	assert.False(t, r.IsOutOfStock)
	assert.Equal(t, fixedNow, r.LastStockCheckAt)
	assert.True(t, inventory.CheckInvariants(r))
}

func TestRecompute_StockBajoEnElMinimo(t *testing.T) {
	r := inventory.Recompute(entity.StockRecord{CurrentStock: 5, MinStockLevel: 5}, fixedNow)

	assert.True(t, r.IsLowStock, "current <= min debe marcar stock bajo")
	assert.False(t, r.IsOutOfStock)
}

func TestRecompute_AgotadoEnCero(t *testing.T) {
	r := inventory.Recompute(entity.StockRecord{CurrentStock: 0}, fixedNow)

	assert.True(t, r.IsOutOfStock)
	assert.True(t, r.IsLowStock, "con min 0, stock 0 también es bajo")
	assert.Equal(t, int64(0), r.AvailableStock)
}

func TestRecompute_PisoEnCero(t *testing.T) {
	r := inventory.Recompute(entity.StockRecord{CurrentStock: -4, ReservedStock: -1}, fixedNow)

	assert.Equal(t, int64(0), r.CurrentStock)
	assert.Equal(t, int64(0), r.ReservedStock)
	assert.True(t, inventory.CheckInvariants(r))
}

func TestRecompute_NoModificaElOriginal(t *testing.T) {
	orig := entity.StockRecord{CurrentStock: 8, ReservedStock: 2}
	_ = inventory.Recompute(orig, fixedNow)

	assert.Equal(t, int64(0), orig.AvailableStock, "Recompute trabaja sobre una copia")
}

func TestCheckInvariants_DetectaDerivadosDesactualizados(t *testing.T) {
	r := inventory.Recompute(entity.StockRecord{CurrentStock: 10, ReservedStock: 3}, fixedNow)
	r.CurrentStock = 4

	assert.False(t, inventory.CheckInvariants(r))
}
