package inventory

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Recompute recalcula los campos derivados de un registro a partir de CurrentStock y ReservedStock
// (servicio de dominio puro). Es el único punto donde se escriben AvailableStock, IsLowStock e IsOutOfStock;
// el motor de mutaciones lo invoca justo antes de cada persistencia.
//
//	AvailableStock = CurrentStock - ReservedStock
//	IsLowStock     = CurrentStock <= MinStockLevel
//	IsOutOfStock   = CurrentStock <= 0
func Recompute(r entity.StockRecord, now time.Time) entity.StockRecord {
	if r.CurrentStock < 0 {
		r.CurrentStock = 0
	}
	if r.ReservedStock < 0 {
		r.ReservedStock = 0
	}
	r.AvailableStock = r.CurrentStock - r.ReservedStock
	r.IsLowStock = r.CurrentStock <= r.MinStockLevel
	r.IsOutOfStock = r.CurrentStock <= 0
	r.LastStockCheckAt = now
	return r
}

// CheckInvariants verifica los invariantes de un registro persistido.
// Devuelve false si el disponible no cuadra o alguna cantidad es negativa.
func CheckInvariants(r entity.StockRecord) bool {
	if r.CurrentStock < 0 || r.ReservedStock < 0 {
		return false
	}
	if r.AvailableStock != r.CurrentStock-r.ReservedStock {
		return false
	}
	return r.IsLowStock == (r.CurrentStock <= r.MinStockLevel) && r.IsOutOfStock == (r.CurrentStock <= 0)
}
