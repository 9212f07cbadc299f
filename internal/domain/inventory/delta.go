package inventory

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// SignedDelta devuelve la variación con signo que un asiento aplicó al stock de una sucursal.
// Compras y devoluciones suman, ventas restan, traslados restan en origen y suman en destino;
// un ajuste aporta NewStock - PreviousStock porque fija el valor absoluto.
func SignedDelta(e *entity.LedgerEntry, branchID string) int64 {
	if e == nil || e.IsDeleted {
		return 0
	}
	switch e.Type {
	case entity.LedgerPurchase, entity.LedgerReturn:
		if e.ToBranchID != nil && *e.ToBranchID == branchID {
			return e.Quantity
		}
	case entity.LedgerSale:
		if e.FromBranchID != nil && *e.FromBranchID == branchID {
			return -e.Quantity
		}
	case entity.LedgerAdjustment:
		if e.ToBranchID != nil && *e.ToBranchID == branchID {
			return e.NewStock - e.PreviousStock
		}
	case entity.LedgerTransfer:
		var d int64
		if e.FromBranchID != nil && *e.FromBranchID == branchID {
			d -= e.Quantity
		}
		if e.ToBranchID != nil && *e.ToBranchID == branchID {
			d += e.Quantity
		}
		return d
	}
	return 0
}

// SumDeltas suma las variaciones de una lista de asientos para una sucursal.
func SumDeltas(entries []*entity.LedgerEntry, branchID string) int64 {
	var total int64
	for _, e := range entries {
		total += SignedDelta(e, branchID)
	}
	return total
}

// ProductDelta variación neta de un asiento sobre el total del producto (todas las sucursales).
// Los traslados no cambian el total.
func ProductDelta(e *entity.LedgerEntry) int64 {
	if e == nil || e.IsDeleted {
		return 0
	}
	switch e.Type {
	case entity.LedgerPurchase, entity.LedgerReturn:
		return e.Quantity
	case entity.LedgerSale:
		return -e.Quantity
	case entity.LedgerAdjustment:
		return e.NewStock - e.PreviousStock
	}
	return 0
}
