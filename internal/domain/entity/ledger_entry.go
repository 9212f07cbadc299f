package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerType tipo de evento que afecta el stock.
type LedgerType string

// Tipos de asiento del kardex.
const (
	LedgerPurchase   LedgerType = "purchase"   // entrada por compra
	LedgerSale       LedgerType = "sale"       // salida por venta
	LedgerTransfer   LedgerType = "transfer"   // traslado entre sucursales
	LedgerAdjustment LedgerType = "adjustment" // conteo físico: fija el valor absoluto
	LedgerReturn     LedgerType = "return"     // devolución de cliente
)

// Valid indica si el tipo es uno de los conocidos.
func (t LedgerType) Valid() bool {
	switch t {
	case LedgerPurchase, LedgerSale, LedgerTransfer, LedgerAdjustment, LedgerReturn:
		return true
	}
	return false
}

// LedgerEntry asiento inmutable del kardex. Se escribe una sola vez por paso de mutación.
// FromBranchID va en ventas y traslados; ToBranchID en compras, devoluciones, ajustes y traslados.
// PreviousStock/NewStock son el saldo de la sucursal tocada (en traslados, la de origen).
type LedgerEntry struct {
	ID            string
	TransactionID string
	Type          LedgerType
	ProductID     string
	FromBranchID  *string
	ToBranchID    *string
	Quantity      int64
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal // Quantity * UnitCost al momento de escribir
	PreviousStock int64
	NewStock      int64
	Reference     string
	Notes         string
	OrderID       *string
	CreatedBy     string
	CreatedAt     time.Time
	IsDeleted     bool // solo corrección administrativa
}

// Touches indica si el asiento afecta a la sucursal dada (en cualquier lado).
func (e *LedgerEntry) Touches(branchID string) bool {
	return (e.FromBranchID != nil && *e.FromBranchID == branchID) ||
		(e.ToBranchID != nil && *e.ToBranchID == branchID)
}

// LedgerFilter filtros de consulta del kardex. Los campos vacíos no filtran.
type LedgerFilter struct {
	ProductID string
	BranchID  string // coincide con origen o destino
	Type      LedgerType
	Reference string
	From      *time.Time
	To        *time.Time
	Limit     int // <= 0 = sin límite (todos los asientos desde Offset)
	Offset    int
}

// LedgerPage página de asientos, del más reciente al más antiguo.
type LedgerPage struct {
	Entries []*LedgerEntry
	Total   int
	Limit   int
	Offset  int
}
