package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica un registro de stock: un producto en una sucursal.
type StockKey struct {
	ProductID string
	BranchID  string
}

// Less define el orden global de adquisición de locks (producto, luego sucursal).
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.BranchID < o.BranchID
}

// String representación "producto/sucursal", usada como clave de lock y en logs.
func (k StockKey) String() string {
	return k.ProductID + "/" + k.BranchID
}

// StockRecord representa el stock de un producto en una sucursal.
// AvailableStock, IsLowStock e IsOutOfStock son derivados: solo los escribe inventory.Recompute.
type StockRecord struct {
	ID               string
	ProductID        string
	BranchID         string
	CurrentStock     int64 // cantidad física disponible en la sucursal
	ReservedStock    int64 // apartado para pedidos sin confirmar
	AvailableStock   int64 // CurrentStock - ReservedStock
	MinStockLevel    int64
	MaxStockLevel    int64
	ReorderPoint     int64
	ReorderQuantity  int64
	UnitCost         decimal.Decimal
	Currency         string
	IsLowStock       bool
	IsOutOfStock     bool
	LastRestockedAt  *time.Time
	LastStockCheckAt time.Time
	IsDeleted        bool
	Version          int64 // versión optimista; Save compara contra el valor leído
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Key devuelve la clave natural del registro.
func (r *StockRecord) Key() StockKey {
	return StockKey{ProductID: r.ProductID, BranchID: r.BranchID}
}

// Value valorización del registro (CurrentStock * UnitCost).
func (r *StockRecord) Value() decimal.Decimal {
	return decimal.NewFromInt(r.CurrentStock).Mul(r.UnitCost)
}

// Thresholds umbrales configurados por el operador para un registro.
type Thresholds struct {
	MinStockLevel   int64
	MaxStockLevel   int64
	ReorderPoint    int64
	ReorderQuantity int64
}

// Thresholds devuelve los umbrales actuales del registro.
func (r *StockRecord) Thresholds() Thresholds {
	return Thresholds{
		MinStockLevel:   r.MinStockLevel,
		MaxStockLevel:   r.MaxStockLevel,
		ReorderPoint:    r.ReorderPoint,
		ReorderQuantity: r.ReorderQuantity,
	}
}

// ApplyThresholds copia los umbrales al registro.
func (r *StockRecord) ApplyThresholds(t Thresholds) {
	r.MinStockLevel = t.MinStockLevel
	r.MaxStockLevel = t.MaxStockLevel
	r.ReorderPoint = t.ReorderPoint
	r.ReorderQuantity = t.ReorderQuantity
}
