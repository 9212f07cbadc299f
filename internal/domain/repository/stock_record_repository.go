package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockFilter filtros de lectura de registros de stock (sin bloqueo).
type StockFilter struct {
	BranchID     string // vacío = todas las sucursales
	LowStockOnly bool
	Limit        int
	Offset       int
}

// StockStats agregados de valorización y alertas.
type StockStats struct {
	TotalRecords    int
	LowStockCount   int
	OutOfStockCount int
	TotalValue      decimal.Decimal // Σ CurrentStock * UnitCost
}

// StockRecordRepository define el puerto de persistencia para registros de stock (producto, sucursal).
// Los registros borrados lógicamente no se devuelven ni se pueden modificar.
type StockRecordRepository interface {
	// Get devuelve domain.ErrNotFound si no existe un registro vigente para la clave.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error)
	// Create devuelve domain.ErrConflict si ya existe un registro vigente para la clave.
	Create(ctx context.Context, record *entity.StockRecord) error
	// Save escribe condicionado a record.Version; si la versión almacenada cambió devuelve domain.ErrConflict.
	// En éxito incrementa record.Version.
	Save(ctx context.Context, record *entity.StockRecord) error

	List(ctx context.Context, filter StockFilter) ([]*entity.StockRecord, error)
	Stats(ctx context.Context, branchID string) (StockStats, error)
}
