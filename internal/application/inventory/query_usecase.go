package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	defaultLedgerLimit = 20
	maxLedgerLimit     = 100
	maxLowStockLimit   = 500
	defaultHistoryDays = 30
)

// QueryConfig parámetros de las consultas.
type QueryConfig struct {
	LowStockLimit int              // límite por defecto del listado de stock bajo
	Now           func() time.Time // nil = time.Now
}

// StockQueryUseCase lecturas y agregados sobre registros y kardex. No toma locks:
// puede observar una mutación en curso de otra operación.
type StockQueryUseCase struct {
	stockRepo     repository.StockRecordRepository
	ledgerRepo    repository.LedgerRepository
	lowStockLimit int
	now           func() time.Time
}

// NewStockQueryUseCase construye el caso de uso de consultas.
func NewStockQueryUseCase(
	stockRepo repository.StockRecordRepository,
	ledgerRepo repository.LedgerRepository,
	cfg QueryConfig,
) *StockQueryUseCase {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	limit := cfg.LowStockLimit
	if limit <= 0 {
		limit = 50
	}
	return &StockQueryUseCase{
		stockRepo:     stockRepo,
		ledgerRepo:    ledgerRepo,
		lowStockLimit: limit,
		now:           now,
	}
}

// LowStockItem registro en stock bajo con la cantidad sugerida de pedido.
type LowStockItem struct {
	Record            *entity.StockRecord
	SuggestedOrderQty int64
}

// GetStockRecord devuelve el registro vigente de un par (producto, sucursal).
func (uc *StockQueryUseCase) GetStockRecord(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	if key.ProductID == "" || key.BranchID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.stockRepo.Get(ctx, key)
}

// LowStockItems devuelve los registros con IsLowStock, de menor a mayor CurrentStock.
// branchID vacío considera todas las sucursales.
func (uc *StockQueryUseCase) LowStockItems(ctx context.Context, branchID string, limit int) ([]LowStockItem, error) {
	if limit <= 0 {
		limit = uc.lowStockLimit
	}
	if limit > maxLowStockLimit {
		limit = maxLowStockLimit
	}
	records, err := uc.stockRepo.List(ctx, repository.StockFilter{
		BranchID:     branchID,
		LowStockOnly: true,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]LowStockItem, 0, len(records))
	for _, r := range records {
		items = append(items, LowStockItem{Record: r, SuggestedOrderQty: SuggestedOrderQty(r)})
	}
	return items, nil
}

// SuggestedOrderQty cantidad sugerida de reposición: ReorderQuantity si está configurada;
// si no, lo que falta para llegar al máximo (o al mínimo cuando no hay máximo).
func SuggestedOrderQty(r *entity.StockRecord) int64 {
	if r.ReorderQuantity > 0 {
		return r.ReorderQuantity
	}
	target := r.MaxStockLevel
	if target <= 0 {
		target = r.MinStockLevel
	}
	if q := target - r.CurrentStock; q > 0 {
		return q
	}
	return 0
}

// Stats devuelve totales de registros, alertas y valorización (Σ CurrentStock × UnitCost).
func (uc *StockQueryUseCase) Stats(ctx context.Context, branchID string) (repository.StockStats, error) {
	return uc.stockRepo.Stats(ctx, branchID)
}

// QueryLedger consulta paginada del kardex, del más reciente al más antiguo.
func (uc *StockQueryUseCase) QueryLedger(ctx context.Context, filter entity.LedgerFilter) (entity.LedgerPage, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return entity.LedgerPage{}, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLedgerLimit
	}
	if filter.Limit > maxLedgerLimit {
		filter.Limit = maxLedgerLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.ledgerRepo.Query(ctx, filter)
}

// MovementHistory devuelve los asientos de un producto (y sucursal, en cualquier lado) de los
// últimos sinceDays días, del más reciente al más antiguo. La ventana se fija en [now-sinceDays, now]
// y se lee de una sola vez: los asientos anexados durante la lectura no desplazan ni duplican resultados.
func (uc *StockQueryUseCase) MovementHistory(ctx context.Context, productID, branchID string, sinceDays int) ([]*entity.LedgerEntry, error) {
	if productID == "" || sinceDays < 0 {
		return nil, domain.ErrInvalidInput
	}
	if sinceDays == 0 {
		sinceDays = defaultHistoryDays
	}
	now := uc.now()
	since := now.AddDate(0, 0, -sinceDays)
	page, err := uc.ledgerRepo.Query(ctx, entity.LedgerFilter{
		ProductID: productID,
		BranchID:  branchID,
		From:      &since,
		To:        &now,
	})
	if err != nil {
		return nil, err
	}
	return page.Entries, nil
}
