package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función como unidad atómica sobre los registros de stock indicados.
// Antes de invocar fn serializa por clave (producto, sucursal), adquiriendo todas las claves
// en el orden global de entity.StockKey.Less para evitar interbloqueos entre traslados opuestos.
// Si fn devuelve error no se persiste ninguna escritura; si no, se persisten todas.
type TxRunner interface {
	Run(ctx context.Context, keys []entity.StockKey, fn func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// MovementReportGenerator genera la representación PDF del kardex de un producto.
type MovementReportGenerator interface {
	GenerateMovementReport(ctx context.Context, report *MovementReport) ([]byte, error)
}
