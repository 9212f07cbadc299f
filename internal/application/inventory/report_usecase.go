package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// MovementReport datos del kardex listos para renderizar.
type MovementReport struct {
	ProductID   string
	BranchID    string              // vacío = todas las sucursales
	Record      *entity.StockRecord // nil si no se filtró por sucursal o el registro no existe
	Since       time.Time
	GeneratedAt time.Time
	Lines       []MovementReportLine // del más antiguo al más reciente
	NetDelta    int64
}

// MovementReportLine asiento con su variación firmada y el saldo acumulado del periodo.
type MovementReportLine struct {
	Entry   *entity.LedgerEntry
	Delta   int64
	Running int64
}

// MovementReportUseCase genera el PDF del kardex de un producto.
type MovementReportUseCase struct {
	query     *StockQueryUseCase
	generator MovementReportGenerator
}

// NewMovementReportUseCase construye el caso de uso.
func NewMovementReportUseCase(query *StockQueryUseCase, generator MovementReportGenerator) *MovementReportUseCase {
	return &MovementReportUseCase{query: query, generator: generator}
}

// BuildReport arma el kardex del periodo sin renderizarlo.
func (uc *MovementReportUseCase) BuildReport(ctx context.Context, productID, branchID string, sinceDays int) (*MovementReport, error) {
	entries, err := uc.query.MovementHistory(ctx, productID, branchID, sinceDays)
	if err != nil {
		return nil, err
	}
	if sinceDays == 0 {
		sinceDays = defaultHistoryDays
	}
	now := uc.query.now()
	report := &MovementReport{
		ProductID:   productID,
		BranchID:    branchID,
		Since:       now.AddDate(0, 0, -sinceDays),
		GeneratedAt: now,
		Lines:       make([]MovementReportLine, 0, len(entries)),
	}
	if branchID != "" {
		rec, err := uc.query.GetStockRecord(ctx, entity.StockKey{ProductID: productID, BranchID: branchID})
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		report.Record = rec
	}

	// El historial viene del más reciente al más antiguo; el kardex se lee en orden cronológico.
	var running int64
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		delta := inventory.ProductDelta(e)
		if branchID != "" {
			delta = inventory.SignedDelta(e, branchID)
		}
		running += delta
		report.Lines = append(report.Lines, MovementReportLine{Entry: e, Delta: delta, Running: running})
	}
	report.NetDelta = running
	return report, nil
}

// GeneratePDF arma el kardex y devuelve los bytes del PDF.
func (uc *MovementReportUseCase) GeneratePDF(ctx context.Context, productID, branchID string, sinceDays int) ([]byte, error) {
	report, err := uc.BuildReport(ctx, productID, branchID, sinceDays)
	if err != nil {
		return nil, err
	}
	doc, err := uc.generator.GenerateMovementReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("%w: generar kardex: %w", domain.ErrInternal, err)
	}
	return doc, nil
}
