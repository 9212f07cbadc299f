package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockRecordColumns = `
	id, product_id, branch_id, current_stock, reserved_stock, available_stock,
	min_stock_level, max_stock_level, reorder_point, reorder_quantity,
	unit_cost, currency, is_low_stock, is_out_of_stock,
	last_restocked_at, last_stock_check_at, is_deleted, version, created_at, updated_at`

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
type StockRecordRepo struct {
	q         Querier
	forUpdate bool // Get bloquea la fila (solo dentro de TxRunner)
}

// NewStockRecordRepository construye el adaptador de lectura/escritura. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

func newLockingStockRecordRepository(tx pgx.Tx) *StockRecordRepo {
	return &StockRecordRepo{q: tx, forUpdate: true}
}

// Get obtiene el registro vigente de un producto en una sucursal.
func (r *StockRecordRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + `
		FROM stock_records
		WHERE product_id = $1 AND branch_id = $2 AND NOT is_deleted`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	rec, err := scanStockRecord(r.q.QueryRow(ctx, query, key.ProductID, key.BranchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("stock %s: %w", key, domain.ErrNotFound)
		}
		return nil, wrapErr("get stock record", err)
	}
	return rec, nil
}

// Create inserta el registro con Version = 1. El índice único parcial sobre (product_id, branch_id)
// rechaza un segundo registro vigente.
func (r *StockRecordRepo) Create(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (` + stockRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 1, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.ProductID, rec.BranchID, rec.CurrentStock, rec.ReservedStock, rec.AvailableStock,
		rec.MinStockLevel, rec.MaxStockLevel, rec.ReorderPoint, rec.ReorderQuantity,
		rec.UnitCost, rec.Currency, rec.IsLowStock, rec.IsOutOfStock,
		rec.LastRestockedAt, rec.LastStockCheckAt, rec.IsDeleted, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("stock %s: %w", rec.Key(), domain.ErrConflict)
		}
		return wrapErr("create stock record", err)
	}
	rec.Version = 1
	return nil
}

// Save escribe el registro condicionado a su versión (compare-and-write).
func (r *StockRecordRepo) Save(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		UPDATE stock_records SET
			current_stock = $3, reserved_stock = $4, available_stock = $5,
			min_stock_level = $6, max_stock_level = $7, reorder_point = $8, reorder_quantity = $9,
			unit_cost = $10, currency = $11, is_low_stock = $12, is_out_of_stock = $13,
			last_restocked_at = $14, last_stock_check_at = $15, is_deleted = $16, updated_at = $17,
			version = version + 1
		WHERE id = $1 AND version = $2 AND NOT is_deleted`
	tag, err := r.q.Exec(ctx, query,
		rec.ID, rec.Version, rec.CurrentStock, rec.ReservedStock, rec.AvailableStock,
		rec.MinStockLevel, rec.MaxStockLevel, rec.ReorderPoint, rec.ReorderQuantity,
		rec.UnitCost, rec.Currency, rec.IsLowStock, rec.IsOutOfStock,
		rec.LastRestockedAt, rec.LastStockCheckAt, rec.IsDeleted, rec.UpdatedAt,
	)
	if err != nil {
		return wrapErr("save stock record", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock %s versión %d: %w", rec.Key(), rec.Version, domain.ErrConflict)
	}
	rec.Version++
	return nil
}

// List registros vigentes filtrados, de menor a mayor stock actual.
func (r *StockRecordRepo) List(ctx context.Context, filter repository.StockFilter) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + ` FROM stock_records WHERE NOT is_deleted`
	args := []any{}
	pos := 1
	if filter.BranchID != "" {
		query += fmt.Sprintf(" AND branch_id = $%d", pos)
		args = append(args, filter.BranchID)
		pos++
	}
	if filter.LowStockOnly {
		query += " AND is_low_stock"
	}
	query += " ORDER BY current_stock ASC, product_id ASC, branch_id ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, filter.Limit)
		pos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, filter.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list stock records", err)
	}
	defer rows.Close()
	out := make([]*entity.StockRecord, 0)
	for rows.Next() {
		rec, err := scanStockRecord(rows)
		if err != nil {
			return nil, wrapErr("scan stock record", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list stock records", err)
	}
	return out, nil
}

// Stats agregados de los registros vigentes (branchID vacío = todas las sucursales).
func (r *StockRecordRepo) Stats(ctx context.Context, branchID string) (repository.StockStats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_low_stock),
			COUNT(*) FILTER (WHERE is_out_of_stock),
			COALESCE(SUM(current_stock * unit_cost), 0)
		FROM stock_records
		WHERE NOT is_deleted AND ($1 = '' OR branch_id = $1)`
	var st repository.StockStats
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, query, branchID).Scan(&st.TotalRecords, &st.LowStockCount, &st.OutOfStockCount, &total)
	if err != nil {
		return repository.StockStats{}, wrapErr("stock stats", err)
	}
	st.TotalValue = total
	return st, nil
}

func scanStockRecord(row pgx.Row) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.BranchID, &rec.CurrentStock, &rec.ReservedStock, &rec.AvailableStock,
		&rec.MinStockLevel, &rec.MaxStockLevel, &rec.ReorderPoint, &rec.ReorderQuantity,
		&rec.UnitCost, &rec.Currency, &rec.IsLowStock, &rec.IsOutOfStock,
		&rec.LastRestockedAt, &rec.LastStockCheckAt, &rec.IsDeleted, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
