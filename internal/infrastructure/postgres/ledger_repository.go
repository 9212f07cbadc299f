package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `
	id, transaction_id, type, product_id, from_branch_id, to_branch_id,
	quantity, unit_cost, total_cost, previous_stock, new_stock,
	reference, notes, order_id, created_by, created_at, is_deleted`

// LedgerRepo implementación del kardex sobre PostgreSQL (usable con pool o tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta un asiento. transaction_id es UNIQUE: un duplicado es ErrConflict.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.TransactionID, string(e.Type), e.ProductID, e.FromBranchID, e.ToBranchID,
		e.Quantity, e.UnitCost, e.TotalCost, e.PreviousStock, e.NewStock,
		nullIfEmpty(e.Reference), nullIfEmpty(e.Notes), e.OrderID, nullIfEmpty(e.CreatedBy), e.CreatedAt, e.IsDeleted,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("asiento %s: %w", e.TransactionID, domain.ErrConflict)
		}
		return wrapErr("append ledger entry", err)
	}
	return nil
}

// Query consulta paginada, del asiento más reciente al más antiguo.
func (r *LedgerRepo) Query(ctx context.Context, f entity.LedgerFilter) (entity.LedgerPage, error) {
	where := []string{"NOT is_deleted"}
	args := []any{}
	pos := 1
	add := func(cond string, v any) {
		where = append(where, fmt.Sprintf(cond, pos))
		args = append(args, v)
		pos++
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.BranchID != "" {
		where = append(where, fmt.Sprintf("(from_branch_id = $%d OR to_branch_id = $%d)", pos, pos))
		args = append(args, f.BranchID)
		pos++
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.Reference != "" {
		add("reference = $%d", f.Reference)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	cond := strings.Join(where, " AND ")

	query := fmt.Sprintf(`SELECT %s FROM ledger_entries WHERE %s
		ORDER BY created_at DESC, seq DESC`, ledgerColumns, cond)
	queryArgs := args
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		queryArgs = append(append([]any{}, args...), f.Limit, max(f.Offset, 0))
	} else if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		queryArgs = append(append([]any{}, args...), f.Offset)
	}
	rows, err := r.q.Query(ctx, query, queryArgs...)
	if err != nil {
		return entity.LedgerPage{}, wrapErr("query ledger entries", err)
	}
	defer rows.Close()

	entries := make([]*entity.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return entity.LedgerPage{}, wrapErr("scan ledger entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return entity.LedgerPage{}, wrapErr("query ledger entries", err)
	}

	// Sin límite ni desplazamiento la página ya es el conjunto completo.
	total := len(entries)
	if f.Limit > 0 || f.Offset > 0 {
		if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE `+cond, args...).Scan(&total); err != nil {
			return entity.LedgerPage{}, wrapErr("count ledger entries", err)
		}
	}
	return entity.LedgerPage{Entries: entries, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var typ string
	var reference, notes, createdBy *string
	err := row.Scan(
		&e.ID, &e.TransactionID, &typ, &e.ProductID, &e.FromBranchID, &e.ToBranchID,
		&e.Quantity, &e.UnitCost, &e.TotalCost, &e.PreviousStock, &e.NewStock,
		&reference, &notes, &e.OrderID, &createdBy, &e.CreatedAt, &e.IsDeleted,
	)
	if err != nil {
		return nil, err
	}
	e.Type = entity.LedgerType(typ)
	if reference != nil {
		e.Reference = *reference
	}
	if notes != nil {
		e.Notes = *notes
	}
	if createdBy != nil {
		e.CreatedBy = *createdBy
	}
	return &e, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
