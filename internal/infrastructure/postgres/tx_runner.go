package postgres

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, toma un advisory lock de transacción por cada clave (en el orden de
// StockKey.Less), ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// El advisory lock serializa también claves cuyo registro todavía no existe (destino de un traslado).
func (r *TxRunner) Run(ctx context.Context, keys []entity.StockKey, fn func(
	stockRepo repository.StockRecordRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, k := range sortedKeys(keys) {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, k.String()); err != nil {
			return wrapErr("lock stock key", err)
		}
	}

	stockRepo := newLockingStockRecordRepository(tx)
	ledgerRepo := NewLedgerRepository(tx)

	if err := fn(stockRepo, ledgerRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

func sortedKeys(keys []entity.StockKey) []entity.StockKey {
	out := append([]entity.StockKey(nil), keys...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	n := 0
	for i, k := range out {
		if i > 0 && k == out[n-1] {
			continue
		}
		out[n] = k
		n++
	}
	return out[:n]
}
