package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks como unidad atómica sobre el Store en memoria.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run toma los locks de las claves en orden (StockKey.Less), ejecuta fn con repos atados a una
// unidad de trabajo y confirma sus escrituras. Si fn falla no se aplica nada.
func (r *TxRunner) Run(ctx context.Context, keys []entity.StockKey, fn func(
	stockRepo repository.StockRecordRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	release, err := r.s.locks.acquire(ctx, lockOrder(keys))
	if err != nil {
		return err
	}
	defer release()

	u := newUnitOfWork(r.s)
	if err := fn(&uowStockRepo{u: u}, &uowLedgerRepo{u: u}); err != nil {
		return err
	}
	return u.commit()
}

// lockOrder ordena y deduplica las claves según StockKey.Less.
func lockOrder(keys []entity.StockKey) []string {
	sorted := append([]entity.StockKey(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	out := make([]string, 0, len(sorted))
	for i, k := range sorted {
		if i > 0 && k == sorted[i-1] {
			continue
		}
		out = append(out, k.String())
	}
	return out
}
