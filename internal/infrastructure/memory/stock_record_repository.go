package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre el Store. Cada escritura
// es su propia unidad de trabajo; para escrituras compuestas usar TxRunner.
type StockRecordRepo struct {
	s *Store
}

// Get obtiene el registro vigente de la clave.
func (r *StockRecordRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	return newUnitOfWork(r.s).get(key)
}

// Create inserta un registro nuevo con Version = 1.
func (r *StockRecordRepo) Create(ctx context.Context, record *entity.StockRecord) error {
	u := newUnitOfWork(r.s)
	if err := u.create(record); err != nil {
		return err
	}
	return u.commit()
}

// Save escribe el registro si su versión no cambió.
func (r *StockRecordRepo) Save(ctx context.Context, record *entity.StockRecord) error {
	u := newUnitOfWork(r.s)
	prev := record.Version
	if err := u.save(record); err != nil {
		return err
	}
	if err := u.commit(); err != nil {
		record.Version = prev
		return err
	}
	return nil
}

// List registros vigentes filtrados, de menor a mayor CurrentStock.
func (r *StockRecordRepo) List(ctx context.Context, filter repository.StockFilter) ([]*entity.StockRecord, error) {
	return r.s.list(filter), nil
}

// Stats agregados de los registros vigentes (branchID vacío = todas las sucursales).
func (r *StockRecordRepo) Stats(ctx context.Context, branchID string) (repository.StockStats, error) {
	return r.s.stats(branchID), nil
}

func (s *Store) list(filter repository.StockFilter) []*entity.StockRecord {
	s.mu.RLock()
	out := make([]*entity.StockRecord, 0)
	for _, rec := range s.live {
		if filter.BranchID != "" && rec.BranchID != filter.BranchID {
			continue
		}
		if filter.LowStockOnly && !rec.IsLowStock {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentStock != out[j].CurrentStock {
			return out[i].CurrentStock < out[j].CurrentStock
		}
		return out[i].Key().Less(out[j].Key())
	})
	return paginate(out, filter.Offset, filter.Limit)
}

func (s *Store) stats(branchID string) repository.StockStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := repository.StockStats{TotalValue: decimal.Zero}
	for _, rec := range s.live {
		if branchID != "" && rec.BranchID != branchID {
			continue
		}
		st.TotalRecords++
		if rec.IsLowStock {
			st.LowStockCount++
		}
		if rec.IsOutOfStock {
			st.OutOfStockCount++
		}
		st.TotalValue = st.TotalValue.Add(rec.Value())
	}
	return st
}

// paginate aplica offset y limit (limit <= 0 = sin límite).
func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
