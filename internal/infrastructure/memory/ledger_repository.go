package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación de LedgerRepository sobre el Store.
type LedgerRepo struct {
	s *Store
}

// Append anexa un asiento fuera de una unidad de trabajo.
func (r *LedgerRepo) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	u := newUnitOfWork(r.s)
	if err := u.append(entry); err != nil {
		return err
	}
	return u.commit()
}

// Query consulta paginada, del asiento más reciente al más antiguo.
func (r *LedgerRepo) Query(ctx context.Context, filter entity.LedgerFilter) (entity.LedgerPage, error) {
	return r.s.query(filter), nil
}

// query ordena por CreatedAt descendente; a igual CreatedAt, el último anexado va primero.
func (s *Store) query(f entity.LedgerFilter) entity.LedgerPage {
	s.mu.RLock()
	matched := make([]*entity.LedgerEntry, 0)
	for i := len(s.ledger) - 1; i >= 0; i-- {
		e := s.ledger[i]
		if !matchesLedger(e, f) {
			continue
		}
		cp := *e
		matched = append(matched, &cp)
	}
	s.mu.RUnlock()
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	return entity.LedgerPage{
		Entries: paginate(matched, f.Offset, f.Limit),
		Total:   len(matched),
		Limit:   f.Limit,
		Offset:  f.Offset,
	}
}

func matchesLedger(e *entity.LedgerEntry, f entity.LedgerFilter) bool {
	switch {
	case e.IsDeleted:
		return false
	case f.ProductID != "" && e.ProductID != f.ProductID:
		return false
	case f.BranchID != "" && !e.Touches(f.BranchID):
		return false
	case f.Type != "" && e.Type != f.Type:
		return false
	case f.Reference != "" && e.Reference != f.Reference:
		return false
	case f.From != nil && e.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && e.CreatedAt.After(*f.To):
		return false
	}
	return true
}
