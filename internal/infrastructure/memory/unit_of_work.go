package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// stagedRecord escritura pendiente sobre una clave. base es la versión vigente al primer Save
// (se revalida al confirmar); created indica que la clave no tenía registro vigente.
type stagedRecord struct {
	rec     entity.StockRecord
	base    int64
	created bool
}

// unitOfWork acumula escrituras de registros y asientos; nada llega al Store hasta commit.
type unitOfWork struct {
	s       *Store
	records map[entity.StockKey]*stagedRecord
	entries []*entity.LedgerEntry
}

var (
	_ repository.StockRecordRepository = (*uowStockRepo)(nil)
	_ repository.LedgerRepository      = (*uowLedgerRepo)(nil)
)

func newUnitOfWork(s *Store) *unitOfWork {
	return &unitOfWork{s: s, records: make(map[entity.StockKey]*stagedRecord)}
}

// view devuelve el registro vigente para la clave visto desde esta unidad de trabajo, o nil.
func (u *unitOfWork) view(key entity.StockKey) *entity.StockRecord {
	if st, ok := u.records[key]; ok {
		if st.rec.IsDeleted {
			return nil
		}
		cp := st.rec
		return &cp
	}
	return u.s.get(key)
}

func (u *unitOfWork) get(key entity.StockKey) (*entity.StockRecord, error) {
	r := u.view(key)
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (u *unitOfWork) create(rec *entity.StockRecord) error {
	key := rec.Key()
	if _, staged := u.records[key]; staged || u.s.get(key) != nil {
		return fmt.Errorf("%w: ya existe un registro para %s", domain.ErrConflict, key)
	}
	rec.Version = 1
	u.records[key] = &stagedRecord{rec: *rec, created: true}
	return nil
}

func (u *unitOfWork) save(rec *entity.StockRecord) error {
	key := rec.Key()
	cur := u.view(key)
	if cur == nil || cur.ID != rec.ID || cur.Version != rec.Version {
		return fmt.Errorf("%w: el registro %s cambió desde su lectura", domain.ErrConflict, key)
	}
	st, ok := u.records[key]
	if !ok {
		st = &stagedRecord{base: rec.Version}
		u.records[key] = st
	}
	rec.Version++
	st.rec = *rec
	return nil
}

func (u *unitOfWork) append(e *entity.LedgerEntry) error {
	if e.TransactionID == "" {
		return fmt.Errorf("%w: asiento sin transaction_id", domain.ErrInvalidInput)
	}
	if u.s.hasTransactionID(e.TransactionID) {
		return fmt.Errorf("%w: transaction_id %s duplicado", domain.ErrConflict, e.TransactionID)
	}
	for _, p := range u.entries {
		if p.TransactionID == e.TransactionID {
			return fmt.Errorf("%w: transaction_id %s duplicado", domain.ErrConflict, e.TransactionID)
		}
	}
	cp := *e
	u.entries = append(u.entries, &cp)
	return nil
}

// commit revalida y aplica todas las escrituras bajo el lock del Store, o ninguna.
func (u *unitOfWork) commit() error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, st := range u.records {
		cur, exists := s.live[key]
		if st.created {
			if exists {
				return fmt.Errorf("%w: ya existe un registro para %s", domain.ErrConflict, key)
			}
			continue
		}
		if !exists || cur.ID != st.rec.ID || cur.Version != st.base {
			return fmt.Errorf("%w: el registro %s cambió desde su lectura", domain.ErrConflict, key)
		}
	}
	for _, e := range u.entries {
		if _, dup := s.txIDs[e.TransactionID]; dup {
			return fmt.Errorf("%w: transaction_id %s duplicado", domain.ErrConflict, e.TransactionID)
		}
	}

	for key, st := range u.records {
		rec := st.rec
		if rec.IsDeleted {
			delete(s.live, key)
			s.archived = append(s.archived, rec)
			continue
		}
		s.live[key] = &rec
	}
	for _, e := range u.entries {
		s.ledger = append(s.ledger, e)
		s.txIDs[e.TransactionID] = struct{}{}
	}
	return nil
}

// uowStockRepo vista de registros atada a una unidad de trabajo.
type uowStockRepo struct{ u *unitOfWork }

func (r *uowStockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	return r.u.get(key)
}

func (r *uowStockRepo) Create(ctx context.Context, record *entity.StockRecord) error {
	return r.u.create(record)
}

func (r *uowStockRepo) Save(ctx context.Context, record *entity.StockRecord) error {
	return r.u.save(record)
}

// List y Stats leen el estado confirmado.
func (r *uowStockRepo) List(ctx context.Context, filter repository.StockFilter) ([]*entity.StockRecord, error) {
	return r.u.s.list(filter), nil
}

func (r *uowStockRepo) Stats(ctx context.Context, branchID string) (repository.StockStats, error) {
	return r.u.s.stats(branchID), nil
}

// uowLedgerRepo vista del kardex atada a una unidad de trabajo.
type uowLedgerRepo struct{ u *unitOfWork }

func (r *uowLedgerRepo) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	return r.u.append(entry)
}

func (r *uowLedgerRepo) Query(ctx context.Context, filter entity.LedgerFilter) (entity.LedgerPage, error) {
	return r.u.s.query(filter), nil
}
