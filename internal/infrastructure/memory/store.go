// Package memory implementa el almacén de stock y el kardex en memoria del proceso.
// Sirve como backend de un solo nodo y como backend de pruebas; mantiene las mismas
// garantías de atomicidad y versionado que el adaptador PostgreSQL.
package memory

import (
	"sort"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Store estado compartido: registros vigentes por clave, registros borrados y asientos del kardex.
type Store struct {
	mu       sync.RWMutex
	live     map[entity.StockKey]*entity.StockRecord
	archived []entity.StockRecord
	ledger   []*entity.LedgerEntry
	txIDs    map[string]struct{}
	locks    *keyLocks
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		live:  make(map[entity.StockKey]*entity.StockRecord),
		txIDs: make(map[string]struct{}),
		locks: newKeyLocks(),
	}
}

// StockRecords repositorio de registros sin unidad de trabajo (cada escritura se confirma sola).
func (s *Store) StockRecords() *StockRecordRepo {
	return &StockRecordRepo{s: s}
}

// Ledger repositorio del kardex sin unidad de trabajo.
func (s *Store) Ledger() *LedgerRepo {
	return &LedgerRepo{s: s}
}

// Snapshot copia de todos los registros vigentes, ordenados por clave.
func (s *Store) Snapshot() []entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.StockRecord, 0, len(s.live))
	for _, r := range s.live {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

// get copia del registro vigente para la clave, o nil.
func (s *Store) get(key entity.StockKey) *entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.live[key]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

func (s *Store) hasTransactionID(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.txIDs[id]
	return ok
}
