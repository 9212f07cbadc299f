// Package cache guarda claves de idempotencia de peticiones mutantes.
// Nunca guarda cantidades de stock: los saldos se leen siempre del almacén.
package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryIdempotencyStore claves de idempotencia en memoria del proceso, con expiración.
// Sirve para un solo nodo y para pruebas.
type MemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]time.Time // clave -> vencimiento
	now       func() time.Time
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryIdempotencyStore crea el almacén y arranca la limpieza periódica de claves vencidas.
func NewMemoryIdempotencyStore(cleanupEvery time.Duration) *MemoryIdempotencyStore {
	s := &MemoryIdempotencyStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupEvery > 0 {
		s.wg.Add(1)
		go s.cleanupLoop(cleanupEvery)
	}
	return s
}

// WithClock reemplaza el reloj (pruebas).
func (s *MemoryIdempotencyStore) WithClock(now func() time.Time) *MemoryIdempotencyStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Claim reserva la clave por ttl. Devuelve false si ya estaba reservada y sin vencer.
func (s *MemoryIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if exp, ok := s.entries[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

// Release libera la clave para que la petición pueda reintentarse.
func (s *MemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len cantidad de claves guardadas (vencidas incluidas hasta la próxima limpieza).
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close detiene la limpieza. Se puede llamar varias veces.
func (s *MemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

func (s *MemoryIdempotencyStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// Cleanup elimina las claves vencidas.
func (s *MemoryIdempotencyStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
		}
	}
}
