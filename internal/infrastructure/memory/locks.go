package memory

import (
	"context"
	"sync"
)

// keyLocks tabla de locks por clave (producto, sucursal). Cada lock es un canal de capacidad 1
// para poder abandonar la espera si el contexto se cancela. Las entradas se cuentan por
// referencia y se eliminan cuando nadie las sostiene ni espera por ellas.
type keyLocks struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{slots: make(map[string]*lockSlot)}
}

func (l *keyLocks) ref(key string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *keyLocks) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[key]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// size número de claves con locks vivos.
func (l *keyLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// acquire toma los locks en el orden recibido. Si el contexto se cancela libera los ya tomados.
// El llamador debe pasar las claves ordenadas y sin repetir.
func (l *keyLocks) acquire(ctx context.Context, keys []string) (release func(), err error) {
	held := make([]*lockSlot, 0, len(keys))
	release = func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i].ch
			l.unref(keys[i])
		}
	}
	for _, k := range keys {
		s := l.ref(k)
		select {
		case s.ch <- struct{}{}:
			held = append(held, s)
		case <-ctx.Done():
			l.unref(k)
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}
