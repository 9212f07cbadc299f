package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerRepository define el puerto del kardex (solo anexar y consultar).
type LedgerRepository interface {
	// Append devuelve domain.ErrConflict si el TransactionID ya existe.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	Query(ctx context.Context, filter entity.LedgerFilter) (entity.LedgerPage, error)
}
