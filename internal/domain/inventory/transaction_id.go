package inventory

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var typePrefixes = map[entity.LedgerType]string{
	entity.LedgerPurchase:   "PUR",
	entity.LedgerSale:       "SAL",
	entity.LedgerTransfer:   "TRF",
	entity.LedgerAdjustment: "ADJ",
	entity.LedgerReturn:     "RET",
}

// TypePrefix prefijo de tres letras del tipo de asiento.
func TypePrefix(t entity.LedgerType) string {
	if p, ok := typePrefixes[t]; ok {
		return p
	}
	return "MOV"
}

// TransactionIDGenerator genera IDs legibles: PREFIJO-AAAAMMDDhhmmss-INSTANCIA-NNNNNN.
// INSTANCIA son 8 hex aleatorios por generador, así dos réplicas (o un reinicio dentro del mismo
// segundo) no repiten IDs; NNNNNN es el contador monotónico del generador.
type TransactionIDGenerator struct {
	seq      atomic.Uint64
	instance string
	now      func() time.Time
}

// NewTransactionIDGenerator construye el generador con una etiqueta de instancia aleatoria.
// now puede ser nil (usa time.Now).
func NewTransactionIDGenerator(now func() time.Time) *TransactionIDGenerator {
	return NewTransactionIDGeneratorWithInstance(now, "")
}

// NewTransactionIDGeneratorWithInstance fija la etiqueta de instancia (pruebas, o un id de réplica
// asignado por el despliegue). Vacío = aleatoria.
func NewTransactionIDGeneratorWithInstance(now func() time.Time, instance string) *TransactionIDGenerator {
	if now == nil {
		now = time.Now
	}
	if instance == "" {
		instance = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}
	return &TransactionIDGenerator{now: now, instance: instance}
}

// Instance devuelve la etiqueta de instancia del generador.
func (g *TransactionIDGenerator) Instance() string {
	return g.instance
}

// Next devuelve el siguiente ID para el tipo indicado.
func (g *TransactionIDGenerator) Next(t entity.LedgerType) string {
	n := g.seq.Add(1) % 1_000_000
	return fmt.Sprintf("%s-%s-%s-%06d", TypePrefix(t), g.now().UTC().Format("20060102150405"), g.instance, n)
}
