package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MutationConfig parámetros del motor de mutaciones.
type MutationConfig struct {
	DefaultCurrency string
	InstanceID      string           // etiqueta de réplica en los transaction_id; vacío = aleatoria
	Now             func() time.Time // nil = time.Now
}

// StockMutationUseCase es el único escritor de registros de stock y del kardex.
// Cada operación corre dentro de TxRunner.Run: o se persisten todos los registros y asientos que toca o ninguno.
type StockMutationUseCase struct {
	txRunner        TxRunner
	txIDs           *inventory.TransactionIDGenerator
	now             func() time.Time
	defaultCurrency string
	log             zerolog.Logger
}

// NewStockMutationUseCase construye el caso de uso.
func NewStockMutationUseCase(txRunner TxRunner, cfg MutationConfig, log zerolog.Logger) *StockMutationUseCase {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	currency := cfg.DefaultCurrency
	if currency == "" {
		currency = "COP"
	}
	return &StockMutationUseCase{
		txRunner:        txRunner,
		txIDs:           inventory.NewTransactionIDGeneratorWithInstance(now, cfg.InstanceID),
		now:             now,
		defaultCurrency: currency,
		log:             log.With().Str("component", "stock_mutation").Logger(),
	}
}

// CreateStockInput entrada para crear el registro de un par (producto, sucursal).
type CreateStockInput struct {
	ProductID    string
	BranchID     string
	CurrentStock int64
	Thresholds   entity.Thresholds
	UnitCost     decimal.Decimal
	Currency     string
}

// AdjustStockInput entrada para compras, ventas, devoluciones y ajustes.
// En ajustes Quantity es el valor absoluto resultante, no una diferencia.
type AdjustStockInput struct {
	ProductID string
	BranchID  string
	Type      entity.LedgerType
	Quantity  int64
	UnitCost  decimal.Decimal
	Reference string
	Notes     string
	OrderID   *string
	UserID    string
}

// TransferStockInput entrada para un traslado entre sucursales del mismo producto.
type TransferStockInput struct {
	ProductID    string
	FromBranchID string
	ToBranchID   string
	Quantity     int64
	UnitCost     decimal.Decimal
	Reference    string
	Notes        string
	UserID       string
}

// ReservationInput entrada para apartar o liberar stock.
type ReservationInput struct {
	ProductID string
	BranchID  string
	Quantity  int64
	UserID    string
}

// UpdateThresholdsInput umbrales nuevos para un registro.
type UpdateThresholdsInput struct {
	ProductID  string
	BranchID   string
	Thresholds entity.Thresholds
}

// AdjustResult registro actualizado y asiento escrito.
type AdjustResult struct {
	Record *entity.StockRecord
	Entry  *entity.LedgerEntry
}

// TransferResult registros de origen y destino actualizados y el asiento del traslado.
type TransferResult struct {
	Source      *entity.StockRecord
	Destination *entity.StockRecord
	Entry       *entity.LedgerEntry
	Created     bool // el destino se creó implícitamente
}

// CreateStockRecord crea el registro de un par (producto, sucursal). El stock inicial no genera asiento.
func (uc *StockMutationUseCase) CreateStockRecord(ctx context.Context, in CreateStockInput) (*entity.StockRecord, error) {
	if in.ProductID == "" || in.BranchID == "" || in.CurrentStock < 0 || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := validateThresholds(in.Thresholds); err != nil {
		return nil, err
	}
	key := entity.StockKey{ProductID: in.ProductID, BranchID: in.BranchID}
	currency := in.Currency
	if currency == "" {
		currency = uc.defaultCurrency
	}

	var created *entity.StockRecord
	err := uc.txRunner.Run(ctx, []entity.StockKey{key}, func(
		stockRepo repository.StockRecordRepository,
		_ repository.LedgerRepository,
	) error {
		now := uc.now()
		rec := entity.StockRecord{
			ID:           uuid.New().String(),
			ProductID:    in.ProductID,
			BranchID:     in.BranchID,
			CurrentStock: in.CurrentStock,
			UnitCost:     in.UnitCost,
			Currency:     currency,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		rec.ApplyThresholds(in.Thresholds)
		if in.CurrentStock > 0 {
			rec.LastRestockedAt = &now
		}
		rec = inventory.Recompute(rec, now)
		if err := stockRepo.Create(ctx, &rec); err != nil {
			return err
		}
		created = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", in.ProductID).Str("branch_id", in.BranchID).
		Int64("current_stock", in.CurrentStock).Msg("registro de stock creado")
	return created, nil
}

// AdjustStock aplica una compra, venta, devolución o ajuste sobre un registro y anexa un asiento.
//   - purchase, return: CurrentStock += Quantity
//   - sale: exige AvailableStock >= Quantity; CurrentStock -= Quantity
//   - adjustment: CurrentStock = Quantity
//
// UnitCost del registro se sobrescribe con el valor recibido. La venta no toca ReservedStock;
// para cerrar una venta apartada usar CommitReservedSale.
func (uc *StockMutationUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (*AdjustResult, error) {
	if err := validateAdjust(in); err != nil {
		return nil, err
	}
	key := entity.StockKey{ProductID: in.ProductID, BranchID: in.BranchID}

	var res AdjustResult
	err := uc.txRunner.Run(ctx, []entity.StockKey{key}, func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		rec, err := stockRepo.Get(ctx, key)
		if err != nil {
			return err
		}
		now := uc.now()
		prev := rec.CurrentStock

		switch in.Type {
		case entity.LedgerPurchase, entity.LedgerReturn:
			rec.CurrentStock += in.Quantity
		case entity.LedgerSale:
			if rec.AvailableStock < in.Quantity {
				return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, rec.AvailableStock, in.Quantity)
			}
			rec.CurrentStock -= in.Quantity
		case entity.LedgerAdjustment:
			if in.Quantity < rec.ReservedStock {
				return fmt.Errorf("%w: el ajuste a %d deja menos de lo reservado (%d)", domain.ErrInsufficientStock, in.Quantity, rec.ReservedStock)
			}
			rec.CurrentStock = in.Quantity
		}
		if rec.CurrentStock < 0 {
			rec.CurrentStock = 0
		}
		if rec.CurrentStock > prev {
			rec.LastRestockedAt = &now
		}
		rec.UnitCost = in.UnitCost
		rec.UpdatedAt = now
		*rec = inventory.Recompute(*rec, now)
		if err := stockRepo.Save(ctx, rec); err != nil {
			return err
		}

		branch := in.BranchID
		entry := uc.newEntry(in.Type, in.ProductID, in.Quantity, in.UnitCost, now)
		if in.Type == entity.LedgerSale {
			entry.FromBranchID = &branch
		} else {
			entry.ToBranchID = &branch
		}
		entry.PreviousStock = prev
		entry.NewStock = rec.CurrentStock
		entry.Reference = in.Reference
		entry.Notes = in.Notes
		entry.OrderID = in.OrderID
		entry.CreatedBy = in.UserID
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return err
		}
		res = AdjustResult{Record: rec, Entry: entry}
		return nil
	})
	if err != nil {
		uc.logRejected("adjust", key, err)
		return nil, err
	}
	uc.log.Info().Str("op", "adjust").Str("type", string(in.Type)).
		Str("product_id", in.ProductID).Str("branch_id", in.BranchID).
		Int64("quantity", in.Quantity).Int64("current_stock", res.Record.CurrentStock).
		Str("transaction_id", res.Entry.TransactionID).Msg("movimiento registrado")
	return &res, nil
}

// TransferStock mueve stock entre dos sucursales en una sola unidad atómica: resta en origen,
// suma en destino (creándolo si no existe, con los umbrales y moneda del origen) y anexa un único asiento.
func (uc *StockMutationUseCase) TransferStock(ctx context.Context, in TransferStockInput) (*TransferResult, error) {
	if in.ProductID == "" || in.FromBranchID == "" || in.ToBranchID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.FromBranchID == in.ToBranchID {
		return nil, fmt.Errorf("%w: origen y destino son la misma sucursal", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	srcKey := entity.StockKey{ProductID: in.ProductID, BranchID: in.FromBranchID}
	dstKey := entity.StockKey{ProductID: in.ProductID, BranchID: in.ToBranchID}

	var res TransferResult
	err := uc.txRunner.Run(ctx, []entity.StockKey{srcKey, dstKey}, func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		src, err := stockRepo.Get(ctx, srcKey)
		if err != nil {
			return err
		}
		if src.AvailableStock < in.Quantity {
			return fmt.Errorf("%w: disponible %d en origen, solicitado %d", domain.ErrInsufficientStock, src.AvailableStock, in.Quantity)
		}
		now := uc.now()

		created := false
		dst, err := stockRepo.Get(ctx, dstKey)
		if errors.Is(err, domain.ErrNotFound) {
			dst = &entity.StockRecord{
				ID:        uuid.New().String(),
				ProductID: in.ProductID,
				BranchID:  in.ToBranchID,
				UnitCost:  in.UnitCost,
				Currency:  src.Currency,
				CreatedAt: now,
			}
			dst.ApplyThresholds(src.Thresholds())
			created = true
		} else if err != nil {
			return err
		}

		srcPrev := src.CurrentStock
		src.CurrentStock -= in.Quantity
		dst.CurrentStock += in.Quantity
		dst.LastRestockedAt = &now
		src.UpdatedAt = now
		dst.UpdatedAt = now
		*src = inventory.Recompute(*src, now)
		*dst = inventory.Recompute(*dst, now)

		if err := stockRepo.Save(ctx, src); err != nil {
			return err
		}
		if created {
			err = stockRepo.Create(ctx, dst)
		} else {
			err = stockRepo.Save(ctx, dst)
		}
		if err != nil {
			return err
		}

		from, to := in.FromBranchID, in.ToBranchID
		entry := uc.newEntry(entity.LedgerTransfer, in.ProductID, in.Quantity, in.UnitCost, now)
		entry.FromBranchID = &from
		entry.ToBranchID = &to
		entry.PreviousStock = srcPrev
		entry.NewStock = src.CurrentStock
		entry.Reference = in.Reference
		entry.Notes = in.Notes
		entry.CreatedBy = in.UserID
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return err
		}
		res = TransferResult{Source: src, Destination: dst, Entry: entry, Created: created}
		return nil
	})
	if err != nil {
		uc.logRejected("transfer", srcKey, err)
		return nil, err
	}
	uc.log.Info().Str("op", "transfer").Str("product_id", in.ProductID).
		Str("from_branch_id", in.FromBranchID).Str("to_branch_id", in.ToBranchID).
		Int64("quantity", in.Quantity).Bool("destination_created", res.Created).
		Str("transaction_id", res.Entry.TransactionID).Msg("traslado registrado")
	return &res, nil
}

// ReserveStock aparta stock para un pedido sin confirmar. No genera asiento: CurrentStock no cambia.
func (uc *StockMutationUseCase) ReserveStock(ctx context.Context, in ReservationInput) (*entity.StockRecord, error) {
	return uc.mutateReservation(ctx, "reserve", in, func(rec *entity.StockRecord) error {
		if rec.AvailableStock < in.Quantity {
			return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, rec.AvailableStock, in.Quantity)
		}
		rec.ReservedStock += in.Quantity
		return nil
	})
}

// ReleaseReservedStock libera stock apartado. No genera asiento.
func (uc *StockMutationUseCase) ReleaseReservedStock(ctx context.Context, in ReservationInput) (*entity.StockRecord, error) {
	return uc.mutateReservation(ctx, "release", in, func(rec *entity.StockRecord) error {
		if rec.ReservedStock < in.Quantity {
			return fmt.Errorf("%w: la liberación (%d) excede lo reservado (%d)", domain.ErrInvalidInput, in.Quantity, rec.ReservedStock)
		}
		rec.ReservedStock -= in.Quantity
		return nil
	})
}

func (uc *StockMutationUseCase) mutateReservation(ctx context.Context, op string, in ReservationInput, apply func(*entity.StockRecord) error) (*entity.StockRecord, error) {
	if in.ProductID == "" || in.BranchID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	key := entity.StockKey{ProductID: in.ProductID, BranchID: in.BranchID}

	var out *entity.StockRecord
	err := uc.txRunner.Run(ctx, []entity.StockKey{key}, func(
		stockRepo repository.StockRecordRepository,
		_ repository.LedgerRepository,
	) error {
		rec, err := stockRepo.Get(ctx, key)
		if err != nil {
			return err
		}
		if err := apply(rec); err != nil {
			return err
		}
		now := uc.now()
		rec.UpdatedAt = now
		*rec = inventory.Recompute(*rec, now)
		if err := stockRepo.Save(ctx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		uc.logRejected(op, key, err)
		return nil, err
	}
	uc.log.Info().Str("op", op).Str("product_id", in.ProductID).Str("branch_id", in.BranchID).
		Int64("quantity", in.Quantity).Int64("reserved_stock", out.ReservedStock).
		Int64("available_stock", out.AvailableStock).Msg("reserva actualizada")
	return out, nil
}

// CommitReservedSale confirma una venta previamente apartada en una sola unidad atómica:
// libera Quantity de ReservedStock, descuenta Quantity de CurrentStock y anexa un asiento de venta.
// Exige ReservedStock >= Quantity.
func (uc *StockMutationUseCase) CommitReservedSale(ctx context.Context, in AdjustStockInput) (*AdjustResult, error) {
	in.Type = entity.LedgerSale
	if err := validateAdjust(in); err != nil {
		return nil, err
	}
	key := entity.StockKey{ProductID: in.ProductID, BranchID: in.BranchID}

	var res AdjustResult
	err := uc.txRunner.Run(ctx, []entity.StockKey{key}, func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		rec, err := stockRepo.Get(ctx, key)
		if err != nil {
			return err
		}
		if rec.ReservedStock < in.Quantity {
			return fmt.Errorf("%w: la venta (%d) excede lo reservado (%d)", domain.ErrInvalidInput, in.Quantity, rec.ReservedStock)
		}
		if rec.CurrentStock < in.Quantity {
			return fmt.Errorf("%w: stock actual %d, solicitado %d", domain.ErrInsufficientStock, rec.CurrentStock, in.Quantity)
		}
		now := uc.now()
		prev := rec.CurrentStock
		rec.ReservedStock -= in.Quantity
		rec.CurrentStock -= in.Quantity
		rec.UnitCost = in.UnitCost
		rec.UpdatedAt = now
		*rec = inventory.Recompute(*rec, now)
		if err := stockRepo.Save(ctx, rec); err != nil {
			return err
		}

		branch := in.BranchID
		entry := uc.newEntry(entity.LedgerSale, in.ProductID, in.Quantity, in.UnitCost, now)
		entry.FromBranchID = &branch
		entry.PreviousStock = prev
		entry.NewStock = rec.CurrentStock
		entry.Reference = in.Reference
		entry.Notes = in.Notes
		entry.OrderID = in.OrderID
		entry.CreatedBy = in.UserID
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return err
		}
		res = AdjustResult{Record: rec, Entry: entry}
		return nil
	})
	if err != nil {
		uc.logRejected("commit_sale", key, err)
		return nil, err
	}
	uc.log.Info().Str("op", "commit_sale").Str("product_id", in.ProductID).Str("branch_id", in.BranchID).
		Int64("quantity", in.Quantity).Str("transaction_id", res.Entry.TransactionID).Msg("venta apartada confirmada")
	return &res, nil
}

// UpdateThresholds cambia los umbrales de un registro y recalcula sus indicadores. No genera asiento.
func (uc *StockMutationUseCase) UpdateThresholds(ctx context.Context, in UpdateThresholdsInput) (*entity.StockRecord, error) {
	if in.ProductID == "" || in.BranchID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateThresholds(in.Thresholds); err != nil {
		return nil, err
	}
	key := entity.StockKey{ProductID: in.ProductID, BranchID: in.BranchID}

	var out *entity.StockRecord
	err := uc.txRunner.Run(ctx, []entity.StockKey{key}, func(
		stockRepo repository.StockRecordRepository,
		_ repository.LedgerRepository,
	) error {
		rec, err := stockRepo.Get(ctx, key)
		if err != nil {
			return err
		}
		now := uc.now()
		rec.ApplyThresholds(in.Thresholds)
		rec.UpdatedAt = now
		*rec = inventory.Recompute(*rec, now)
		if err := stockRepo.Save(ctx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteStockRecord borra lógicamente un registro. Un registro con stock apartado no se puede borrar.
func (uc *StockMutationUseCase) DeleteStockRecord(ctx context.Context, key entity.StockKey) error {
	if key.ProductID == "" || key.BranchID == "" {
		return domain.ErrInvalidInput
	}
	err := uc.txRunner.Run(ctx, []entity.StockKey{key}, func(
		stockRepo repository.StockRecordRepository,
		_ repository.LedgerRepository,
	) error {
		rec, err := stockRepo.Get(ctx, key)
		if err != nil {
			return err
		}
		if rec.ReservedStock > 0 {
			return fmt.Errorf("%w: el registro tiene %d unidades reservadas", domain.ErrConflict, rec.ReservedStock)
		}
		rec.IsDeleted = true
		rec.UpdatedAt = uc.now()
		return stockRepo.Save(ctx, rec)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("product_id", key.ProductID).Str("branch_id", key.BranchID).Msg("registro de stock borrado")
	return nil
}

func (uc *StockMutationUseCase) newEntry(t entity.LedgerType, productID string, qty int64, unitCost decimal.Decimal, now time.Time) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:            uuid.New().String(),
		TransactionID: uc.txIDs.Next(t),
		Type:          t,
		ProductID:     productID,
		Quantity:      qty,
		UnitCost:      unitCost,
		TotalCost:     decimal.NewFromInt(qty).Mul(unitCost),
		CreatedAt:     now,
	}
}

func (uc *StockMutationUseCase) logRejected(op string, key entity.StockKey, err error) {
	if domain.Kind(err) == domain.KindInternal {
		uc.log.Error().Err(err).Str("op", op).Str("key", key.String()).Msg("mutación de stock fallida")
		return
	}
	uc.log.Debug().Err(err).Str("op", op).Str("key", key.String()).Msg("mutación de stock rechazada")
}

func validateAdjust(in AdjustStockInput) error {
	if in.ProductID == "" || in.BranchID == "" || in.Quantity <= 0 || in.UnitCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.LedgerPurchase, entity.LedgerSale, entity.LedgerReturn, entity.LedgerAdjustment:
		return nil
	}
	return fmt.Errorf("%w: tipo %q no permitido en un ajuste", domain.ErrInvalidInput, in.Type)
}

func validateThresholds(t entity.Thresholds) error {
	if t.MinStockLevel < 0 || t.MaxStockLevel < 0 || t.ReorderPoint < 0 || t.ReorderQuantity < 0 {
		return fmt.Errorf("%w: los umbrales no pueden ser negativos", domain.ErrInvalidInput)
	}
	if t.MaxStockLevel > 0 && t.MaxStockLevel < t.MinStockLevel {
		return fmt.Errorf("%w: el máximo no puede ser menor que el mínimo", domain.ErrInvalidInput)
	}
	return nil
}
