package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AdjustInputFromRequest adapta el request HTTP a AdjustStockInput. userID es el actor (CreatedBy).
func AdjustInputFromRequest(userID string, in dto.AdjustStockRequest) AdjustStockInput {
	return AdjustStockInput{
		ProductID: in.ProductID,
		BranchID:  in.BranchID,
		Type:      entity.LedgerType(in.Type),
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Reference: in.Reference,
		Notes:     in.Notes,
		OrderID:   in.OrderID,
		UserID:    userID,
	}
}

// TransferInputFromRequest adapta el request HTTP a TransferStockInput.
func TransferInputFromRequest(userID string, in dto.TransferStockRequest) TransferStockInput {
	return TransferStockInput{
		ProductID:    in.ProductID,
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		Reference:    in.Reference,
		Notes:        in.Notes,
		UserID:       userID,
	}
}

// ReservationInputFromRequest adapta el request HTTP a ReservationInput.
func ReservationInputFromRequest(userID string, in dto.ReservationRequest) ReservationInput {
	return ReservationInput{
		ProductID: in.ProductID,
		BranchID:  in.BranchID,
		Quantity:  in.Quantity,
		UserID:    userID,
	}
}

// CreateInputFromRequest adapta el request HTTP a CreateStockInput.
func CreateInputFromRequest(in dto.CreateStockRequest) CreateStockInput {
	return CreateStockInput{
		ProductID:    in.ProductID,
		BranchID:     in.BranchID,
		CurrentStock: in.CurrentStock,
		Thresholds: entity.Thresholds{
			MinStockLevel:   in.MinStockLevel,
			MaxStockLevel:   in.MaxStockLevel,
			ReorderPoint:    in.ReorderPoint,
			ReorderQuantity: in.ReorderQuantity,
		},
		UnitCost: in.UnitCost,
		Currency: in.Currency,
	}
}

// ThresholdsFromRequest adapta el body de umbrales.
func ThresholdsFromRequest(in dto.UpdateThresholdsRequest) entity.Thresholds {
	return entity.Thresholds{
		MinStockLevel:   in.MinStockLevel,
		MaxStockLevel:   in.MaxStockLevel,
		ReorderPoint:    in.ReorderPoint,
		ReorderQuantity: in.ReorderQuantity,
	}
}

// ToStockRecordResponse convierte un registro en su DTO de respuesta.
func ToStockRecordResponse(r *entity.StockRecord) dto.StockRecordResponse {
	if r == nil {
		return dto.StockRecordResponse{}
	}
	return dto.StockRecordResponse{
		ID:               r.ID,
		ProductID:        r.ProductID,
		BranchID:         r.BranchID,
		CurrentStock:     r.CurrentStock,
		ReservedStock:    r.ReservedStock,
		AvailableStock:   r.AvailableStock,
		MinStockLevel:    r.MinStockLevel,
		MaxStockLevel:    r.MaxStockLevel,
		ReorderPoint:     r.ReorderPoint,
		ReorderQuantity:  r.ReorderQuantity,
		UnitCost:         r.UnitCost,
		Currency:         r.Currency,
		IsLowStock:       r.IsLowStock,
		IsOutOfStock:     r.IsOutOfStock,
		LastRestockedAt:  r.LastRestockedAt,
		LastStockCheckAt: r.LastStockCheckAt,
		Version:          r.Version,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ToLedgerEntryResponse convierte un asiento en su DTO de respuesta.
func ToLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	if e == nil {
		return dto.LedgerEntryResponse{}
	}
	return dto.LedgerEntryResponse{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		Type:          string(e.Type),
		ProductID:     e.ProductID,
		FromBranchID:  e.FromBranchID,
		ToBranchID:    e.ToBranchID,
		Quantity:      e.Quantity,
		UnitCost:      e.UnitCost,
		TotalCost:     e.TotalCost,
		PreviousStock: e.PreviousStock,
		NewStock:      e.NewStock,
		Reference:     e.Reference,
		Notes:         e.Notes,
		OrderID:       e.OrderID,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
	}
}

// ToLedgerEntryResponses convierte una lista de asientos.
func ToLedgerEntryResponses(entries []*entity.LedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToLedgerEntryResponse(e))
	}
	return out
}
