package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStockRequest body para POST /api/inventory/stock.
type CreateStockRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	BranchID        string          `json:"branch_id" validate:"required"`
	CurrentStock    int64           `json:"current_stock" validate:"min=0"`
	MinStockLevel   int64           `json:"min_stock_level" validate:"min=0"`
	MaxStockLevel   int64           `json:"max_stock_level" validate:"min=0"`
	ReorderPoint    int64           `json:"reorder_point" validate:"min=0"`
	ReorderQuantity int64           `json:"reorder_quantity" validate:"min=0"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Currency        string          `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// UpdateThresholdsRequest body para PATCH /api/inventory/stock/:product_id/:branch_id/thresholds.
type UpdateThresholdsRequest struct {
	MinStockLevel   int64 `json:"min_stock_level" validate:"min=0"`
	MaxStockLevel   int64 `json:"max_stock_level" validate:"min=0"`
	ReorderPoint    int64 `json:"reorder_point" validate:"min=0"`
	ReorderQuantity int64 `json:"reorder_quantity" validate:"min=0"`
}

// AdjustStockRequest body para POST /api/inventory/adjust y /api/inventory/commit-sale.
// En type=adjustment quantity es el valor absoluto resultante.
type AdjustStockRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	BranchID  string          `json:"branch_id" validate:"required"`
	Type      string          `json:"type" validate:"omitempty,oneof=purchase sale return adjustment"`
	Quantity  int64           `json:"quantity" validate:"gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Reference string          `json:"reference,omitempty" validate:"max=120"`
	Notes     string          `json:"notes,omitempty" validate:"max=500"`
	OrderID   *string         `json:"order_id,omitempty"`
}

// TransferStockRequest body para POST /api/inventory/transfer.
type TransferStockRequest struct {
	ProductID    string          `json:"product_id" validate:"required"`
	FromBranchID string          `json:"from_branch_id" validate:"required"`
	ToBranchID   string          `json:"to_branch_id" validate:"required,nefield=FromBranchID"`
	Quantity     int64           `json:"quantity" validate:"gt=0"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Reference    string          `json:"reference,omitempty" validate:"max=120"`
	Notes        string          `json:"notes,omitempty" validate:"max=500"`
}

// ReservationRequest body para POST /api/inventory/reserve y /api/inventory/release.
type ReservationRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	BranchID  string `json:"branch_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"gt=0"`
}

// StockRecordResponse representación de un registro de stock.
type StockRecordResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	BranchID         string          `json:"branch_id"`
	CurrentStock     int64           `json:"current_stock"`
	ReservedStock    int64           `json:"reserved_stock"`
	AvailableStock   int64           `json:"available_stock"`
	MinStockLevel    int64           `json:"min_stock_level"`
	MaxStockLevel    int64           `json:"max_stock_level"`
	ReorderPoint     int64           `json:"reorder_point"`
	ReorderQuantity  int64           `json:"reorder_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Currency         string          `json:"currency"`
	IsLowStock       bool            `json:"is_low_stock"`
	IsOutOfStock     bool            `json:"is_out_of_stock"`
	LastRestockedAt  *time.Time      `json:"last_restocked_at,omitempty"`
	LastStockCheckAt time.Time       `json:"last_stock_check_at"`
	Version          int64           `json:"version"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LedgerEntryResponse representación de un asiento del kardex.
type LedgerEntryResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	Type          string          `json:"type"`
	ProductID     string          `json:"product_id"`
	FromBranchID  *string         `json:"from_branch_id,omitempty"`
	ToBranchID    *string         `json:"to_branch_id,omitempty"`
	Quantity      int64           `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	PreviousStock int64           `json:"previous_stock"`
	NewStock      int64           `json:"new_stock"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	OrderID       *string         `json:"order_id,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AdjustStockResponse resultado de un ajuste o venta confirmada.
type AdjustStockResponse struct {
	Record StockRecordResponse `json:"record"`
	Entry  LedgerEntryResponse `json:"entry"`
}

// TransferStockResponse resultado de un traslado.
type TransferStockResponse struct {
	Source             StockRecordResponse `json:"source"`
	Destination        StockRecordResponse `json:"destination"`
	DestinationCreated bool                `json:"destination_created"`
	Entry              LedgerEntryResponse `json:"entry"`
}

// LowStockItemDTO registro en stock bajo con la cantidad sugerida de reposición.
type LowStockItemDTO struct {
	StockRecordResponse
	SuggestedOrderQty int64 `json:"suggested_order_qty"`
}

// StockStatsResponse agregados de stock.
type StockStatsResponse struct {
	BranchID        string          `json:"branch_id,omitempty"`
	TotalRecords    int             `json:"total_records"`
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	TotalValue      decimal.Decimal `json:"total_value"`
}

// LedgerPageResponse página de asientos.
type LedgerPageResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
