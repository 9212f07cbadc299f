package pdf_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
)

func TestGenerateMovementReport_DevuelvePDF(t *testing.T) {
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	a, b := "suc-a", "suc-b"
	report := &appinventory.MovementReport{
		ProductID:   "prod-1",
		BranchID:    a,
		Record:      &entity.StockRecord{CurrentStock: 8, ReservedStock: 1, AvailableStock: 7, UnitCost: decimal.NewFromInt(2500), Currency: "COP"},
		Since:       now.AddDate(0, 0, -30),
		GeneratedAt: now,
		Lines: []appinventory.MovementReportLine{
			{Entry: &entity.LedgerEntry{TransactionID: "PUR-20261014090000-000001", Type: entity.LedgerPurchase, ToBranchID: &a, Quantity: 10, TotalCost: decimal.NewFromInt(25000), CreatedAt: now.Add(-time.Hour)}, Delta: 10, Running: 10},
			{Entry: &entity.LedgerEntry{TransactionID: "TRF-20261014093000-000002", Type: entity.LedgerTransfer, FromBranchID: &a, ToBranchID: &b, Quantity: 2, TotalCost: decimal.NewFromInt(5000), CreatedAt: now.Add(-30 * time.Minute)}, Delta: -2, Running: 8},
		},
		NetDelta: 8,
	}

	doc, err := pdf.NewKardexPDFGenerator("stock-ledger").GenerateMovementReport(context.Background(), report)
	require.NoError(t, err)
	require.Greater(t, len(doc), 4)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestGenerateMovementReport_SinMovimientos(t *testing.T) {
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	doc, err := pdf.NewKardexPDFGenerator("").GenerateMovementReport(context.Background(), &appinventory.MovementReport{
		ProductID: "prod-1", Since: now.AddDate(0, 0, -7), GeneratedAt: now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}

func TestGenerateMovementReport_Nil(t *testing.T) {
	_, err := pdf.NewKardexPDFGenerator("").GenerateMovementReport(context.Background(), nil)
	assert.Error(t, err)
}
