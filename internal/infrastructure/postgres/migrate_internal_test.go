package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/stock?sslmode=disable", migrateURL("postgres://u:p@db:5432/stock?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/stock", migrateURL("postgresql://u@db/stock"))
	assert.Equal(t, "pgx5://ya", migrateURL("pgx5://ya"))
}

func TestMigrationsEmbebidas(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_stock_ledger.up.sql")
	assert.Contains(t, names, "000001_stock_ledger.down.sql")
}

func TestSortedKeys_OrdenGlobalSinRepetidos(t *testing.T) {
	a := entity.StockKey{ProductID: "p1", BranchID: "a"}
	b := entity.StockKey{ProductID: "p1", BranchID: "b"}
	c := entity.StockKey{ProductID: "p0", BranchID: "z"}

	assert.Equal(t, []entity.StockKey{c, a, b}, sortedKeys([]entity.StockKey{b, a, c, b}))
	assert.Empty(t, sortedKeys(nil))
}
