package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestock-farm-api-server/internal/ledger"
	"livestock-farm-api-server/internal/models"
)

func item(qty, threshold float64) *models.InventoryItem {
	it := &models.InventoryItem{
		Name:              "starter feed",
		Category:          models.InventoryFeed,
		AvailableQuantity: qty,
		LowStockThreshold: threshold,
	}
	ledger.Recompute(it)
	return it
}

func TestAdd(t *testing.T) {
	it := item(2, 5)
	require.True(t, it.IsLowStock)

	require.NoError(t, ledger.Add(it, 10, 3.5))

	assert.Equal(t, 12.0, it.AvailableQuantity)
	assert.Equal(t, 3.5, it.UnitPrice)
	assert.False(t, it.IsLowStock)
}

func TestAddKeepsUnitPriceWithoutNewPrice(t *testing.T) {
	it := item(0, 0)
	it.UnitPrice = 2.25

	require.NoError(t, ledger.Add(it, 5, 0))
	assert.Equal(t, 2.25, it.UnitPrice)
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	it := item(10, 5)
	assert.ErrorIs(t, ledger.Add(it, 0, 0), ledger.ErrInvalidQuantity)
	assert.ErrorIs(t, ledger.Add(it, -1, 0), ledger.ErrInvalidQuantity)
	assert.Equal(t, 10.0, it.AvailableQuantity)
}

func TestUseDecrementsAndFlagsLowStock(t *testing.T) {
	it := item(10, 5)

	require.NoError(t, ledger.Use(it, 4))
	assert.Equal(t, 6.0, it.AvailableQuantity)
	assert.False(t, it.IsLowStock)

	require.NoError(t, ledger.Use(it, 1))
	assert.Equal(t, 5.0, it.AvailableQuantity)
	assert.True(t, it.IsLowStock)
}

func TestUseRejectsOverdraw(t *testing.T) {
	it := item(3, 1)

	err := ledger.Use(it, 4)

	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
	assert.Equal(t, 3.0, it.AvailableQuantity)
}

func TestReverseUse(t *testing.T) {
	it := item(5, 10)
	tx := &models.InventoryTransaction{Type: models.InventoryTxUse, Quantity: 3}

	require.NoError(t, ledger.Reverse(it, tx))
	assert.Equal(t, 8.0, it.AvailableQuantity)
	assert.True(t, it.IsLowStock)
}

func TestReverseAdd(t *testing.T) {
	it := item(8, 2)
	tx := &models.InventoryTransaction{Type: models.InventoryTxAdd, Quantity: 6}

	require.NoError(t, ledger.Reverse(it, tx))
	assert.Equal(t, 2.0, it.AvailableQuantity)
	assert.True(t, it.IsLowStock)
}

func TestReverseAddRejectsNegative(t *testing.T) {
	it := item(4, 2)
	tx := &models.InventoryTransaction{Type: models.InventoryTxAdd, Quantity: 6}

	err := ledger.Reverse(it, tx)

	assert.ErrorIs(t, err, ledger.ErrNegativeReversal)
	assert.Equal(t, 4.0, it.AvailableQuantity)
}

func TestReverseUnknownType(t *testing.T) {
	it := item(4, 2)
	tx := &models.InventoryTransaction{Type: "transfer", Quantity: 1}

	assert.ErrorIs(t, ledger.Reverse(it, tx), ledger.ErrUnknownTransaction)
}
