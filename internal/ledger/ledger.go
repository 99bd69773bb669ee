// Package ledger holds the inventory quantity arithmetic. Available quantity
// moves only through add/use transactions; the low-stock flag is re-derived on
// every mutation.
package ledger

import (
	"errors"
	"fmt"

	"livestock-farm-api-server/internal/models"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrInsufficientStock  = errors.New("quantity exceeds available stock")
	ErrNegativeReversal   = errors.New("reversal would drive available quantity negative")
	ErrUnknownTransaction = errors.New("unknown inventory transaction type")
)

// Recompute re-derives the low-stock flag from the current quantity.
func Recompute(item *models.InventoryItem) {
	item.IsLowStock = item.AvailableQuantity <= item.LowStockThreshold
}

// Add increments the item's stock and refreshes the unit price when one is
// given.
func Add(item *models.InventoryItem, qty, unitPrice float64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	item.AvailableQuantity += qty
	if unitPrice > 0 {
		item.UnitPrice = unitPrice
	}
	Recompute(item)
	return nil
}

// Use decrements the item's stock, rejecting draws beyond what is available.
func Use(item *models.InventoryItem, qty float64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > item.AvailableQuantity {
		return fmt.Errorf("%w: requested %g, available %g", ErrInsufficientStock, qty, item.AvailableQuantity)
	}
	item.AvailableQuantity -= qty
	Recompute(item)
	return nil
}

// Reverse undoes the quantity delta of a previously applied transaction, as
// part of deleting it. Reversing an add may not take the quantity below zero.
func Reverse(item *models.InventoryItem, tx *models.InventoryTransaction) error {
	switch tx.Type {
	case models.InventoryTxAdd:
		if tx.Quantity > item.AvailableQuantity {
			return ErrNegativeReversal
		}
		item.AvailableQuantity -= tx.Quantity
	case models.InventoryTxUse:
		item.AvailableQuantity += tx.Quantity
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransaction, tx.Type)
	}
	Recompute(item)
	return nil
}
