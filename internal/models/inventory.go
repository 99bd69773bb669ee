package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Inventory item categories.
const (
	InventoryFeed      = "feed"
	InventoryMedicine  = "medicine"
	InventoryVaccine   = "vaccine"
	InventoryEquipment = "equipment"
	InventoryOther     = "other"
)

// InventoryItem holds stock. AvailableQuantity is only ever mutated through
// add/use inventory transactions, never by a direct update.
type InventoryItem struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	Name              string             `bson:"name" json:"name"`
	Category          string             `bson:"category" json:"category"`
	Unit              string             `bson:"unit,omitempty" json:"unit,omitempty"`
	AvailableQuantity float64            `bson:"availableQuantity" json:"availableQuantity"`
	LowStockThreshold float64            `bson:"lowStockThreshold,omitempty" json:"lowStockThreshold,omitempty"`
	IsLowStock        bool               `bson:"isLowStock" json:"isLowStock"`
	UnitPrice         float64            `bson:"unitPrice,omitempty" json:"unitPrice,omitempty"`
	ExpiryDate        *time.Time         `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	Supplier          string             `bson:"supplier,omitempty" json:"supplier,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Inventory transaction types.
const (
	InventoryTxAdd = "add"
	InventoryTxUse = "use"
)

type InventoryTransaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ItemID    primitive.ObjectID `bson:"itemId" json:"itemId"`
	Type      string             `bson:"type" json:"type"`
	Quantity  float64            `bson:"quantity" json:"quantity"`
	UnitPrice float64            `bson:"unitPrice,omitempty" json:"unitPrice,omitempty"`
	Date      time.Time          `bson:"date" json:"date"`
	Reference string             `bson:"reference,omitempty" json:"reference,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
