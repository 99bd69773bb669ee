package handlers

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/ledger"
	"livestock-farm-api-server/internal/models"
	"livestock-farm-api-server/internal/notifier"
)

// consumeInventory draws qty from an inventory item on behalf of another
// record (health event, vaccination, feeding, equipment usage). It writes a
// use transaction with the given reference and raises stock notifications.
func consumeInventory(db *mongo.Database, notif *notifier.Notifier, userID, itemID primitive.ObjectID, qty float64, reference string) (*models.InventoryItem, error) {
	items := db.Collection(database.CollInventoryItems)

	var item models.InventoryItem
	err := items.FindOne(context.Background(), bson.M{"_id": itemID, "userId": userID}).Decode(&item)
	if err != nil {
		return nil, err
	}

	if err := ledger.Use(&item, qty); err != nil {
		return nil, err
	}

	_, err = items.UpdateOne(context.Background(), bson.M{"_id": item.ID},
		bson.M{"$set": bson.M{
			"availableQuantity": item.AvailableQuantity,
			"isLowStock":        item.IsLowStock,
			"updatedAt":         time.Now(),
		}})
	if err != nil {
		return nil, err
	}

	tx := models.InventoryTransaction{
		UserID:    userID,
		ItemID:    item.ID,
		Type:      models.InventoryTxUse,
		Quantity:  qty,
		Date:      time.Now(),
		Reference: reference,
		CreatedAt: time.Now(),
	}
	if _, err = db.Collection(database.CollInventoryTransactions).InsertOne(context.Background(), tx); err != nil {
		return nil, err
	}

	notifyStockLevel(notif, &item)
	return &item, nil
}

// notifyStockLevel raises a low-stock or out-of-stock notification for the
// item's current level. Best effort.
func notifyStockLevel(notif *notifier.Notifier, item *models.InventoryItem) {
	if notif == nil {
		return
	}

	var n models.Notification
	switch {
	case item.AvailableQuantity <= 0:
		n = models.Notification{
			Type:    models.NotificationOutOfStock,
			Title:   "Out of stock",
			Message: fmt.Sprintf("%s is out of stock", item.Name),
		}
	case item.IsLowStock:
		n = models.Notification{
			Type:    models.NotificationLowStock,
			Title:   "Low stock",
			Message: fmt.Sprintf("%s is below its threshold (%g %s left)", item.Name, item.AvailableQuantity, item.Unit),
		}
	default:
		return
	}

	id := item.ID
	n.UserID = item.UserID
	n.RelatedID = &id
	if err := notif.Notify(context.Background(), n); err != nil && notif.Logger != nil {
		notif.Logger.Warn("stock notification failed")
	}
}
