package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/ledger"
	"livestock-farm-api-server/internal/models"
	"livestock-farm-api-server/internal/notifier"
)

type InventoryHandler struct {
	DB       *mongo.Database
	Notifier *notifier.Notifier
}

type CreateInventoryItemRequest struct {
	Name              string     `json:"name" binding:"required"`
	Category          string     `json:"category" binding:"required,oneof=feed medicine vaccine equipment other"`
	Unit              string     `json:"unit"`
	InitialQuantity   float64    `json:"initialQuantity" binding:"gte=0"`
	LowStockThreshold float64    `json:"lowStockThreshold" binding:"gte=0"`
	UnitPrice         float64    `json:"unitPrice" binding:"gte=0"`
	ExpiryDate        *time.Time `json:"expiryDate"`
	Supplier          string     `json:"supplier"`
}

// CreateItem creates an inventory item. An initial quantity is booked as an
// opening add transaction so the ledger stays complete.
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	item := models.InventoryItem{
		UserID:            userID,
		Name:              req.Name,
		Category:          req.Category,
		Unit:              req.Unit,
		AvailableQuantity: req.InitialQuantity,
		LowStockThreshold: req.LowStockThreshold,
		UnitPrice:         req.UnitPrice,
		ExpiryDate:        req.ExpiryDate,
		Supplier:          req.Supplier,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	ledger.Recompute(&item)

	result, err := h.DB.Collection(database.CollInventoryItems).InsertOne(context.Background(), item)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create inventory item")
		return
	}
	item.ID = result.InsertedID.(primitive.ObjectID)

	if req.InitialQuantity > 0 {
		tx := models.InventoryTransaction{
			UserID:    userID,
			ItemID:    item.ID,
			Type:      models.InventoryTxAdd,
			Quantity:  req.InitialQuantity,
			UnitPrice: req.UnitPrice,
			Date:      time.Now(),
			Reference: "opening",
			CreatedAt: time.Now(),
		}
		if _, err := h.DB.Collection(database.CollInventoryTransactions).InsertOne(context.Background(), tx); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to book opening transaction")
			return
		}
	}

	respondCreated(c, item)
}

// GetItems lists inventory items, filterable by category and low-stock state.
func (h *InventoryHandler) GetItems(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	if low := c.Query("lowStock"); low != "" {
		filter["isLowStock"] = low == "true"
	}

	cursor, err := h.DB.Collection(database.CollInventoryItems).Find(context.Background(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query inventory items")
		return
	}
	defer cursor.Close(context.Background())

	var items []models.InventoryItem
	if err = cursor.All(context.Background(), &items); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode inventory items")
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}

	respondList(c, items, len(items))
}

// GetItemByID fetches one inventory item.
func (h *InventoryHandler) GetItemByID(c *gin.Context) {
	var item models.InventoryItem
	if !findOwnedByID(c, h.DB, database.CollInventoryItems, &item, "Inventory item") {
		return
	}
	respondOK(c, item)
}

type UpdateInventoryItemRequest struct {
	Name              *string    `json:"name"`
	Unit              *string    `json:"unit"`
	LowStockThreshold *float64   `json:"lowStockThreshold"`
	UnitPrice         *float64   `json:"unitPrice"`
	ExpiryDate        *time.Time `json:"expiryDate"`
	Supplier          *string    `json:"supplier"`
}

// UpdateItem edits item metadata. Quantity moves only through transactions;
// changing the threshold re-derives the low-stock flag.
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	items := h.DB.Collection(database.CollInventoryItems)
	var item models.InventoryItem
	err := items.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Inventory item not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve inventory item")
		}
		return
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			respondError(c, http.StatusBadRequest, "unitPrice must not be negative")
			return
		}
		item.UnitPrice = *req.UnitPrice
	}
	if req.ExpiryDate != nil {
		item.ExpiryDate = req.ExpiryDate
	}
	if req.Supplier != nil {
		item.Supplier = *req.Supplier
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			respondError(c, http.StatusBadRequest, "lowStockThreshold must not be negative")
			return
		}
		item.LowStockThreshold = *req.LowStockThreshold
	}
	ledger.Recompute(&item)
	item.UpdatedAt = time.Now()

	if _, err = items.ReplaceOne(context.Background(), bson.M{"_id": item.ID}, item); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update inventory item")
		return
	}

	respondOK(c, item)
}

// DeleteItem removes an item. Items with a transaction history are kept; the
// transactions must be deleted (and thereby reversed) first.
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	count, err := h.DB.Collection(database.CollInventoryTransactions).
		CountDocuments(context.Background(), bson.M{"userId": userID, "itemId": id})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to check item transactions")
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "Inventory item has transactions; delete those first")
		return
	}

	result, err := h.DB.Collection(database.CollInventoryItems).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete inventory item")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Inventory item not found")
		return
	}

	respondMessage(c, "Inventory item deleted successfully")
}

type CreateInventoryTxRequest struct {
	Type       string     `json:"type" binding:"required,oneof=add use"`
	Quantity   float64    `json:"quantity" binding:"required,gt=0"`
	UnitPrice  float64    `json:"unitPrice" binding:"gte=0"`
	ExpiryDate *time.Time `json:"expiryDate"`
	Supplier   string     `json:"supplier"`
	Date       *time.Time `json:"date"`
	Reference  string     `json:"reference"`
	Notes      string     `json:"notes"`
}

// applyRestockFields merges the optional restock metadata of an add
// transaction into the item update. Use transactions never touch metadata.
func applyRestockFields(set bson.M, req *CreateInventoryTxRequest) {
	if req.Type != models.InventoryTxAdd {
		return
	}
	if req.ExpiryDate != nil {
		set["expiryDate"] = req.ExpiryDate
	}
	if req.Supplier != "" {
		set["supplier"] = req.Supplier
	}
}

// CreateTransaction books an add or use against the item. An add with a unit
// price books a linked purchase expense; a use can drop the item into
// low-stock or out-of-stock territory and notifies accordingly.
func (h *InventoryHandler) CreateTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c)
	if !ok {
		return
	}

	var req CreateInventoryTxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	items := h.DB.Collection(database.CollInventoryItems)
	var item models.InventoryItem
	err := items.FindOne(context.Background(), bson.M{"_id": itemID, "userId": userID}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Inventory item not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve inventory item")
		}
		return
	}

	switch req.Type {
	case models.InventoryTxAdd:
		err = ledger.Add(&item, req.Quantity, req.UnitPrice)
	case models.InventoryTxUse:
		err = ledger.Use(&item, req.Quantity)
	}
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	set := bson.M{
		"availableQuantity": item.AvailableQuantity,
		"isLowStock":        item.IsLowStock,
		"unitPrice":         item.UnitPrice,
		"updatedAt":         time.Now(),
	}
	applyRestockFields(set, &req)
	_, err = items.UpdateOne(context.Background(), bson.M{"_id": item.ID}, bson.M{"$set": set})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update inventory item")
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	tx := models.InventoryTransaction{
		UserID:    userID,
		ItemID:    item.ID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Date:      date,
		Reference: req.Reference,
		Notes:     req.Notes,
		CreatedAt: time.Now(),
	}
	result, err := h.DB.Collection(database.CollInventoryTransactions).InsertOne(context.Background(), tx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create inventory transaction")
		return
	}
	tx.ID = result.InsertedID.(primitive.ObjectID)

	if req.Type == models.InventoryTxAdd && req.UnitPrice > 0 {
		txID := tx.ID
		record := models.FinancialRecord{
			UserID:      userID,
			Type:        models.FinancialExpense,
			Category:    "inventory",
			Amount:      req.UnitPrice * req.Quantity,
			Date:        date,
			Description: "Restock: " + item.Name,
			RelatedID:   &txID,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if _, err := h.DB.Collection(database.CollFinancialRecords).InsertOne(context.Background(), record); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to book restock expense")
			return
		}
	}

	if req.Type == models.InventoryTxUse {
		notifyStockLevel(h.Notifier, &item)
	}

	respondCreated(c, tx)
}

// GetTransactions lists the item's transaction history, most recent first.
func (h *InventoryHandler) GetTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c)
	if !ok {
		return
	}

	cursor, err := h.DB.Collection(database.CollInventoryTransactions).
		Find(context.Background(), bson.M{"userId": userID, "itemId": itemID},
			options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query inventory transactions")
		return
	}
	defer cursor.Close(context.Background())

	var transactions []models.InventoryTransaction
	if err = cursor.All(context.Background(), &transactions); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode inventory transactions")
		return
	}
	if transactions == nil {
		transactions = []models.InventoryTransaction{}
	}

	respondList(c, transactions, len(transactions))
}

// DeleteTransaction reverses a transaction's quantity delta and removes it,
// together with any linked expense record. Reversals that would drive the
// stock negative are rejected.
func (h *InventoryHandler) DeleteTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	txID, err := primitive.ObjectIDFromHex(c.Param("txId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	transactions := h.DB.Collection(database.CollInventoryTransactions)
	var tx models.InventoryTransaction
	err = transactions.FindOne(context.Background(), bson.M{"_id": txID, "userId": userID}).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Inventory transaction not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve inventory transaction")
		}
		return
	}

	items := h.DB.Collection(database.CollInventoryItems)
	var item models.InventoryItem
	err = items.FindOne(context.Background(), bson.M{"_id": tx.ItemID, "userId": userID}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Inventory item not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve inventory item")
		}
		return
	}

	if err = ledger.Reverse(&item, &tx); err != nil {
		if errors.Is(err, ledger.ErrNegativeReversal) {
			respondError(c, http.StatusBadRequest, err.Error())
		} else {
			respondError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	_, err = items.UpdateOne(context.Background(), bson.M{"_id": item.ID},
		bson.M{"$set": bson.M{
			"availableQuantity": item.AvailableQuantity,
			"isLowStock":        item.IsLowStock,
			"updatedAt":         time.Now(),
		}})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update inventory item")
		return
	}

	if _, err = transactions.DeleteOne(context.Background(), bson.M{"_id": tx.ID}); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete inventory transaction")
		return
	}

	_, err = h.DB.Collection(database.CollFinancialRecords).
		DeleteMany(context.Background(), bson.M{"userId": userID, "relatedId": tx.ID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete linked expense")
		return
	}

	respondMessage(c, "Inventory transaction deleted successfully")
}
