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

type EquipmentHandler struct {
	DB       *mongo.Database
	Notifier *notifier.Notifier
}

type EquipmentUsageRequest struct {
	ItemID           string     `json:"itemId" binding:"required"`
	AnimalIDs        []string   `json:"animalIds"`
	Purpose          string     `json:"purpose"`
	Hours            float64    `json:"hours" binding:"gte=0"`
	ConsumedQuantity float64    `json:"consumedQuantity" binding:"gte=0"`
	Date             *time.Time `json:"date"`
	Notes            string     `json:"notes"`
}

// CreateUsage logs use of an equipment inventory item. Durable equipment draws
// no stock; a consumed quantity (disposables, fuel) goes through the ledger
// like any other use.
func (h *EquipmentHandler) CreateUsage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req EquipmentUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	itemID, err := primitive.ObjectIDFromHex(req.ItemID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid itemId")
		return
	}
	var item models.InventoryItem
	err = h.DB.Collection(database.CollInventoryItems).
		FindOne(context.Background(), bson.M{"_id": itemID, "userId": userID}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Inventory item not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve inventory item")
		}
		return
	}
	if item.Category != models.InventoryEquipment {
		respondError(c, http.StatusBadRequest, "Item is not equipment")
		return
	}

	animalIDs := make([]primitive.ObjectID, 0, len(req.AnimalIDs))
	for _, raw := range req.AnimalIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid animal id "+raw)
			return
		}
		animalIDs = append(animalIDs, id)
	}

	if req.ConsumedQuantity > 0 {
		_, err = consumeInventory(h.DB, h.Notifier, userID, itemID, req.ConsumedQuantity, "equipment:"+item.Name)
		if err != nil {
			switch {
			case err == mongo.ErrNoDocuments:
				respondError(c, http.StatusNotFound, "Inventory item not found")
			case errors.Is(err, ledger.ErrInsufficientStock), errors.Is(err, ledger.ErrInvalidQuantity):
				respondError(c, http.StatusBadRequest, err.Error())
			default:
				respondError(c, http.StatusInternalServerError, "Failed to draw down inventory")
			}
			return
		}
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	usage := models.EquipmentUsage{
		UserID:           userID,
		ItemID:           itemID,
		AnimalIDs:        animalIDs,
		Purpose:          req.Purpose,
		Hours:            req.Hours,
		ConsumedQuantity: req.ConsumedQuantity,
		Date:             date,
		Notes:            req.Notes,
		CreatedAt:        time.Now(),
	}

	result, err := h.DB.Collection(database.CollEquipmentUsages).InsertOne(context.Background(), usage)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to log equipment usage")
		return
	}
	usage.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, usage)
}

// GetUsages lists equipment usage entries, filterable by item.
func (h *EquipmentHandler) GetUsages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if raw := c.Query("itemId"); raw != "" {
		itemID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid itemId")
			return
		}
		filter["itemId"] = itemID
	}

	cursor, err := h.DB.Collection(database.CollEquipmentUsages).
		Find(context.Background(), filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query equipment usage")
		return
	}
	defer cursor.Close(context.Background())

	var usages []models.EquipmentUsage
	if err = cursor.All(context.Background(), &usages); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode equipment usage")
		return
	}
	if usages == nil {
		usages = []models.EquipmentUsage{}
	}

	respondList(c, usages, len(usages))
}

// GetUsageByID fetches one usage entry.
func (h *EquipmentHandler) GetUsageByID(c *gin.Context) {
	var usage models.EquipmentUsage
	if !findOwnedByID(c, h.DB, database.CollEquipmentUsages, &usage, "Equipment usage") {
		return
	}
	respondOK(c, usage)
}

// DeleteUsage removes a usage entry.
func (h *EquipmentHandler) DeleteUsage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.DB.Collection(database.CollEquipmentUsages).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete equipment usage")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Equipment usage not found")
		return
	}

	respondMessage(c, "Equipment usage deleted successfully")
}
