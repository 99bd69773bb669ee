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

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/ledger"
	"livestock-farm-api-server/internal/models"
	"livestock-farm-api-server/internal/notifier"
	"livestock-farm-api-server/internal/restriction"
)

type HealthHandler struct {
	DB       *mongo.Database
	Notifier *notifier.Notifier
}

type CreateHealthEventRequest struct {
	AnimalID                string    `json:"animalId" binding:"required"`
	EventType               string    `json:"eventType" binding:"required,oneof=treatment checkup injury illness"`
	EventDate               time.Time `json:"eventDate" binding:"required"`
	Description             string    `json:"description"`
	Medication              string    `json:"medication"`
	ProductWithdrawalPeriod int       `json:"productWithdrawalPeriod" binding:"gte=0"`
	VetName                 string    `json:"vetName"`
	Cost                    float64   `json:"cost" binding:"gte=0"`
	InventoryItemID         string    `json:"inventoryItemId"`
	QuantityUsed            float64   `json:"quantityUsed" binding:"gte=0"`
}

// loadOwnedAnimal fetches an animal by id scoped to the owner, writing the
// error response itself on failure.
func loadOwnedAnimal(c *gin.Context, db *mongo.Database, userID, animalID primitive.ObjectID) (*models.Animal, bool) {
	var animal models.Animal
	err := db.Collection(database.CollAnimals).
		FindOne(context.Background(), bson.M{"_id": animalID, "userId": userID}).Decode(&animal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Animal not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve animal")
		}
		return nil, false
	}
	return &animal, true
}

// saveRestriction persists the animal's restriction sub-document.
func saveRestriction(db *mongo.Database, animal *models.Animal) error {
	_, err := db.Collection(database.CollAnimals).UpdateOne(context.Background(),
		bson.M{"_id": animal.ID},
		bson.M{"$set": bson.M{"restriction": animal.Restriction, "updatedAt": time.Now()}})
	return err
}

// CreateHealthEvent records a treatment or examination. A positive withdrawal
// period restricts the animal; a linked inventory item is drawn down; a
// positive cost books an expense.
func (h *HealthHandler) CreateHealthEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateHealthEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	animalID, err := primitive.ObjectIDFromHex(req.AnimalID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid animalId")
		return
	}
	animal, ok := loadOwnedAnimal(c, h.DB, userID, animalID)
	if !ok {
		return
	}

	event := models.HealthEvent{
		UserID:                  userID,
		AnimalID:                animal.ID,
		EventType:               req.EventType,
		EventDate:               req.EventDate,
		Description:             req.Description,
		Medication:              req.Medication,
		ProductWithdrawalPeriod: req.ProductWithdrawalPeriod,
		VetName:                 req.VetName,
		Cost:                    req.Cost,
		CreatedAt:               time.Now(),
		UpdatedAt:               time.Now(),
	}
	if req.ProductWithdrawalPeriod > 0 {
		end := restriction.WithdrawalEnd(req.EventDate, req.ProductWithdrawalPeriod)
		event.WithdrawalEndDate = &end
	}

	if req.InventoryItemID != "" && req.QuantityUsed > 0 {
		itemID, err := primitive.ObjectIDFromHex(req.InventoryItemID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid inventoryItemId")
			return
		}
		_, err = consumeInventory(h.DB, h.Notifier, userID, itemID, req.QuantityUsed, "health:"+req.EventType)
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
		event.InventoryItemID = &itemID
		event.QuantityUsed = req.QuantityUsed
	}

	result, err := h.DB.Collection(database.CollHealthEvents).InsertOne(context.Background(), event)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create health event")
		return
	}
	event.ID = result.InsertedID.(primitive.ObjectID)

	if restriction.FromHealthEvent(animal, &event, time.Now()) {
		if err := saveRestriction(h.DB, animal); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to apply restriction")
			return
		}
	}

	if req.Cost > 0 {
		id := event.ID
		record := models.FinancialRecord{
			UserID:      userID,
			Type:        models.FinancialExpense,
			Category:    "health",
			Amount:      req.Cost,
			Date:        req.EventDate,
			Description: "Health event: " + req.EventType,
			RelatedID:   &id,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if _, err := h.DB.Collection(database.CollFinancialRecords).InsertOne(context.Background(), record); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to book expense")
			return
		}
	}

	respondCreated(c, event)
}

// GetHealthEvents lists the caller's health events, filterable by animal.
func (h *HealthHandler) GetHealthEvents(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if raw := c.Query("animalId"); raw != "" {
		animalID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid animalId")
			return
		}
		filter["animalId"] = animalID
	}

	cursor, err := h.DB.Collection(database.CollHealthEvents).Find(context.Background(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query health events")
		return
	}
	defer cursor.Close(context.Background())

	var events []models.HealthEvent
	if err = cursor.All(context.Background(), &events); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode health events")
		return
	}
	if events == nil {
		events = []models.HealthEvent{}
	}

	respondList(c, events, len(events))
}

// GetHealthEventByID fetches one health event.
func (h *HealthHandler) GetHealthEventByID(c *gin.Context) {
	var event models.HealthEvent
	if !findOwnedByID(c, h.DB, database.CollHealthEvents, &event, "Health event") {
		return
	}
	respondOK(c, event)
}

type UpdateHealthEventRequest struct {
	EventDate               *time.Time `json:"eventDate"`
	Description             *string    `json:"description"`
	Medication              *string    `json:"medication"`
	ProductWithdrawalPeriod *int       `json:"productWithdrawalPeriod"`
	VetName                 *string    `json:"vetName"`
	Cost                    *float64   `json:"cost"`
}

// UpdateHealthEvent edits an event. Changing the date or withdrawal period
// recomputes the window and moves the animal's restriction when the event is
// its source.
func (h *HealthHandler) UpdateHealthEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateHealthEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	events := h.DB.Collection(database.CollHealthEvents)
	var event models.HealthEvent
	err := events.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Health event not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve health event")
		}
		return
	}

	oldEnd := event.WithdrawalEndDate

	if req.EventDate != nil {
		event.EventDate = *req.EventDate
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Medication != nil {
		event.Medication = *req.Medication
	}
	if req.VetName != nil {
		event.VetName = *req.VetName
	}
	if req.Cost != nil {
		if *req.Cost < 0 {
			respondError(c, http.StatusBadRequest, "cost must not be negative")
			return
		}
		event.Cost = *req.Cost
	}
	if req.ProductWithdrawalPeriod != nil {
		if *req.ProductWithdrawalPeriod < 0 {
			respondError(c, http.StatusBadRequest, "productWithdrawalPeriod must not be negative")
			return
		}
		event.ProductWithdrawalPeriod = *req.ProductWithdrawalPeriod
	}

	event.WithdrawalEndDate = nil
	var newEnd time.Time
	if event.ProductWithdrawalPeriod > 0 {
		newEnd = restriction.WithdrawalEnd(event.EventDate, event.ProductWithdrawalPeriod)
		event.WithdrawalEndDate = &newEnd
	}
	event.UpdatedAt = time.Now()

	_, err = events.ReplaceOne(context.Background(), bson.M{"_id": event.ID}, event)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update health event")
		return
	}

	animal, ok := loadOwnedAnimal(c, h.DB, userID, event.AnimalID)
	if !ok {
		return
	}
	modified := restriction.Reconcile(animal, event.ID, oldEnd, event.ProductWithdrawalPeriod, newEnd)
	if !modified && !animal.Restriction.IsRestricted && event.WithdrawalEndDate != nil &&
		event.WithdrawalEndDate.After(time.Now()) {
		modified = restriction.FromHealthEvent(animal, &event, time.Now())
	}
	if modified {
		if err := saveRestriction(h.DB, animal); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update restriction")
			return
		}
	}

	respondOK(c, event)
}

// DeleteHealthEvent removes an event, releasing the restriction it imposed and
// its linked expense record.
func (h *HealthHandler) DeleteHealthEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	events := h.DB.Collection(database.CollHealthEvents)
	var event models.HealthEvent
	err := events.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Health event not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve health event")
		}
		return
	}

	if _, err = events.DeleteOne(context.Background(), bson.M{"_id": event.ID}); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete health event")
		return
	}

	_, err = h.DB.Collection(database.CollFinancialRecords).
		DeleteMany(context.Background(), bson.M{"userId": userID, "relatedId": event.ID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete linked expense")
		return
	}

	animal, ok := loadOwnedAnimal(c, h.DB, userID, event.AnimalID)
	if !ok {
		return
	}
	if restriction.Reconcile(animal, event.ID, event.WithdrawalEndDate, 0, time.Time{}) {
		if err := saveRestriction(h.DB, animal); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to release restriction")
			return
		}
	}

	respondMessage(c, "Health event deleted successfully")
}
