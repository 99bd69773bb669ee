package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/models"
)

type BreedingHandler struct {
	DB *mongo.Database
}

type CreateBreedingEventRequest struct {
	FemaleID  string    `json:"femaleId" binding:"required"`
	MaleID    string    `json:"maleId"`
	EventType string    `json:"eventType" binding:"required,oneof=mating pregnancy abortion"`
	EventDate time.Time `json:"eventDate" binding:"required"`
	Notes     string    `json:"notes"`
}

// CreateBreedingEvent records a mating, pregnancy or abortion. Pregnancy
// events derive the expected birth date from the female's category pregnancy
// period.
func (h *BreedingHandler) CreateBreedingEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateBreedingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	femaleID, err := primitive.ObjectIDFromHex(req.FemaleID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid femaleId")
		return
	}
	female, ok := loadOwnedAnimal(c, h.DB, userID, femaleID)
	if !ok {
		return
	}
	if female.Gender != "female" {
		respondError(c, http.StatusBadRequest, "Breeding events must reference a female animal")
		return
	}

	maleID, err := parseOptionalID(req.MaleID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid maleId")
		return
	}
	if maleID != nil {
		male, ok := loadOwnedAnimal(c, h.DB, userID, *maleID)
		if !ok {
			return
		}
		if male.Gender != "male" {
			respondError(c, http.StatusBadRequest, "maleId must reference a male animal")
			return
		}
	}

	event := models.BreedingEvent{
		UserID:    userID,
		FemaleID:  femaleID,
		MaleID:    maleID,
		EventType: req.EventType,
		EventDate: req.EventDate,
		Status:    models.BreedingStatusActive,
		Notes:     req.Notes,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.EventType == models.BreedingEventAbortion {
		event.Status = models.BreedingStatusFailed
	}

	if req.EventType == models.BreedingEventPregnancy && female.CategoryID != nil {
		var category models.AnimalCategory
		err := h.DB.Collection(database.CollAnimalCategories).
			FindOne(context.Background(), bson.M{"_id": *female.CategoryID, "userId": userID}).Decode(&category)
		if err == nil && category.PregnancyPeriod > 0 {
			expected := req.EventDate.AddDate(0, 0, category.PregnancyPeriod)
			event.ExpectedBirthDate = &expected
		} else if err != nil && err != mongo.ErrNoDocuments {
			respondError(c, http.StatusInternalServerError, "Failed to resolve category")
			return
		}
	}

	result, err := h.DB.Collection(database.CollBreedingEvents).InsertOne(context.Background(), event)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create breeding event")
		return
	}
	event.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, event)
}

// GetBreedingEvents lists breeding events, filterable by female and status.
func (h *BreedingHandler) GetBreedingEvents(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if raw := c.Query("femaleId"); raw != "" {
		femaleID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid femaleId")
			return
		}
		filter["femaleId"] = femaleID
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := h.DB.Collection(database.CollBreedingEvents).Find(context.Background(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query breeding events")
		return
	}
	defer cursor.Close(context.Background())

	var events []models.BreedingEvent
	if err = cursor.All(context.Background(), &events); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode breeding events")
		return
	}
	if events == nil {
		events = []models.BreedingEvent{}
	}

	respondList(c, events, len(events))
}

// GetBreedingEventByID fetches one breeding event.
func (h *BreedingHandler) GetBreedingEventByID(c *gin.Context) {
	var event models.BreedingEvent
	if !findOwnedByID(c, h.DB, database.CollBreedingEvents, &event, "Breeding event") {
		return
	}
	respondOK(c, event)
}

type UpdateBreedingEventRequest struct {
	EventDate         *time.Time `json:"eventDate"`
	ExpectedBirthDate *time.Time `json:"expectedBirthDate"`
	Status            *string    `json:"status"`
	Notes             *string    `json:"notes"`
}

func (h *BreedingHandler) UpdateBreedingEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateBreedingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.EventDate != nil {
		update["eventDate"] = *req.EventDate
	}
	if req.ExpectedBirthDate != nil {
		update["expectedBirthDate"] = *req.ExpectedBirthDate
	}
	if req.Notes != nil {
		update["notes"] = *req.Notes
	}
	if req.Status != nil {
		switch *req.Status {
		case models.BreedingStatusActive, models.BreedingStatusCompleted, models.BreedingStatusFailed:
			update["status"] = *req.Status
		default:
			respondError(c, http.StatusBadRequest, "Invalid status")
			return
		}
	}

	result, err := h.DB.Collection(database.CollBreedingEvents).
		UpdateOne(context.Background(), bson.M{"_id": id, "userId": userID}, bson.M{"$set": update})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update breeding event")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Breeding event not found")
		return
	}

	respondMessage(c, "Breeding event updated successfully")
}

func (h *BreedingHandler) DeleteBreedingEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	count, err := h.DB.Collection(database.CollBirths).
		CountDocuments(context.Background(), bson.M{"userId": userID, "breedingEventId": id})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to check linked births")
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "Breeding event has a recorded birth")
		return
	}

	result, err := h.DB.Collection(database.CollBreedingEvents).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete breeding event")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Breeding event not found")
		return
	}

	_, err = h.DB.Collection(database.CollReminders).
		DeleteMany(context.Background(), bson.M{"userId": userID, "relatedId": id})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete linked reminders")
		return
	}

	respondMessage(c, "Breeding event deleted successfully")
}

type RecordBirthRequest struct {
	BirthDate            time.Time `json:"birthDate" binding:"required"`
	TotalOffspringCount  int       `json:"totalOffspringCount" binding:"required,gt=0"`
	LivingOffspringCount int       `json:"livingOffspringCount" binding:"gte=0"`
	Notes                string    `json:"notes"`
}

// RecordBirth closes an active breeding event with a birth record. Offspring
// animals are registered afterwards against the birth.
func (h *BreedingHandler) RecordBirth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RecordBirthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.LivingOffspringCount > req.TotalOffspringCount {
		respondError(c, http.StatusBadRequest, "livingOffspringCount cannot exceed totalOffspringCount")
		return
	}

	events := h.DB.Collection(database.CollBreedingEvents)
	var event models.BreedingEvent
	err := events.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Breeding event not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve breeding event")
		}
		return
	}
	if event.Status != models.BreedingStatusActive {
		respondError(c, http.StatusBadRequest, "Breeding event is not active")
		return
	}

	eventID := event.ID
	birth := models.Birth{
		UserID:               userID,
		BreedingEventID:      &eventID,
		MotherID:             event.FemaleID,
		FatherID:             event.MaleID,
		BirthDate:            req.BirthDate,
		TotalOffspringCount:  req.TotalOffspringCount,
		LivingOffspringCount: req.LivingOffspringCount,
		Notes:                req.Notes,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}

	result, err := h.DB.Collection(database.CollBirths).InsertOne(context.Background(), birth)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to record birth")
		return
	}
	birth.ID = result.InsertedID.(primitive.ObjectID)

	_, err = events.UpdateOne(context.Background(), bson.M{"_id": event.ID},
		bson.M{"$set": bson.M{"status": models.BreedingStatusCompleted, "updatedAt": time.Now()}})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to close breeding event")
		return
	}

	_, err = h.DB.Collection(database.CollReminders).UpdateMany(context.Background(),
		bson.M{"userId": userID, "type": models.ReminderBreeding, "relatedId": event.ID},
		bson.M{"$set": bson.M{"isDone": true}})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to close reminders")
		return
	}

	respondCreated(c, birth)
}
