package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/ledger"
	"livestock-farm-api-server/internal/models"
	"livestock-farm-api-server/internal/notifier"
)

type FeedingHandler struct {
	DB       *mongo.Database
	Notifier *notifier.Notifier
}

// newRecordID builds a human-scannable feeding record id from the feeding
// date and a short random suffix.
func newRecordID(date time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("FR-%s-%s", date.Format("20060102-150405"), suffix)
}

type FeedingRecordRequest struct {
	AnimalIDs   []string   `json:"animalIds" binding:"required,min=1"`
	FeedTypeID  string     `json:"feedTypeId" binding:"required"`
	TotalAmount float64    `json:"totalAmount" binding:"required,gt=0"`
	UnitCost    float64    `json:"unitCost" binding:"gte=0"`
	Date        *time.Time `json:"date"`
	Notes       string     `json:"notes"`
}

// buildFeedingRecord validates one request and draws the feed from inventory.
func (h *FeedingHandler) buildFeedingRecord(userID primitive.ObjectID, req FeedingRecordRequest) (*models.FeedingRecord, int, error) {
	feedTypeID, err := primitive.ObjectIDFromHex(req.FeedTypeID)
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("invalid feedTypeId")
	}

	animalIDs := make([]primitive.ObjectID, 0, len(req.AnimalIDs))
	for _, raw := range req.AnimalIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, http.StatusBadRequest, errors.New("invalid animal id " + raw)
		}
		animalIDs = append(animalIDs, id)
	}
	count, err := h.DB.Collection(database.CollAnimals).CountDocuments(context.Background(),
		bson.M{"userId": userID, "_id": bson.M{"$in": animalIDs}})
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("failed to verify animals")
	}
	if int(count) != len(animalIDs) {
		return nil, http.StatusNotFound, errors.New("one or more animals not found")
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	recordID := newRecordID(date)

	item, err := consumeInventory(h.DB, h.Notifier, userID, feedTypeID, req.TotalAmount, "feeding:"+recordID)
	if err != nil {
		switch {
		case err == mongo.ErrNoDocuments:
			return nil, http.StatusNotFound, errors.New("feed type not found")
		case errors.Is(err, ledger.ErrInsufficientStock), errors.Is(err, ledger.ErrInvalidQuantity):
			return nil, http.StatusBadRequest, err
		default:
			return nil, http.StatusInternalServerError, errors.New("failed to draw down feed stock")
		}
	}

	unitCost := req.UnitCost
	if unitCost == 0 {
		unitCost = item.UnitPrice
	}

	record := models.FeedingRecord{
		UserID:      userID,
		RecordID:    recordID,
		AnimalIDs:   animalIDs,
		FeedTypeID:  feedTypeID,
		TotalAmount: req.TotalAmount,
		UnitCost:    unitCost,
		Cost:        unitCost * req.TotalAmount,
		Date:        date,
		Notes:       req.Notes,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := h.DB.Collection(database.CollFeedingRecords).InsertOne(context.Background(), record)
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("failed to create feeding record")
	}
	record.ID = result.InsertedID.(primitive.ObjectID)
	return &record, 0, nil
}

// CreateRecord books one feeding, drawing the feed from inventory.
func (h *FeedingHandler) CreateRecord(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req FeedingRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	record, status, err := h.buildFeedingRecord(userID, req)
	if err != nil {
		respondError(c, status, err.Error())
		return
	}

	respondCreated(c, record)
}

type BulkFeedingError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// CreateRecordsBulk books many feedings in one call. Entries fail
// independently; the response reports what was created and what was rejected.
func (h *FeedingHandler) CreateRecordsBulk(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var reqs []FeedingRecordRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(reqs) == 0 {
		respondError(c, http.StatusBadRequest, "No feeding records submitted")
		return
	}

	created := make([]models.FeedingRecord, 0, len(reqs))
	bulkErrors := []BulkFeedingError{}
	for i, req := range reqs {
		if len(req.AnimalIDs) == 0 || req.FeedTypeID == "" || req.TotalAmount <= 0 {
			bulkErrors = append(bulkErrors, BulkFeedingError{Index: i, Message: "animalIds, feedTypeId and a positive totalAmount are required"})
			continue
		}
		record, _, err := h.buildFeedingRecord(userID, req)
		if err != nil {
			bulkErrors = append(bulkErrors, BulkFeedingError{Index: i, Message: err.Error()})
			continue
		}
		created = append(created, *record)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"created": created, "errors": bulkErrors},
	})
}

// GetRecords lists feeding records, filterable by animal and date range.
func (h *FeedingHandler) GetRecords(c *gin.Context) {
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
		filter["animalIds"] = animalID
	}
	dateRange := bson.M{}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid from date")
			return
		}
		dateRange["$gte"] = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid to date")
			return
		}
		dateRange["$lte"] = to
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	cursor, err := h.DB.Collection(database.CollFeedingRecords).
		Find(context.Background(), filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query feeding records")
		return
	}
	defer cursor.Close(context.Background())

	var records []models.FeedingRecord
	if err = cursor.All(context.Background(), &records); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode feeding records")
		return
	}
	if records == nil {
		records = []models.FeedingRecord{}
	}

	respondList(c, records, len(records))
}

// GetRecordByID fetches one feeding record.
func (h *FeedingHandler) GetRecordByID(c *gin.Context) {
	var record models.FeedingRecord
	if !findOwnedByID(c, h.DB, database.CollFeedingRecords, &record, "Feeding record") {
		return
	}
	respondOK(c, record)
}

// DeleteRecord removes a feeding record. The consumed feed is not restocked;
// the draw already happened in the barn.
func (h *FeedingHandler) DeleteRecord(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.DB.Collection(database.CollFeedingRecords).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete feeding record")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Feeding record not found")
		return
	}

	respondMessage(c, "Feeding record deleted successfully")
}

type FeedingScheduleRequest struct {
	Name             string   `json:"name" binding:"required"`
	AnimalIDs        []string `json:"animalIds"`
	FeedTypeID       string   `json:"feedTypeId"`
	TemplateID       string   `json:"templateId"`
	Times            []string `json:"times"`
	AmountPerFeeding float64  `json:"amountPerFeeding" binding:"gte=0"`
	IsActive         *bool    `json:"isActive"`
	Notes            string   `json:"notes"`
}

func (h *FeedingHandler) scheduleFromRequest(userID primitive.ObjectID, req FeedingScheduleRequest) (*models.FeedingSchedule, error) {
	animalIDs := make([]primitive.ObjectID, 0, len(req.AnimalIDs))
	for _, raw := range req.AnimalIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, errors.New("invalid animal id " + raw)
		}
		animalIDs = append(animalIDs, id)
	}
	feedTypeID, err := parseOptionalID(req.FeedTypeID)
	if err != nil {
		return nil, errors.New("invalid feedTypeId")
	}
	templateID, err := parseOptionalID(req.TemplateID)
	if err != nil {
		return nil, errors.New("invalid templateId")
	}
	for _, t := range req.Times {
		if _, err := time.Parse("15:04", t); err != nil {
			return nil, errors.New("times must be in HH:MM format")
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return &models.FeedingSchedule{
		UserID:           userID,
		Name:             req.Name,
		AnimalIDs:        animalIDs,
		FeedTypeID:       feedTypeID,
		TemplateID:       templateID,
		Times:            req.Times,
		AmountPerFeeding: req.AmountPerFeeding,
		IsActive:         active,
		Notes:            req.Notes,
	}, nil
}

func (h *FeedingHandler) CreateSchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req FeedingScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	schedule, err := h.scheduleFromRequest(userID, req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = time.Now()

	result, err := h.DB.Collection(database.CollFeedingSchedules).InsertOne(context.Background(), schedule)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create feeding schedule")
		return
	}
	schedule.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, schedule)
}

func (h *FeedingHandler) GetSchedules(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if active := c.Query("active"); active != "" {
		filter["isActive"] = active == "true"
	}

	cursor, err := h.DB.Collection(database.CollFeedingSchedules).Find(context.Background(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query feeding schedules")
		return
	}
	defer cursor.Close(context.Background())

	var schedules []models.FeedingSchedule
	if err = cursor.All(context.Background(), &schedules); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode feeding schedules")
		return
	}
	if schedules == nil {
		schedules = []models.FeedingSchedule{}
	}

	respondList(c, schedules, len(schedules))
}

// GetScheduleByID fetches one feeding schedule.
func (h *FeedingHandler) GetScheduleByID(c *gin.Context) {
	var schedule models.FeedingSchedule
	if !findOwnedByID(c, h.DB, database.CollFeedingSchedules, &schedule, "Feeding schedule") {
		return
	}
	respondOK(c, schedule)
}

func (h *FeedingHandler) UpdateSchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req FeedingScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	schedule, err := h.scheduleFromRequest(userID, req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	update := bson.M{
		"name":             schedule.Name,
		"animalIds":        schedule.AnimalIDs,
		"feedTypeId":       schedule.FeedTypeID,
		"templateId":       schedule.TemplateID,
		"times":            schedule.Times,
		"amountPerFeeding": schedule.AmountPerFeeding,
		"isActive":         schedule.IsActive,
		"notes":            schedule.Notes,
		"updatedAt":        time.Now(),
	}

	result, err := h.DB.Collection(database.CollFeedingSchedules).
		UpdateOne(context.Background(), bson.M{"_id": id, "userId": userID}, bson.M{"$set": update})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update feeding schedule")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Feeding schedule not found")
		return
	}

	respondMessage(c, "Feeding schedule updated successfully")
}

func (h *FeedingHandler) DeleteSchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.DB.Collection(database.CollFeedingSchedules).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete feeding schedule")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Feeding schedule not found")
		return
	}

	respondMessage(c, "Feeding schedule deleted successfully")
}
