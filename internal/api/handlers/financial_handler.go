package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/models"
)

type FinancialHandler struct {
	DB *mongo.Database
}

type FinancialRecordRequest struct {
	Type        string    `json:"type" binding:"required,oneof=income expense"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Date        time.Time `json:"date" binding:"required"`
	Description string    `json:"description"`
}

// CreateRecord books a manual income or expense entry.
func (h *FinancialHandler) CreateRecord(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req FinancialRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	record := models.FinancialRecord{
		UserID:      userID,
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := h.DB.Collection(database.CollFinancialRecords).InsertOne(context.Background(), record)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create financial record")
		return
	}
	record.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, record)
}

// GetRecords lists financial records, filterable by type, category and date
// range, most recent first.
func (h *FinancialHandler) GetRecords(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if recordType := c.Query("type"); recordType != "" {
		filter["type"] = recordType
	}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
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

	cursor, err := h.DB.Collection(database.CollFinancialRecords).
		Find(context.Background(), filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query financial records")
		return
	}
	defer cursor.Close(context.Background())

	var records []models.FinancialRecord
	if err = cursor.All(context.Background(), &records); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode financial records")
		return
	}
	if records == nil {
		records = []models.FinancialRecord{}
	}

	respondList(c, records, len(records))
}

// GetRecordByID fetches one financial record.
func (h *FinancialHandler) GetRecordByID(c *gin.Context) {
	var record models.FinancialRecord
	if !findOwnedByID(c, h.DB, database.CollFinancialRecords, &record, "Financial record") {
		return
	}
	respondOK(c, record)
}

type UpdateFinancialRecordRequest struct {
	Category    *string    `json:"category"`
	Amount      *float64   `json:"amount"`
	Date        *time.Time `json:"date"`
	Description *string    `json:"description"`
}

// UpdateRecord edits a manual entry. Records linked to another document move
// with that document and cannot be edited directly.
func (h *FinancialHandler) UpdateRecord(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateFinancialRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	records := h.DB.Collection(database.CollFinancialRecords)
	var record models.FinancialRecord
	err := records.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Financial record not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve financial record")
		}
		return
	}
	if record.RelatedID != nil {
		respondError(c, http.StatusBadRequest, "This record is managed by its source document")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Category != nil {
		update["category"] = *req.Category
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			respondError(c, http.StatusBadRequest, "amount must be greater than zero")
			return
		}
		update["amount"] = *req.Amount
	}
	if req.Date != nil {
		update["date"] = *req.Date
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}

	if _, err = records.UpdateOne(context.Background(), bson.M{"_id": record.ID}, bson.M{"$set": update}); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update financial record")
		return
	}

	respondMessage(c, "Financial record updated successfully")
}

// DeleteRecord removes a manual entry.
func (h *FinancialHandler) DeleteRecord(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	records := h.DB.Collection(database.CollFinancialRecords)
	var record models.FinancialRecord
	err := records.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Financial record not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve financial record")
		}
		return
	}
	if record.RelatedID != nil {
		respondError(c, http.StatusBadRequest, "This record is managed by its source document")
		return
	}

	if _, err = records.DeleteOne(context.Background(), bson.M{"_id": record.ID}); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete financial record")
		return
	}

	respondMessage(c, "Financial record deleted successfully")
}

// GetSummary aggregates income and expense totals for an optional date range.
func (h *FinancialHandler) GetSummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	match := bson.M{"userId": userID}
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
		match["date"] = dateRange
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$type",
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := h.DB.Collection(database.CollFinancialRecords).Aggregate(context.Background(), pipeline)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to aggregate financial records")
		return
	}
	defer cursor.Close(context.Background())

	var groups []struct {
		Type  string  `bson:"_id"`
		Total float64 `bson:"total"`
		Count int     `bson:"count"`
	}
	if err = cursor.All(context.Background(), &groups); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode aggregation")
		return
	}

	summary := gin.H{"totalIncome": 0.0, "totalExpense": 0.0, "balance": 0.0}
	var income, expense float64
	for _, g := range groups {
		switch g.Type {
		case models.FinancialIncome:
			income = g.Total
		case models.FinancialExpense:
			expense = g.Total
		}
	}
	summary["totalIncome"] = income
	summary["totalExpense"] = expense
	summary["balance"] = income - expense

	respondOK(c, summary)
}
