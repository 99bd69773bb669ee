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
	"livestock-farm-api-server/internal/reports"
)

type ReportHandler struct {
	DB       *mongo.Database
	Registry *reports.Registry
}

// GetReport builds the requested report type for an optional date range.
func (h *ReportHandler) GetReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	builder, err := h.Registry.Get(c.Param("type"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var params reports.Params
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid from date")
			return
		}
		params.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid to date")
			return
		}
		params.To = &to
	}

	data, err := builder.Build(context.Background(), h.DB, userID, params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to build report")
		return
	}

	respondOK(c, gin.H{"type": builder.Type(), "generatedAt": time.Now(), "report": data})
}

type SavedReportRequest struct {
	Name       string                 `json:"name" binding:"required"`
	ReportType string                 `json:"reportType" binding:"required"`
	Parameters map[string]interface{} `json:"parameters"`
}

// CreateSavedReport stores a named report configuration for reuse.
func (h *ReportHandler) CreateSavedReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SavedReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.Registry.Get(req.ReportType); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	saved := models.SavedReport{
		UserID:     userID,
		Name:       req.Name,
		ReportType: req.ReportType,
		Parameters: req.Parameters,
		CreatedAt:  time.Now(),
	}

	result, err := h.DB.Collection(database.CollSavedReports).InsertOne(context.Background(), saved)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to save report")
		return
	}
	saved.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, saved)
}

func (h *ReportHandler) GetSavedReports(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cursor, err := h.DB.Collection(database.CollSavedReports).
		Find(context.Background(), bson.M{"userId": userID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query saved reports")
		return
	}
	defer cursor.Close(context.Background())

	var saved []models.SavedReport
	if err = cursor.All(context.Background(), &saved); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode saved reports")
		return
	}
	if saved == nil {
		saved = []models.SavedReport{}
	}

	respondList(c, saved, len(saved))
}

func (h *ReportHandler) DeleteSavedReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.DB.Collection(database.CollSavedReports).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete saved report")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Saved report not found")
		return
	}

	respondMessage(c, "Saved report deleted successfully")
}
