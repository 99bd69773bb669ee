package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/feedcalc"
	"livestock-farm-api-server/internal/models"
)

type FeedTemplateHandler struct {
	DB *mongo.Database
}

type FeedTemplateRequest struct {
	Name              string                   `json:"name" binding:"required"`
	CalculationRules  []models.CalculationRule `json:"calculationRules" binding:"required,min=1"`
	AdjustmentFactors models.AdjustmentFactors `json:"adjustmentFactors"`
	Description       string                   `json:"description"`
}

// validateRules checks every rule's method and its formula expression before
// the template is stored, so calculation never fails on a bad template later.
func validateRules(rules []models.CalculationRule) string {
	for i, rule := range rules {
		switch rule.Method {
		case models.FeedMethodPercentageOfWeight, models.FeedMethodFixedAmount, models.FeedMethodPerKgBodyweight:
		case models.FeedMethodFormula:
			if _, err := feedcalc.EvaluateFormula(rule.Parameters.Expression, 100); err != nil {
				return fmt.Sprintf("rule %d: %v", i, err)
			}
		default:
			return "unknown calculation method " + rule.Method
		}
	}
	return ""
}

func (h *FeedTemplateHandler) CreateTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req FeedTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateRules(req.CalculationRules); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	tpl := models.FeedCalculationTemplate{
		UserID:            userID,
		Name:              req.Name,
		CalculationRules:  req.CalculationRules,
		AdjustmentFactors: req.AdjustmentFactors,
		Description:       req.Description,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	result, err := h.DB.Collection(database.CollFeedTemplates).InsertOne(context.Background(), tpl)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create feed template")
		return
	}
	tpl.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, tpl)
}

func (h *FeedTemplateHandler) GetTemplates(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cursor, err := h.DB.Collection(database.CollFeedTemplates).
		Find(context.Background(), bson.M{"userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query feed templates")
		return
	}
	defer cursor.Close(context.Background())

	var templates []models.FeedCalculationTemplate
	if err = cursor.All(context.Background(), &templates); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode feed templates")
		return
	}
	if templates == nil {
		templates = []models.FeedCalculationTemplate{}
	}

	respondList(c, templates, len(templates))
}

// GetTemplateByID fetches one feed template.
func (h *FeedTemplateHandler) GetTemplateByID(c *gin.Context) {
	var tpl models.FeedCalculationTemplate
	if !findOwnedByID(c, h.DB, database.CollFeedTemplates, &tpl, "Feed template") {
		return
	}
	respondOK(c, tpl)
}

func (h *FeedTemplateHandler) UpdateTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req FeedTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateRules(req.CalculationRules); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	update := bson.M{
		"name":              req.Name,
		"calculationRules":  req.CalculationRules,
		"adjustmentFactors": req.AdjustmentFactors,
		"description":       req.Description,
		"updatedAt":         time.Now(),
	}

	result, err := h.DB.Collection(database.CollFeedTemplates).
		UpdateOne(context.Background(), bson.M{"_id": id, "userId": userID}, bson.M{"$set": update})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update feed template")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Feed template not found")
		return
	}

	respondMessage(c, "Feed template updated successfully")
}

func (h *FeedTemplateHandler) DeleteTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	count, err := h.DB.Collection(database.CollFeedingSchedules).
		CountDocuments(context.Background(), bson.M{"userId": userID, "templateId": id})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to check template usage")
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "Template is still used by feeding schedules")
		return
	}

	result, err := h.DB.Collection(database.CollFeedTemplates).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete feed template")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Feed template not found")
		return
	}

	respondMessage(c, "Feed template deleted successfully")
}

type CalculateFeedRequest struct {
	AnimalID   string              `json:"animalId"`
	Weight     float64             `json:"weight" binding:"gte=0"`
	Conditions feedcalc.Conditions `json:"conditions"`
}

// CalculateFeed runs the template against a body weight. The weight comes
// either from the request or from the referenced animal's latest entry.
func (h *FeedTemplateHandler) CalculateFeed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CalculateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var tpl models.FeedCalculationTemplate
	err := h.DB.Collection(database.CollFeedTemplates).
		FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&tpl)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Feed template not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve feed template")
		}
		return
	}

	weight := req.Weight
	if weight == 0 && req.AnimalID != "" {
		animalID, err := primitive.ObjectIDFromHex(req.AnimalID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid animalId")
			return
		}
		animal, ok := loadOwnedAnimal(c, h.DB, userID, animalID)
		if !ok {
			return
		}
		weight = animal.CurrentWeight()
	}
	if weight <= 0 {
		respondError(c, http.StatusBadRequest, "A positive weight or an animal with a recorded weight is required")
		return
	}

	result, err := feedcalc.Calculate(&tpl, weight, req.Conditions)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, result)
}
