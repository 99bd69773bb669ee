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

type CategoryHandler struct {
	DB *mongo.Database
}

type CategoryRequest struct {
	Name            string `json:"name" binding:"required"`
	PregnancyPeriod int    `json:"pregnancyPeriod" binding:"gte=0"`
	Description     string `json:"description"`
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	category := models.AnimalCategory{
		UserID:          userID,
		Name:            req.Name,
		PregnancyPeriod: req.PregnancyPeriod,
		Description:     req.Description,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	result, err := h.DB.Collection(database.CollAnimalCategories).InsertOne(context.Background(), category)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create category")
		return
	}
	category.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, category)
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cursor, err := h.DB.Collection(database.CollAnimalCategories).
		Find(context.Background(), bson.M{"userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query categories")
		return
	}
	defer cursor.Close(context.Background())

	var categories []models.AnimalCategory
	if err = cursor.All(context.Background(), &categories); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode categories")
		return
	}
	if categories == nil {
		categories = []models.AnimalCategory{}
	}

	respondList(c, categories, len(categories))
}

// GetCategoryByID fetches one category.
func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	var category models.AnimalCategory
	if !findOwnedByID(c, h.DB, database.CollAnimalCategories, &category, "Category") {
		return
	}
	respondOK(c, category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	update := bson.M{
		"name":            req.Name,
		"pregnancyPeriod": req.PregnancyPeriod,
		"description":     req.Description,
		"updatedAt":       time.Now(),
	}

	result, err := h.DB.Collection(database.CollAnimalCategories).
		UpdateOne(context.Background(), bson.M{"_id": id, "userId": userID}, bson.M{"$set": update})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update category")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Category not found")
		return
	}

	respondMessage(c, "Category updated successfully")
}

// DeleteCategory refuses to delete a category that animals still reference.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	count, err := h.DB.Collection(database.CollAnimals).
		CountDocuments(context.Background(), bson.M{"userId": userID, "categoryId": id})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to check category usage")
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "Category is still used by animals")
		return
	}

	result, err := h.DB.Collection(database.CollAnimalCategories).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Category not found")
		return
	}

	respondMessage(c, "Category deleted successfully")
}
