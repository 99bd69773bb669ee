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

type BreedHandler struct {
	DB *mongo.Database
}

type BreedRequest struct {
	Name        string `json:"name" binding:"required"`
	CategoryID  string `json:"categoryId"`
	Description string `json:"description"`
}

func (h *BreedHandler) CreateBreed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req BreedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	categoryID, err := parseOptionalID(req.CategoryID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid categoryId")
		return
	}

	breed := models.AnimalBreed{
		UserID:      userID,
		Name:        req.Name,
		CategoryID:  categoryID,
		Description: req.Description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := h.DB.Collection(database.CollAnimalBreeds).InsertOne(context.Background(), breed)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create breed")
		return
	}
	breed.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, breed)
}

func (h *BreedHandler) GetBreeds(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if category := c.Query("categoryId"); category != "" {
		id, err := primitive.ObjectIDFromHex(category)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		filter["categoryId"] = id
	}

	cursor, err := h.DB.Collection(database.CollAnimalBreeds).Find(context.Background(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query breeds")
		return
	}
	defer cursor.Close(context.Background())

	var breeds []models.AnimalBreed
	if err = cursor.All(context.Background(), &breeds); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode breeds")
		return
	}
	if breeds == nil {
		breeds = []models.AnimalBreed{}
	}

	respondList(c, breeds, len(breeds))
}

// GetBreedByID fetches one breed.
func (h *BreedHandler) GetBreedByID(c *gin.Context) {
	var breed models.AnimalBreed
	if !findOwnedByID(c, h.DB, database.CollAnimalBreeds, &breed, "Breed") {
		return
	}
	respondOK(c, breed)
}

func (h *BreedHandler) UpdateBreed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req BreedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	update := bson.M{
		"name":        req.Name,
		"description": req.Description,
		"updatedAt":   time.Now(),
	}
	if req.CategoryID != "" {
		categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		update["categoryId"] = categoryID
	}

	result, err := h.DB.Collection(database.CollAnimalBreeds).
		UpdateOne(context.Background(), bson.M{"_id": id, "userId": userID}, bson.M{"$set": update})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update breed")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Breed not found")
		return
	}

	respondMessage(c, "Breed updated successfully")
}

// DeleteBreed refuses to delete a breed that animals still reference.
func (h *BreedHandler) DeleteBreed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	count, err := h.DB.Collection(database.CollAnimals).
		CountDocuments(context.Background(), bson.M{"userId": userID, "breedId": id})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to check breed usage")
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "Breed is still used by animals")
		return
	}

	result, err := h.DB.Collection(database.CollAnimalBreeds).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete breed")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Breed not found")
		return
	}

	respondMessage(c, "Breed deleted successfully")
}
