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
	"livestock-farm-api-server/internal/models"
)

type BirthHandler struct {
	DB *mongo.Database
}

type CreateBirthRequest struct {
	MotherID             string    `json:"motherId" binding:"required"`
	FatherID             string    `json:"fatherId"`
	BirthDate            time.Time `json:"birthDate" binding:"required"`
	TotalOffspringCount  int       `json:"totalOffspringCount" binding:"required,gt=0"`
	LivingOffspringCount int       `json:"livingOffspringCount" binding:"gte=0"`
	Notes                string    `json:"notes"`
}

// CreateBirth records a birth that was not tracked through a breeding event.
func (h *BirthHandler) CreateBirth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateBirthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.LivingOffspringCount > req.TotalOffspringCount {
		respondError(c, http.StatusBadRequest, "livingOffspringCount cannot exceed totalOffspringCount")
		return
	}

	motherID, err := primitive.ObjectIDFromHex(req.MotherID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid motherId")
		return
	}
	mother, ok := loadOwnedAnimal(c, h.DB, userID, motherID)
	if !ok {
		return
	}
	if mother.Gender != "female" {
		respondError(c, http.StatusBadRequest, "motherId must reference a female animal")
		return
	}

	fatherID, err := parseOptionalID(req.FatherID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid fatherId")
		return
	}
	if fatherID != nil {
		if _, ok := loadOwnedAnimal(c, h.DB, userID, *fatherID); !ok {
			return
		}
	}

	birth := models.Birth{
		UserID:               userID,
		MotherID:             motherID,
		FatherID:             fatherID,
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

	respondCreated(c, birth)
}

// GetBirths lists births, filterable by mother.
func (h *BirthHandler) GetBirths(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if raw := c.Query("motherId"); raw != "" {
		motherID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid motherId")
			return
		}
		filter["motherId"] = motherID
	}

	cursor, err := h.DB.Collection(database.CollBirths).Find(context.Background(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query births")
		return
	}
	defer cursor.Close(context.Background())

	var births []models.Birth
	if err = cursor.All(context.Background(), &births); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode births")
		return
	}
	if births == nil {
		births = []models.Birth{}
	}

	respondList(c, births, len(births))
}

// GetBirthByID fetches one birth record.
func (h *BirthHandler) GetBirthByID(c *gin.Context) {
	var birth models.Birth
	if !findOwnedByID(c, h.DB, database.CollBirths, &birth, "Birth") {
		return
	}
	respondOK(c, birth)
}

type OffspringEntry struct {
	IdentificationNumber string  `json:"identificationNumber" binding:"required"`
	Name                 string  `json:"name"`
	Gender               string  `json:"gender" binding:"required,oneof=male female"`
	BreedID              string  `json:"breedId"`
	CategoryID           string  `json:"categoryId"`
	Weight               float64 `json:"weight" binding:"gte=0"`
}

type RegisterOffspringRequest struct {
	Offspring []OffspringEntry `json:"offspring" binding:"required"`
}

// RegisterOffspring creates the animal records for a birth. Exactly
// LivingOffspringCount entries must be submitted, and the birth can only be
// registered once.
func (h *BirthHandler) RegisterOffspring(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RegisterOffspringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	births := h.DB.Collection(database.CollBirths)
	var birth models.Birth
	err := births.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&birth)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Birth not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve birth")
		}
		return
	}
	if birth.OffspringRegistered {
		respondError(c, http.StatusBadRequest, "Offspring are already registered for this birth")
		return
	}
	if len(req.Offspring) != birth.LivingOffspringCount {
		respondError(c, http.StatusBadRequest,
			fmt.Sprintf("expected %d offspring entries, got %d", birth.LivingOffspringCount, len(req.Offspring)))
		return
	}

	animals := h.DB.Collection(database.CollAnimals)
	seen := make(map[string]bool, len(req.Offspring))
	for _, entry := range req.Offspring {
		if seen[entry.IdentificationNumber] {
			respondError(c, http.StatusBadRequest, "Duplicate identification number: "+entry.IdentificationNumber)
			return
		}
		seen[entry.IdentificationNumber] = true

		count, err := animals.CountDocuments(context.Background(),
			bson.M{"userId": userID, "identificationNumber": entry.IdentificationNumber})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Database error checking identification numbers")
			return
		}
		if count > 0 {
			respondError(c, http.StatusBadRequest, "An animal with identification number "+entry.IdentificationNumber+" already exists")
			return
		}
	}

	motherID := birth.MotherID
	birthDate := birth.BirthDate
	created := make([]models.Animal, 0, len(req.Offspring))
	for _, entry := range req.Offspring {
		breedID, err := parseOptionalID(entry.BreedID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid breedId")
			return
		}
		categoryID, err := parseOptionalID(entry.CategoryID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid categoryId")
			return
		}

		animal := models.Animal{
			UserID:               userID,
			IdentificationNumber: entry.IdentificationNumber,
			Name:                 entry.Name,
			CategoryID:           categoryID,
			BreedID:              breedID,
			Gender:               entry.Gender,
			BirthDate:            &birthDate,
			AcquisitionDate:      &birthDate,
			AcquisitionMethod:    models.AcquisitionBirth,
			MotherID:             &motherID,
			FatherID:             birth.FatherID,
			Status:               models.AnimalStatusAlive,
			CreatedAt:            time.Now(),
			UpdatedAt:            time.Now(),
		}
		if entry.Weight > 0 {
			animal.WeightHistory = []models.WeightEntry{{Weight: entry.Weight, Date: birthDate}}
		}

		result, err := animals.InsertOne(context.Background(), animal)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to register offspring")
			return
		}
		animal.ID = result.InsertedID.(primitive.ObjectID)
		created = append(created, animal)
	}

	_, err = births.UpdateOne(context.Background(), bson.M{"_id": birth.ID},
		bson.M{"$set": bson.M{"offspringRegistered": true, "updatedAt": time.Now()}})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to mark birth as registered")
		return
	}

	respondCreated(c, created)
}

type UpdateBirthRequest struct {
	BirthDate            *time.Time `json:"birthDate"`
	TotalOffspringCount  *int       `json:"totalOffspringCount"`
	LivingOffspringCount *int       `json:"livingOffspringCount"`
	Notes                *string    `json:"notes"`
}

// UpdateBirth edits a birth record. Offspring counts are frozen once
// registration has happened.
func (h *BirthHandler) UpdateBirth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateBirthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	births := h.DB.Collection(database.CollBirths)
	var birth models.Birth
	err := births.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&birth)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Birth not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve birth")
		}
		return
	}

	if birth.OffspringRegistered && (req.TotalOffspringCount != nil || req.LivingOffspringCount != nil) {
		respondError(c, http.StatusBadRequest, "Offspring counts cannot change after registration")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.BirthDate != nil {
		update["birthDate"] = *req.BirthDate
	}
	if req.Notes != nil {
		update["notes"] = *req.Notes
	}
	total := birth.TotalOffspringCount
	living := birth.LivingOffspringCount
	if req.TotalOffspringCount != nil {
		total = *req.TotalOffspringCount
	}
	if req.LivingOffspringCount != nil {
		living = *req.LivingOffspringCount
	}
	if total <= 0 || living < 0 || living > total {
		respondError(c, http.StatusBadRequest, "Invalid offspring counts")
		return
	}
	update["totalOffspringCount"] = total
	update["livingOffspringCount"] = living

	if _, err = births.UpdateOne(context.Background(), bson.M{"_id": birth.ID}, bson.M{"$set": update}); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update birth")
		return
	}

	respondMessage(c, "Birth updated successfully")
}

// DeleteBirth removes a birth that has no registered offspring.
func (h *BirthHandler) DeleteBirth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	births := h.DB.Collection(database.CollBirths)
	var birth models.Birth
	err := births.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&birth)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Birth not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve birth")
		}
		return
	}
	if birth.OffspringRegistered {
		respondError(c, http.StatusBadRequest, "Births with registered offspring cannot be deleted")
		return
	}

	if _, err = births.DeleteOne(context.Background(), bson.M{"_id": birth.ID}); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete birth")
		return
	}

	respondMessage(c, "Birth deleted successfully")
}
