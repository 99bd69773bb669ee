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

type VaccinationHandler struct {
	DB       *mongo.Database
	Notifier *notifier.Notifier
}

type CreateVaccinationRequest struct {
	AnimalID             string     `json:"animalId" binding:"required"`
	VaccineName          string     `json:"vaccineName" binding:"required"`
	ScheduledDate        *time.Time `json:"scheduledDate"`
	MeatWithdrawalPeriod int        `json:"meatWithdrawalPeriod" binding:"gte=0"`
	MilkWithdrawalPeriod int        `json:"milkWithdrawalPeriod" binding:"gte=0"`
	InventoryItemID      string     `json:"inventoryItemId"`
	QuantityUsed         float64    `json:"quantityUsed" binding:"gte=0"`
	Notes                string     `json:"notes"`
}

// CreateVaccination schedules a vaccination. The restriction window is only
// imposed once the vaccination is completed.
func (h *VaccinationHandler) CreateVaccination(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	animalID, err := primitive.ObjectIDFromHex(req.AnimalID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid animalId")
		return
	}
	if _, ok := loadOwnedAnimal(c, h.DB, userID, animalID); !ok {
		return
	}

	vaccination := models.Vaccination{
		UserID:               userID,
		AnimalID:             animalID,
		VaccineName:          req.VaccineName,
		Status:               models.VaccinationScheduled,
		ScheduledDate:        req.ScheduledDate,
		MeatWithdrawalPeriod: req.MeatWithdrawalPeriod,
		MilkWithdrawalPeriod: req.MilkWithdrawalPeriod,
		QuantityUsed:         req.QuantityUsed,
		Notes:                req.Notes,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	if req.InventoryItemID != "" {
		itemID, err := primitive.ObjectIDFromHex(req.InventoryItemID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid inventoryItemId")
			return
		}
		vaccination.InventoryItemID = &itemID
	}

	result, err := h.DB.Collection(database.CollVaccinations).InsertOne(context.Background(), vaccination)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create vaccination")
		return
	}
	vaccination.ID = result.InsertedID.(primitive.ObjectID)

	respondCreated(c, vaccination)
}

// GetVaccinations lists vaccinations, filterable by animal and status.
func (h *VaccinationHandler) GetVaccinations(c *gin.Context) {
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
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := h.DB.Collection(database.CollVaccinations).Find(context.Background(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query vaccinations")
		return
	}
	defer cursor.Close(context.Background())

	var vaccinations []models.Vaccination
	if err = cursor.All(context.Background(), &vaccinations); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode vaccinations")
		return
	}
	if vaccinations == nil {
		vaccinations = []models.Vaccination{}
	}

	respondList(c, vaccinations, len(vaccinations))
}

// GetVaccinationByID fetches one vaccination.
func (h *VaccinationHandler) GetVaccinationByID(c *gin.Context) {
	var vaccination models.Vaccination
	if !findOwnedByID(c, h.DB, database.CollVaccinations, &vaccination, "Vaccination") {
		return
	}
	respondOK(c, vaccination)
}

type CompleteVaccinationRequest struct {
	CompletedDate *time.Time `json:"completedDate"`
}

// CompleteVaccination marks a scheduled vaccination as done, draws down the
// linked vaccine stock and imposes the withdrawal restriction.
func (h *VaccinationHandler) CompleteVaccination(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CompleteVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	vaccinations := h.DB.Collection(database.CollVaccinations)
	var vaccination models.Vaccination
	err := vaccinations.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&vaccination)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Vaccination not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve vaccination")
		}
		return
	}
	if vaccination.Status == models.VaccinationCompleted {
		respondError(c, http.StatusBadRequest, "Vaccination is already completed")
		return
	}

	completedAt := time.Now()
	if req.CompletedDate != nil {
		completedAt = *req.CompletedDate
	}
	vaccination.Status = models.VaccinationCompleted
	vaccination.CompletedDate = &completedAt
	if period := vaccination.MaxWithdrawalPeriod(); period > 0 {
		end := restriction.WithdrawalEnd(completedAt, period)
		vaccination.WithdrawalEndDate = &end
	}
	vaccination.UpdatedAt = time.Now()

	if vaccination.InventoryItemID != nil && vaccination.QuantityUsed > 0 {
		_, err = consumeInventory(h.DB, h.Notifier, userID, *vaccination.InventoryItemID,
			vaccination.QuantityUsed, "vaccination:"+vaccination.VaccineName)
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

	_, err = vaccinations.ReplaceOne(context.Background(), bson.M{"_id": vaccination.ID}, vaccination)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update vaccination")
		return
	}

	animal, ok := loadOwnedAnimal(c, h.DB, userID, vaccination.AnimalID)
	if !ok {
		return
	}
	if restriction.FromVaccination(animal, &vaccination, time.Now()) {
		if err := saveRestriction(h.DB, animal); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to apply restriction")
			return
		}
	}

	// Any open reminder for this vaccination is now satisfied.
	_, err = h.DB.Collection(database.CollReminders).UpdateMany(context.Background(),
		bson.M{"userId": userID, "type": models.ReminderVaccination, "relatedId": vaccination.ID},
		bson.M{"$set": bson.M{"isDone": true}})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to close reminders")
		return
	}

	respondOK(c, vaccination)
}

type UpdateVaccinationRequest struct {
	VaccineName          *string    `json:"vaccineName"`
	ScheduledDate        *time.Time `json:"scheduledDate"`
	MeatWithdrawalPeriod *int       `json:"meatWithdrawalPeriod"`
	MilkWithdrawalPeriod *int       `json:"milkWithdrawalPeriod"`
	Status               *string    `json:"status"`
	Notes                *string    `json:"notes"`
}

// UpdateVaccination edits a vaccination. Withdrawal period changes on a
// completed vaccination move the animal's restriction window when this record
// is its source.
func (h *VaccinationHandler) UpdateVaccination(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	vaccinations := h.DB.Collection(database.CollVaccinations)
	var vaccination models.Vaccination
	err := vaccinations.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&vaccination)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Vaccination not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve vaccination")
		}
		return
	}

	oldEnd := vaccination.WithdrawalEndDate

	if req.VaccineName != nil {
		vaccination.VaccineName = *req.VaccineName
	}
	if req.ScheduledDate != nil {
		vaccination.ScheduledDate = req.ScheduledDate
	}
	if req.Notes != nil {
		vaccination.Notes = *req.Notes
	}
	if req.Status != nil {
		switch *req.Status {
		case models.VaccinationScheduled, models.VaccinationCancelled:
			vaccination.Status = *req.Status
		case models.VaccinationCompleted:
			respondError(c, http.StatusBadRequest, "Use the complete endpoint to finish a vaccination")
			return
		default:
			respondError(c, http.StatusBadRequest, "Invalid status")
			return
		}
	}
	if req.MeatWithdrawalPeriod != nil {
		if *req.MeatWithdrawalPeriod < 0 {
			respondError(c, http.StatusBadRequest, "meatWithdrawalPeriod must not be negative")
			return
		}
		vaccination.MeatWithdrawalPeriod = *req.MeatWithdrawalPeriod
	}
	if req.MilkWithdrawalPeriod != nil {
		if *req.MilkWithdrawalPeriod < 0 {
			respondError(c, http.StatusBadRequest, "milkWithdrawalPeriod must not be negative")
			return
		}
		vaccination.MilkWithdrawalPeriod = *req.MilkWithdrawalPeriod
	}

	period := 0
	var newEnd time.Time
	vaccination.WithdrawalEndDate = nil
	if vaccination.Status == models.VaccinationCompleted && vaccination.CompletedDate != nil {
		if period = vaccination.MaxWithdrawalPeriod(); period > 0 {
			newEnd = restriction.WithdrawalEnd(*vaccination.CompletedDate, period)
			vaccination.WithdrawalEndDate = &newEnd
		}
	}
	vaccination.UpdatedAt = time.Now()

	_, err = vaccinations.ReplaceOne(context.Background(), bson.M{"_id": vaccination.ID}, vaccination)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update vaccination")
		return
	}

	if oldEnd != nil || vaccination.WithdrawalEndDate != nil {
		animal, ok := loadOwnedAnimal(c, h.DB, userID, vaccination.AnimalID)
		if !ok {
			return
		}
		if restriction.Reconcile(animal, vaccination.ID, oldEnd, period, newEnd) {
			if err := saveRestriction(h.DB, animal); err != nil {
				respondError(c, http.StatusInternalServerError, "Failed to update restriction")
				return
			}
		}
	}

	respondOK(c, vaccination)
}

// DeleteVaccination removes a vaccination, releasing the restriction it
// imposed.
func (h *VaccinationHandler) DeleteVaccination(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	vaccinations := h.DB.Collection(database.CollVaccinations)
	var vaccination models.Vaccination
	err := vaccinations.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&vaccination)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Vaccination not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve vaccination")
		}
		return
	}

	if _, err = vaccinations.DeleteOne(context.Background(), bson.M{"_id": vaccination.ID}); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete vaccination")
		return
	}

	_, err = h.DB.Collection(database.CollReminders).
		DeleteMany(context.Background(), bson.M{"userId": userID, "relatedId": vaccination.ID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete linked reminders")
		return
	}

	if vaccination.WithdrawalEndDate != nil {
		animal, ok := loadOwnedAnimal(c, h.DB, userID, vaccination.AnimalID)
		if !ok {
			return
		}
		if restriction.Reconcile(animal, vaccination.ID, vaccination.WithdrawalEndDate, 0, time.Time{}) {
			if err := saveRestriction(h.DB, animal); err != nil {
				respondError(c, http.StatusInternalServerError, "Failed to release restriction")
				return
			}
		}
	}

	respondMessage(c, "Vaccination deleted successfully")
}
