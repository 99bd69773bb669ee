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
	"livestock-farm-api-server/internal/restriction"
)

type TransactionHandler struct {
	DB *mongo.Database
}

type CreateTransactionRequest struct {
	Type               string    `json:"type" binding:"required,oneof=sale purchase slaughter"`
	AnimalID           string    `json:"animalId"`
	Date               time.Time `json:"date" binding:"required"`
	Amount             float64   `json:"amount" binding:"gte=0"`
	Counterparty       string    `json:"counterparty"`
	RestrictionChecked bool      `json:"restrictionChecked"`
	Notes              string    `json:"notes"`
}

// statusAfter maps a transaction type to the animal status it leaves behind.
func statusAfter(txType string) string {
	switch txType {
	case models.TransactionSale:
		return models.AnimalStatusSold
	case models.TransactionSlaughter:
		return models.AnimalStatusSlaughtered
	default:
		return ""
	}
}

// CreateTransaction records a sale, purchase or slaughter. Sale and slaughter
// of a restricted animal are rejected unless the caller explicitly confirms
// the restriction was checked.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var animal *models.Animal
	var animalID *primitive.ObjectID
	if req.AnimalID != "" {
		id, err := primitive.ObjectIDFromHex(req.AnimalID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid animalId")
			return
		}
		animal, ok = loadOwnedAnimal(c, h.DB, userID, id)
		if !ok {
			return
		}
		animalID = &animal.ID
	}

	if req.Type == models.TransactionSale || req.Type == models.TransactionSlaughter {
		if animal == nil {
			respondError(c, http.StatusBadRequest, "animalId is required for sale and slaughter")
			return
		}
		if animal.Status != models.AnimalStatusAlive {
			respondError(c, http.StatusBadRequest, "Animal is not alive")
			return
		}
		if restriction.CheckStatus(animal, time.Now()) {
			if err := saveRestriction(h.DB, animal); err != nil {
				respondError(c, http.StatusInternalServerError, "Failed to update restriction state")
				return
			}
		}
		if restriction.BlocksSale(animal, time.Now()) && !req.RestrictionChecked {
			respondError(c, http.StatusBadRequest,
				"Animal is under a withdrawal restriction; set restrictionChecked to proceed")
			return
		}
	}

	tx := models.Transaction{
		UserID:             userID,
		Type:               req.Type,
		AnimalID:           animalID,
		Date:               req.Date,
		Amount:             req.Amount,
		Counterparty:       req.Counterparty,
		RestrictionChecked: req.RestrictionChecked,
		Notes:              req.Notes,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	result, err := h.DB.Collection(database.CollTransactions).InsertOne(context.Background(), tx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create transaction")
		return
	}
	tx.ID = result.InsertedID.(primitive.ObjectID)

	if status := statusAfter(req.Type); status != "" && animal != nil {
		_, err = h.DB.Collection(database.CollAnimals).UpdateOne(context.Background(),
			bson.M{"_id": animal.ID},
			bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update animal status")
			return
		}
	}

	if req.Amount > 0 {
		recordType := models.FinancialIncome
		if req.Type == models.TransactionPurchase {
			recordType = models.FinancialExpense
		}
		id := tx.ID
		record := models.FinancialRecord{
			UserID:      userID,
			Type:        recordType,
			Category:    "livestock",
			Amount:      req.Amount,
			Date:        req.Date,
			Description: "Animal " + req.Type,
			RelatedID:   &id,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if _, err := h.DB.Collection(database.CollFinancialRecords).InsertOne(context.Background(), record); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to book financial record")
			return
		}
	}

	respondCreated(c, tx)
}

// GetTransactions lists transactions, filterable by type and animal.
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if txType := c.Query("type"); txType != "" {
		filter["type"] = txType
	}
	if raw := c.Query("animalId"); raw != "" {
		animalID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid animalId")
			return
		}
		filter["animalId"] = animalID
	}

	cursor, err := h.DB.Collection(database.CollTransactions).Find(context.Background(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query transactions")
		return
	}
	defer cursor.Close(context.Background())

	var transactions []models.Transaction
	if err = cursor.All(context.Background(), &transactions); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode transactions")
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	respondList(c, transactions, len(transactions))
}

// GetTransactionByID fetches one transaction.
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	var tx models.Transaction
	if !findOwnedByID(c, h.DB, database.CollTransactions, &tx, "Transaction") {
		return
	}
	respondOK(c, tx)
}

type UpdateTransactionRequest struct {
	Date         *time.Time `json:"date"`
	Amount       *float64   `json:"amount"`
	Counterparty *string    `json:"counterparty"`
	Notes        *string    `json:"notes"`
}

// UpdateTransaction edits a transaction's bookkeeping fields. An amount
// change is mirrored onto the linked financial record.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	linked := bson.M{"updatedAt": time.Now()}
	if req.Date != nil {
		update["date"] = *req.Date
		linked["date"] = *req.Date
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			respondError(c, http.StatusBadRequest, "amount must not be negative")
			return
		}
		update["amount"] = *req.Amount
		linked["amount"] = *req.Amount
	}
	if req.Counterparty != nil {
		update["counterparty"] = *req.Counterparty
	}
	if req.Notes != nil {
		update["notes"] = *req.Notes
	}

	result, err := h.DB.Collection(database.CollTransactions).
		UpdateOne(context.Background(), bson.M{"_id": id, "userId": userID}, bson.M{"$set": update})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update transaction")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Transaction not found")
		return
	}

	if len(linked) > 1 {
		_, err = h.DB.Collection(database.CollFinancialRecords).
			UpdateMany(context.Background(), bson.M{"userId": userID, "relatedId": id}, bson.M{"$set": linked})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update linked financial record")
			return
		}
	}

	respondMessage(c, "Transaction updated successfully")
}

// DeleteTransaction removes a transaction together with its linked financial
// record. Deleting a sale or slaughter puts the animal back to alive.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	transactions := h.DB.Collection(database.CollTransactions)
	var tx models.Transaction
	err := transactions.FindOne(context.Background(), bson.M{"_id": id, "userId": userID}).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, "Transaction not found")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve transaction")
		}
		return
	}

	if _, err = transactions.DeleteOne(context.Background(), bson.M{"_id": tx.ID}); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	_, err = h.DB.Collection(database.CollFinancialRecords).
		DeleteMany(context.Background(), bson.M{"userId": userID, "relatedId": tx.ID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete linked financial record")
		return
	}

	if status := statusAfter(tx.Type); status != "" && tx.AnimalID != nil {
		_, err = h.DB.Collection(database.CollAnimals).UpdateOne(context.Background(),
			bson.M{"_id": *tx.AnimalID, "userId": userID, "status": status},
			bson.M{"$set": bson.M{"status": models.AnimalStatusAlive, "updatedAt": time.Now()}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to restore animal status")
			return
		}
	}

	respondMessage(c, "Transaction deleted successfully")
}
