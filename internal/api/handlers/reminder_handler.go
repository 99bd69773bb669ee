package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/models"
)

type ReminderHandler struct {
	DB *mongo.Database
}

// GetReminders lists reminders due soonest first, filterable by type and done
// state.
func (h *ReminderHandler) GetReminders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if reminderType := c.Query("type"); reminderType != "" {
		filter["type"] = reminderType
	}
	if pending := c.Query("pending"); pending == "true" {
		filter["isDone"] = false
	}

	cursor, err := h.DB.Collection(database.CollReminders).
		Find(context.Background(), filter, options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}}))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query reminders")
		return
	}
	defer cursor.Close(context.Background())

	var reminders []models.Reminder
	if err = cursor.All(context.Background(), &reminders); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode reminders")
		return
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}

	respondList(c, reminders, len(reminders))
}

// MarkDone closes a reminder.
func (h *ReminderHandler) MarkDone(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.DB.Collection(database.CollReminders).
		UpdateOne(context.Background(), bson.M{"_id": id, "userId": userID},
			bson.M{"$set": bson.M{"isDone": true}})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update reminder")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Reminder not found")
		return
	}

	respondMessage(c, "Reminder marked as done")
}

// DeleteReminder removes a reminder.
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.DB.Collection(database.CollReminders).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete reminder")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Reminder not found")
		return
	}

	respondMessage(c, "Reminder deleted successfully")
}
