package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livestock-farm-api-server/internal/auth"
	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/models"
	"livestock-farm-api-server/internal/socket"
)

type NotificationHandler struct {
	DB     *mongo.Database
	Hub    *socket.Hub
	Secret []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Stream upgrades to a websocket that receives the user's notifications as
// they happen. Browsers cannot set headers on websocket requests, so the
// token is passed as a query parameter.
func (h *NotificationHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondError(c, http.StatusUnauthorized, "token query parameter is required")
		return
	}
	claims, err := auth.ParseJWT(h.Secret, token)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.Hub.Register(claims.UserID, conn)
	defer func() {
		h.Hub.Unregister(claims.UserID)
		conn.Close()
	}()

	// Hold the connection open; inbound frames are drained and discarded.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// GetNotifications lists notifications, newest first, filterable by read
// state.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"userId": userID}
	if unread := c.Query("unread"); unread == "true" {
		filter["isRead"] = false
	}

	cursor, err := h.DB.Collection(database.CollNotifications).
		Find(context.Background(), filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to query notifications")
		return
	}
	defer cursor.Close(context.Background())

	var notifications []models.Notification
	if err = cursor.All(context.Background(), &notifications); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to decode notifications")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	respondList(c, notifications, len(notifications))
}

// MarkRead marks one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.DB.Collection(database.CollNotifications).
		UpdateOne(context.Background(), bson.M{"_id": id, "userId": userID},
			bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Notification not found")
		return
	}

	respondMessage(c, "Notification marked as read")
}

// MarkAllRead marks every unread notification as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	_, err := h.DB.Collection(database.CollNotifications).
		UpdateMany(context.Background(), bson.M{"userId": userID, "isRead": false},
			bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update notifications")
		return
	}

	respondMessage(c, "All notifications marked as read")
}

// DeleteNotification removes one notification.
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.DB.Collection(database.CollNotifications).
		DeleteOne(context.Background(), bson.M{"_id": id, "userId": userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete notification")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, http.StatusNotFound, "Notification not found")
		return
	}

	respondMessage(c, "Notification deleted successfully")
}
