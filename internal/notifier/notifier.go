// Package notifier is the fire-and-forget side-channel: notifications are
// persisted, pushed to the user's websocket stream when connected, and
// optionally forwarded to the mail webhook.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/models"
	"livestock-farm-api-server/internal/socket"
)

type Notifier struct {
	DB     *mongo.Database
	Hub    *socket.Hub
	Mail   *MailClient
	Logger *zap.Logger
}

func New(db *mongo.Database, hub *socket.Hub, mail *MailClient, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{DB: db, Hub: hub, Mail: mail, Logger: logger}
}

// Mailed reports whether notifications of this type are also forwarded to the
// mail webhook. Info notices stay in-app only.
func Mailed(notifType string) bool {
	switch notifType {
	case models.NotificationRestrictionEnded,
		models.NotificationLowStock,
		models.NotificationOutOfStock,
		models.NotificationVaccinationDue,
		models.NotificationBirthDue:
		return true
	}
	return false
}

// Notify persists the notification, pushes it to the user's stream and, for
// mailed types, forwards it to the mail webhook. Delivery failures are logged,
// not propagated; only the insert can fail.
func (n *Notifier) Notify(ctx context.Context, notif models.Notification) error {
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	result, err := n.DB.Collection(database.CollNotifications).InsertOne(ctx, notif)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		notif.ID = oid
	}

	if n.Hub != nil {
		payload, err := json.Marshal(notif)
		if err == nil {
			if err := n.Hub.Send(notif.UserID.Hex(), payload); err != nil {
				n.Logger.Warn("failed to push notification", zap.Error(err))
			}
		}
	}

	if n.Mail != nil && Mailed(notif.Type) {
		go n.forwardMail(notif)
	}
	return nil
}

// forwardMail looks up the recipient and posts the notification to the mail
// webhook. Runs detached from the request; errors only get logged.
func (n *Notifier) forwardMail(notif models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var user models.User
	err := n.DB.Collection(database.CollUsers).
		FindOne(ctx, bson.M{"_id": notif.UserID}).Decode(&user)
	if err != nil {
		n.Logger.Warn("mail recipient lookup failed", zap.Error(err))
		return
	}
	if user.Email == "" {
		return
	}

	msg := MailMessage{
		Email:    user.Email,
		Subject:  notif.Title,
		Template: notif.Type,
		Vars:     map[string]interface{}{"message": notif.Message},
	}
	if err := n.Mail.Send(ctx, msg); err != nil {
		n.Logger.Warn("mail forward failed", zap.String("type", notif.Type), zap.Error(err))
	}
}
