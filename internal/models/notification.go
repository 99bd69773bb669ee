package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationRestrictionEnded = "restriction_ended"
	NotificationLowStock         = "low_stock"
	NotificationOutOfStock       = "out_of_stock"
	NotificationVaccinationDue   = "vaccination_due"
	NotificationBirthDue         = "birth_due"
	NotificationInfo             = "info"
)

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"userId" json:"userId"`
	Type      string              `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message,omitempty" json:"message,omitempty"`
	RelatedID *primitive.ObjectID `bson:"relatedId,omitempty" json:"relatedId,omitempty"`
	IsRead    bool                `bson:"isRead" json:"isRead"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

// Reminder types.
const (
	ReminderVaccination = "vaccination"
	ReminderBreeding    = "breeding"
)

type Reminder struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"userId" json:"userId"`
	Type      string              `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	DueDate   time.Time           `bson:"dueDate" json:"dueDate"`
	RelatedID *primitive.ObjectID `bson:"relatedId,omitempty" json:"relatedId,omitempty"`
	IsDone    bool                `bson:"isDone" json:"isDone"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
