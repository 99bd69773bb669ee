package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	PasswordHash string             `bson:"password" json:"-"`
	FarmName     string             `bson:"farmName,omitempty" json:"farmName,omitempty"`
	ProfileImage string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	Role         string             `bson:"role" json:"role"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Backup describes one archived snapshot of a user's collections.
type Backup struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	FileName         string             `bson:"fileName" json:"fileName"`
	StorageURL       string             `bson:"storageUrl,omitempty" json:"storageUrl,omitempty"`
	SizeBytes        int64              `bson:"sizeBytes" json:"sizeBytes"`
	CollectionCounts map[string]int     `bson:"collectionCounts,omitempty" json:"collectionCounts,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

type SavedReport struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID     `bson:"userId" json:"userId"`
	Name       string                 `bson:"name" json:"name"`
	ReportType string                 `bson:"reportType" json:"reportType"`
	Parameters map[string]interface{} `bson:"parameters,omitempty" json:"parameters,omitempty"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
}
