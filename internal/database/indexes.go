package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the query paths rely on. Identification
// numbers are unique per user, not globally.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollAnimals: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "identificationNumber", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "restriction.isRestricted", Value: 1}, {Key: "restriction.restrictionEndDate", Value: 1}}},
		},
		CollHealthEvents: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "animalId", Value: 1}}},
		},
		CollVaccinations: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "animalId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduledDate", Value: 1}}},
		},
		CollBreedingEvents: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "femaleId", Value: 1}}},
			{Keys: bson.D{{Key: "eventType", Value: 1}, {Key: "expectedBirthDate", Value: 1}}},
		},
		CollInventoryItems: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "isLowStock", Value: 1}}},
		},
		CollInventoryTransactions: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "itemId", Value: 1}}},
		},
		CollNotifications: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CollReminders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}, {Key: "relatedId", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
