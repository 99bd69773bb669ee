package scheduler

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/models"
)

// MongoStore implements Store against the live database. Sweeps run across
// all users; each loaded document carries its own userId for scoping the
// resulting reminders and notifications.
type MongoStore struct {
	DB *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{DB: db}
}

func (s *MongoStore) ExpiredRestrictedAnimals(ctx context.Context, now time.Time) ([]models.Animal, error) {
	filter := bson.M{
		"restriction.isRestricted":       true,
		"restriction.restrictionEndDate": bson.M{"$lte": now},
	}
	cursor, err := s.DB.Collection(database.CollAnimals).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var animals []models.Animal
	if err := cursor.All(ctx, &animals); err != nil {
		return nil, err
	}
	return animals, nil
}

func (s *MongoStore) ClearRestriction(ctx context.Context, animalID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{
		"restriction": models.Restriction{},
		"updatedAt":   time.Now(),
	}}
	_, err := s.DB.Collection(database.CollAnimals).UpdateOne(ctx, bson.M{"_id": animalID}, update)
	return err
}

func (s *MongoStore) DueVaccinations(ctx context.Context, from, to time.Time) ([]models.Vaccination, error) {
	filter := bson.M{
		"status":        models.VaccinationScheduled,
		"scheduledDate": bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := s.DB.Collection(database.CollVaccinations).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var due []models.Vaccination
	if err := cursor.All(ctx, &due); err != nil {
		return nil, err
	}
	return due, nil
}

func (s *MongoStore) DuePregnancies(ctx context.Context, from, to time.Time) ([]models.BreedingEvent, error) {
	filter := bson.M{
		"eventType":         models.BreedingEventPregnancy,
		"status":            models.BreedingStatusActive,
		"expectedBirthDate": bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := s.DB.Collection(database.CollBreedingEvents).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var due []models.BreedingEvent
	if err := cursor.All(ctx, &due); err != nil {
		return nil, err
	}
	return due, nil
}

func (s *MongoStore) HasReminder(ctx context.Context, reminderType string, relatedID primitive.ObjectID) (bool, error) {
	count, err := s.DB.Collection(database.CollReminders).CountDocuments(ctx, bson.M{
		"type":      reminderType,
		"relatedId": relatedID,
	})
	return count > 0, err
}

func (s *MongoStore) CreateReminder(ctx context.Context, reminder models.Reminder) error {
	_, err := s.DB.Collection(database.CollReminders).InsertOne(ctx, reminder)
	return err
}

func (s *MongoStore) LowStockItems(ctx context.Context) ([]models.InventoryItem, error) {
	cursor, err := s.DB.Collection(database.CollInventoryItems).Find(ctx, bson.M{"isLowStock": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.InventoryItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MongoStore) HasNotificationSince(ctx context.Context, notifType string, relatedID primitive.ObjectID, since time.Time) (bool, error) {
	count, err := s.DB.Collection(database.CollNotifications).CountDocuments(ctx, bson.M{
		"type":      notifType,
		"relatedId": relatedID,
		"createdAt": bson.M{"$gte": since},
	})
	return count > 0, err
}
