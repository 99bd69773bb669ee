package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names. One collection per entity, all documents scoped by userId.
const (
	CollAnimals               = "animals"
	CollAnimalCategories      = "animal_categories"
	CollAnimalBreeds          = "animal_breeds"
	CollHealthEvents          = "health_events"
	CollVaccinations          = "vaccinations"
	CollBreedingEvents        = "breeding_events"
	CollBirths                = "births"
	CollTransactions          = "transactions"
	CollFinancialRecords      = "financial_records"
	CollInventoryItems        = "inventory_items"
	CollInventoryTransactions = "inventory_transactions"
	CollFeedingRecords        = "feeding_records"
	CollFeedingSchedules      = "feeding_schedules"
	CollEquipmentUsages       = "equipment_usages"
	CollFeedTemplates         = "feed_templates"
	CollNotifications         = "notifications"
	CollReminders             = "reminders"
	CollBackups               = "backups"
	CollSavedReports          = "saved_reports"
	CollUsers                 = "users"
)

// UserDataCollections lists the collections included in a user backup.
var UserDataCollections = []string{
	CollAnimals, CollAnimalCategories, CollAnimalBreeds,
	CollHealthEvents, CollVaccinations, CollBreedingEvents, CollBirths,
	CollTransactions, CollFinancialRecords,
	CollInventoryItems, CollInventoryTransactions,
	CollFeedingRecords, CollFeedingSchedules, CollEquipmentUsages, CollFeedTemplates,
	CollNotifications, CollReminders, CollSavedReports,
}

// Connect opens a client and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client.Database(dbName), nil
}
