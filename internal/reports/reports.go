// Package reports assembles report data objects. Each report type has its own
// Builder; rendering to PDF/Excel happens in external collaborators that
// consume the returned data.
package reports

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"livestock-farm-api-server/internal/database"
)

// Report types.
const (
	TypeDashboard = "dashboard"
	TypeFinancial = "financial"
	TypeInventory = "inventory"
	TypeHerd      = "herd"
)

// Params narrows a report to a date range when both bounds are set.
type Params struct {
	From *time.Time
	To   *time.Time
}

// Builder produces the data object for one report type.
type Builder interface {
	Type() string
	Build(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, params Params) (bson.M, error)
}

// Registry resolves builders by report type.
type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	for _, b := range []Builder{
		dashboardBuilder{},
		financialBuilder{},
		inventoryBuilder{},
		herdBuilder{},
	} {
		r.builders[b.Type()] = b
	}
	return r
}

func (r *Registry) Get(reportType string) (Builder, error) {
	b, ok := r.builders[reportType]
	if !ok {
		return nil, fmt.Errorf("unknown report type %q", reportType)
	}
	return b, nil
}

func dateFilter(userID primitive.ObjectID, field string, params Params) bson.M {
	filter := bson.M{"userId": userID}
	if params.From != nil || params.To != nil {
		r := bson.M{}
		if params.From != nil {
			r["$gte"] = *params.From
		}
		if params.To != nil {
			r["$lte"] = *params.To
		}
		filter[field] = r
	}
	return filter
}

type dashboardBuilder struct{}

func (dashboardBuilder) Type() string { return TypeDashboard }

func (dashboardBuilder) Build(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, _ Params) (bson.M, error) {
	animals := db.Collection(database.CollAnimals)

	alive, err := animals.CountDocuments(ctx, bson.M{"userId": userID, "status": "alive"})
	if err != nil {
		return nil, err
	}
	restricted, err := animals.CountDocuments(ctx, bson.M{"userId": userID, "restriction.isRestricted": true})
	if err != nil {
		return nil, err
	}
	lowStock, err := db.Collection(database.CollInventoryItems).
		CountDocuments(ctx, bson.M{"userId": userID, "isLowStock": true})
	if err != nil {
		return nil, err
	}
	unread, err := db.Collection(database.CollNotifications).
		CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
	if err != nil {
		return nil, err
	}
	pregnancies, err := db.Collection(database.CollBreedingEvents).
		CountDocuments(ctx, bson.M{"userId": userID, "eventType": "pregnancy", "status": "active"})
	if err != nil {
		return nil, err
	}

	return bson.M{
		"aliveAnimals":        alive,
		"restrictedAnimals":   restricted,
		"lowStockItems":       lowStock,
		"unreadNotifications": unread,
		"activePregnancies":   pregnancies,
	}, nil
}

type financialBuilder struct{}

func (financialBuilder) Type() string { return TypeFinancial }

func (financialBuilder) Build(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, params Params) (bson.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: dateFilter(userID, "date", params)}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$type",
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := db.Collection(database.CollFinancialRecords).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Type  string  `bson:"_id"`
		Total float64 `bson:"total"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	var income, expense float64
	byType := bson.M{}
	for _, row := range rows {
		byType[row.Type] = bson.M{"total": row.Total, "count": row.Count}
		switch row.Type {
		case "income":
			income = row.Total
		case "expense":
			expense = row.Total
		}
	}

	return bson.M{
		"byType":  byType,
		"income":  income,
		"expense": expense,
		"balance": income - expense,
	}, nil
}

type inventoryBuilder struct{}

func (inventoryBuilder) Type() string { return TypeInventory }

func (inventoryBuilder) Build(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, _ Params) (bson.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$category",
			"items":    bson.M{"$sum": 1},
			"lowStock": bson.M{"$sum": bson.M{"$cond": bson.A{"$isLowStock", 1, 0}}},
			"value":    bson.M{"$sum": bson.M{"$multiply": bson.A{"$availableQuantity", "$unitPrice"}}},
		}}},
	}

	cursor, err := db.Collection(database.CollInventoryItems).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return bson.M{"byCategory": rows}, nil
}

type herdBuilder struct{}

func (herdBuilder) Type() string { return TypeHerd }

func (herdBuilder) Build(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, _ Params) (bson.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"status": "$status", "gender": "$gender"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := db.Collection(database.CollAnimals).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return bson.M{"byStatusAndGender": rows}, nil
}
