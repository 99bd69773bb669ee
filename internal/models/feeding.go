package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedingRecord snapshots one feeding of a group of animals. Cost is derived
// on save as UnitCost * TotalAmount.
type FeedingRecord struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID   `bson:"userId" json:"userId"`
	RecordID    string               `bson:"recordId" json:"recordId"`
	AnimalIDs   []primitive.ObjectID `bson:"animalIds" json:"animalIds"`
	FeedTypeID  primitive.ObjectID   `bson:"feedTypeId" json:"feedTypeId"`
	TotalAmount float64              `bson:"totalAmount" json:"totalAmount"`
	UnitCost    float64              `bson:"unitCost,omitempty" json:"unitCost,omitempty"`
	Cost        float64              `bson:"cost" json:"cost"`
	Date        time.Time            `bson:"date" json:"date"`
	Notes       string               `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// FeedingSchedule is a recurring feeding plan, optionally driven by a feed
// calculation template.
type FeedingSchedule struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID   `bson:"userId" json:"userId"`
	Name             string               `bson:"name" json:"name"`
	AnimalIDs        []primitive.ObjectID `bson:"animalIds,omitempty" json:"animalIds,omitempty"`
	FeedTypeID       *primitive.ObjectID  `bson:"feedTypeId,omitempty" json:"feedTypeId,omitempty"`
	TemplateID       *primitive.ObjectID  `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Times            []string             `bson:"times,omitempty" json:"times,omitempty"`
	AmountPerFeeding float64              `bson:"amountPerFeeding,omitempty" json:"amountPerFeeding,omitempty"`
	IsActive         bool                 `bson:"isActive" json:"isActive"`
	Notes            string               `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// EquipmentUsage logs use of an equipment inventory item.
type EquipmentUsage struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID   `bson:"userId" json:"userId"`
	ItemID           primitive.ObjectID   `bson:"itemId" json:"itemId"`
	AnimalIDs        []primitive.ObjectID `bson:"animalIds,omitempty" json:"animalIds,omitempty"`
	Purpose          string               `bson:"purpose,omitempty" json:"purpose,omitempty"`
	Hours            float64              `bson:"hours,omitempty" json:"hours,omitempty"`
	ConsumedQuantity float64              `bson:"consumedQuantity,omitempty" json:"consumedQuantity,omitempty"`
	Date             time.Time            `bson:"date" json:"date"`
	Notes            string               `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
}

// Feed calculation methods.
const (
	FeedMethodPercentageOfWeight = "percentage_of_weight"
	FeedMethodFixedAmount        = "fixed_amount"
	FeedMethodPerKgBodyweight    = "per_kg_bodyweight"
	FeedMethodFormula            = "formula"
)

// RuleParameters carries the method-specific inputs of a calculation rule.
type RuleParameters struct {
	Percentage  float64 `bson:"percentage,omitempty" json:"percentage,omitempty"`
	Amount      float64 `bson:"amount,omitempty" json:"amount,omitempty"`
	AmountPerKg float64 `bson:"amountPerKg,omitempty" json:"amountPerKg,omitempty"`
	Expression  string  `bson:"expression,omitempty" json:"expression,omitempty"`
	Multiplier  float64 `bson:"multiplier,omitempty" json:"multiplier,omitempty"`
	BaseAmount  float64 `bson:"baseAmount,omitempty" json:"baseAmount,omitempty"`
}

// RuleLimits clamps a rule's computed amount when set.
type RuleLimits struct {
	MinAmount *float64 `bson:"minAmount,omitempty" json:"minAmount,omitempty"`
	MaxAmount *float64 `bson:"maxAmount,omitempty" json:"maxAmount,omitempty"`
}

type CalculationRule struct {
	FeedTypeID *primitive.ObjectID `bson:"feedTypeId,omitempty" json:"feedTypeId,omitempty"`
	Method     string              `bson:"method" json:"method"`
	Parameters RuleParameters      `bson:"parameters" json:"parameters"`
	Limits     RuleLimits          `bson:"limits,omitempty" json:"limits,omitempty"`
}

// AdjustmentFactors are multiplicative modifiers applied to the grand total of
// a feed calculation, keyed by physiological state. Zero means "not set" and
// is treated as 1.
type AdjustmentFactors struct {
	Pregnant    float64 `bson:"pregnant,omitempty" json:"pregnant,omitempty"`
	Lactating   float64 `bson:"lactating,omitempty" json:"lactating,omitempty"`
	Young       float64 `bson:"young,omitempty" json:"young,omitempty"`
	Old         float64 `bson:"old,omitempty" json:"old,omitempty"`
	Sick        float64 `bson:"sick,omitempty" json:"sick,omitempty"`
	ColdWeather float64 `bson:"coldWeather,omitempty" json:"coldWeather,omitempty"`
}

type FeedCalculationTemplate struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	Name              string             `bson:"name" json:"name"`
	CalculationRules  []CalculationRule  `bson:"calculationRules" json:"calculationRules"`
	AdjustmentFactors AdjustmentFactors  `bson:"adjustmentFactors,omitempty" json:"adjustmentFactors,omitempty"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}
