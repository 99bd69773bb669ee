package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types.
const (
	TransactionSale      = "sale"
	TransactionPurchase  = "purchase"
	TransactionSlaughter = "slaughter"
)

// Transaction is an animal-level sale, purchase or slaughter. Sale and
// slaughter of a restricted animal require RestrictionChecked to be set by the
// caller as an explicit override.
type Transaction struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID  `bson:"userId" json:"userId"`
	Type               string              `bson:"type" json:"type"`
	AnimalID           *primitive.ObjectID `bson:"animalId,omitempty" json:"animalId,omitempty"`
	Date               time.Time           `bson:"date" json:"date"`
	Amount             float64             `bson:"amount,omitempty" json:"amount,omitempty"`
	Counterparty       string              `bson:"counterparty,omitempty" json:"counterparty,omitempty"`
	RestrictionChecked bool                `bson:"restrictionChecked,omitempty" json:"restrictionChecked,omitempty"`
	Notes              string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Financial record types.
const (
	FinancialIncome  = "income"
	FinancialExpense = "expense"
)

type FinancialRecord struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"userId" json:"userId"`
	Type        string              `bson:"type" json:"type"`
	Category    string              `bson:"category,omitempty" json:"category,omitempty"`
	Amount      float64             `bson:"amount" json:"amount"`
	Date        time.Time           `bson:"date" json:"date"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	RelatedID   *primitive.ObjectID `bson:"relatedId,omitempty" json:"relatedId,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
