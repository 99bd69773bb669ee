package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Animal statuses.
const (
	AnimalStatusAlive       = "alive"
	AnimalStatusSold        = "sold"
	AnimalStatusDead        = "dead"
	AnimalStatusSlaughtered = "slaughtered"
)

// Acquisition methods.
const (
	AcquisitionBirth    = "birth"
	AcquisitionPurchase = "purchase"
	AcquisitionOther    = "other"
)

// Restriction reasons.
const (
	RestrictionReasonVaccination = "vaccination"
	RestrictionReasonTreatment   = "treatment"
	RestrictionReasonOther       = "other"
)

// WeightEntry is one record in the append-only weight history of an animal.
type WeightEntry struct {
	Weight float64   `bson:"weight" json:"weight"`
	Date   time.Time `bson:"date" json:"date"`
}

// Restriction is the withdrawal-period state embedded on an animal. While
// IsRestricted is true the animal must not be sold or slaughtered without an
// explicit override. SourceID references the health event or vaccination that
// imposed the current window.
type Restriction struct {
	IsRestricted       bool                `bson:"isRestricted" json:"isRestricted"`
	Reason             string              `bson:"reason,omitempty" json:"reason,omitempty"`
	RestrictionEndDate *time.Time          `bson:"restrictionEndDate,omitempty" json:"restrictionEndDate,omitempty"`
	Notes              string              `bson:"notes,omitempty" json:"notes,omitempty"`
	SourceID           *primitive.ObjectID `bson:"sourceId,omitempty" json:"sourceId,omitempty"`
}

type Animal struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID               primitive.ObjectID  `bson:"userId" json:"userId"`
	IdentificationNumber string              `bson:"identificationNumber" json:"identificationNumber"`
	Name                 string              `bson:"name,omitempty" json:"name,omitempty"`
	CategoryID           *primitive.ObjectID `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	BreedID              *primitive.ObjectID `bson:"breedId,omitempty" json:"breedId,omitempty"`
	Gender               string              `bson:"gender" json:"gender"`
	BirthDate            *time.Time          `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	AcquisitionDate      *time.Time          `bson:"acquisitionDate,omitempty" json:"acquisitionDate,omitempty"`
	AcquisitionMethod    string              `bson:"acquisitionMethod,omitempty" json:"acquisitionMethod,omitempty"`
	MotherID             *primitive.ObjectID `bson:"motherId,omitempty" json:"motherId,omitempty"`
	FatherID             *primitive.ObjectID `bson:"fatherId,omitempty" json:"fatherId,omitempty"`
	WeightHistory        []WeightEntry       `bson:"weightHistory,omitempty" json:"weightHistory,omitempty"`
	Status               string              `bson:"status" json:"status"`
	Restriction          Restriction         `bson:"restriction" json:"restriction"`
	Images               []string            `bson:"images,omitempty" json:"images,omitempty"`
	Notes                string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CurrentWeight returns the most recent weight entry, or zero when the animal
// has no recorded weights.
func (a *Animal) CurrentWeight() float64 {
	if len(a.WeightHistory) == 0 {
		return 0
	}
	latest := a.WeightHistory[0]
	for _, w := range a.WeightHistory[1:] {
		if w.Date.After(latest.Date) {
			latest = w
		}
	}
	return latest.Weight
}

// AnimalCategory groups animals of one species. PregnancyPeriod is in days and
// drives the expected birth date of pregnancy breeding events.
type AnimalCategory struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Name            string             `bson:"name" json:"name"`
	PregnancyPeriod int                `bson:"pregnancyPeriod,omitempty" json:"pregnancyPeriod,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type AnimalBreed struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"userId" json:"userId"`
	Name        string              `bson:"name" json:"name"`
	CategoryID  *primitive.ObjectID `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
