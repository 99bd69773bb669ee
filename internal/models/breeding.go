package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Breeding event types.
const (
	BreedingEventMating    = "mating"
	BreedingEventPregnancy = "pregnancy"
	BreedingEventAbortion  = "abortion"
)

// Breeding event statuses.
const (
	BreedingStatusActive    = "active"
	BreedingStatusCompleted = "completed"
	BreedingStatusFailed    = "failed"
)

// BreedingEvent tracks mating and pregnancy. For pregnancy events the expected
// birth date is derived from the female's category pregnancy period.
type BreedingEvent struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID  `bson:"userId" json:"userId"`
	FemaleID          primitive.ObjectID  `bson:"femaleId" json:"femaleId"`
	MaleID            *primitive.ObjectID `bson:"maleId,omitempty" json:"maleId,omitempty"`
	EventType         string              `bson:"eventType" json:"eventType"`
	EventDate         time.Time           `bson:"eventDate" json:"eventDate"`
	ExpectedBirthDate *time.Time          `bson:"expectedBirthDate,omitempty" json:"expectedBirthDate,omitempty"`
	Status            string              `bson:"status" json:"status"`
	Notes             string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Birth links back to the breeding event that produced it. Offspring animals
// are created separately through registration, which must submit exactly
// LivingOffspringCount entries.
type Birth struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID               primitive.ObjectID  `bson:"userId" json:"userId"`
	BreedingEventID      *primitive.ObjectID `bson:"breedingEventId,omitempty" json:"breedingEventId,omitempty"`
	MotherID             primitive.ObjectID  `bson:"motherId" json:"motherId"`
	FatherID             *primitive.ObjectID `bson:"fatherId,omitempty" json:"fatherId,omitempty"`
	BirthDate            time.Time           `bson:"birthDate" json:"birthDate"`
	TotalOffspringCount  int                 `bson:"totalOffspringCount" json:"totalOffspringCount"`
	LivingOffspringCount int                 `bson:"livingOffspringCount" json:"livingOffspringCount"`
	OffspringRegistered  bool                `bson:"offspringRegistered" json:"offspringRegistered"`
	Notes                string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}
