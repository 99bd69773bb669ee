package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Health event types.
const (
	HealthEventTreatment = "treatment"
	HealthEventCheckup   = "checkup"
	HealthEventInjury    = "injury"
	HealthEventIllness   = "illness"
)

// HealthEvent records a treatment or examination. A positive
// ProductWithdrawalPeriod (days) restricts the animal until WithdrawalEndDate.
type HealthEvent struct {
	ID                      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID                  primitive.ObjectID  `bson:"userId" json:"userId"`
	AnimalID                primitive.ObjectID  `bson:"animalId" json:"animalId"`
	EventType               string              `bson:"eventType" json:"eventType"`
	EventDate               time.Time           `bson:"eventDate" json:"eventDate"`
	Description             string              `bson:"description,omitempty" json:"description,omitempty"`
	Medication              string              `bson:"medication,omitempty" json:"medication,omitempty"`
	ProductWithdrawalPeriod int                 `bson:"productWithdrawalPeriod,omitempty" json:"productWithdrawalPeriod,omitempty"`
	WithdrawalEndDate       *time.Time          `bson:"withdrawalEndDate,omitempty" json:"withdrawalEndDate,omitempty"`
	VetName                 string              `bson:"vetName,omitempty" json:"vetName,omitempty"`
	Cost                    float64             `bson:"cost,omitempty" json:"cost,omitempty"`
	InventoryItemID         *primitive.ObjectID `bson:"inventoryItemId,omitempty" json:"inventoryItemId,omitempty"`
	QuantityUsed            float64             `bson:"quantityUsed,omitempty" json:"quantityUsed,omitempty"`
	CreatedAt               time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Vaccination statuses.
const (
	VaccinationScheduled = "scheduled"
	VaccinationCompleted = "completed"
	VaccinationCancelled = "cancelled"
)

// Vaccination restricts the animal when completed with a positive meat or milk
// withdrawal period; the longer of the two wins.
type Vaccination struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID               primitive.ObjectID  `bson:"userId" json:"userId"`
	AnimalID             primitive.ObjectID  `bson:"animalId" json:"animalId"`
	VaccineName          string              `bson:"vaccineName" json:"vaccineName"`
	Status               string              `bson:"status" json:"status"`
	ScheduledDate        *time.Time          `bson:"scheduledDate,omitempty" json:"scheduledDate,omitempty"`
	CompletedDate        *time.Time          `bson:"completedDate,omitempty" json:"completedDate,omitempty"`
	MeatWithdrawalPeriod int                 `bson:"meatWithdrawalPeriod,omitempty" json:"meatWithdrawalPeriod,omitempty"`
	MilkWithdrawalPeriod int                 `bson:"milkWithdrawalPeriod,omitempty" json:"milkWithdrawalPeriod,omitempty"`
	WithdrawalEndDate    *time.Time          `bson:"withdrawalEndDate,omitempty" json:"withdrawalEndDate,omitempty"`
	InventoryItemID      *primitive.ObjectID `bson:"inventoryItemId,omitempty" json:"inventoryItemId,omitempty"`
	QuantityUsed         float64             `bson:"quantityUsed,omitempty" json:"quantityUsed,omitempty"`
	Notes                string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// MaxWithdrawalPeriod returns the governing withdrawal period in days.
func (v *Vaccination) MaxWithdrawalPeriod() int {
	if v.MeatWithdrawalPeriod > v.MilkWithdrawalPeriod {
		return v.MeatWithdrawalPeriod
	}
	return v.MilkWithdrawalPeriod
}
