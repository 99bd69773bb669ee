// Package restriction implements the withdrawal-period state machine embedded
// on an animal. Health events and vaccinations impose restriction windows;
// sale and slaughter are blocked while a window is active.
package restriction

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"livestock-farm-api-server/internal/models"
)

// WithdrawalEnd computes the end of a withdrawal window as calendar days after
// the event date.
func WithdrawalEnd(eventDate time.Time, days int) time.Time {
	return eventDate.AddDate(0, 0, days)
}

// Apply sets a restriction window on the animal. A window whose end has
// already passed is never installed: a backdated trigger must not leave the
// animal restricted until the next sweep. When a window is already active, the
// later end date wins: applying a window that ends before the current one
// leaves the animal untouched and returns false.
func Apply(a *models.Animal, reason string, endDate time.Time, notes string, sourceID *primitive.ObjectID, now time.Time) bool {
	if !endDate.After(now) {
		return false
	}
	if a.Restriction.IsRestricted && a.Restriction.RestrictionEndDate != nil &&
		a.Restriction.RestrictionEndDate.After(endDate) {
		return false
	}
	end := endDate
	a.Restriction = models.Restriction{
		IsRestricted:       true,
		Reason:             reason,
		RestrictionEndDate: &end,
		Notes:              notes,
		SourceID:           sourceID,
	}
	return true
}

// Clear resets the restriction state.
func Clear(a *models.Animal) {
	a.Restriction = models.Restriction{}
}

// FromHealthEvent applies the window imposed by a health event, if any.
// Returns true when the animal was modified.
func FromHealthEvent(a *models.Animal, ev *models.HealthEvent, now time.Time) bool {
	if ev.ProductWithdrawalPeriod <= 0 {
		return false
	}
	end := WithdrawalEnd(ev.EventDate, ev.ProductWithdrawalPeriod)
	id := ev.ID
	return Apply(a, models.RestrictionReasonTreatment, end, ev.Medication, &id, now)
}

// FromVaccination applies the window imposed by a completed vaccination, using
// the longer of the meat and milk withdrawal periods. Returns true when the
// animal was modified.
func FromVaccination(a *models.Animal, v *models.Vaccination, now time.Time) bool {
	period := v.MaxWithdrawalPeriod()
	if period <= 0 || v.CompletedDate == nil {
		return false
	}
	end := WithdrawalEnd(*v.CompletedDate, period)
	id := v.ID
	return Apply(a, models.RestrictionReasonVaccination, end, v.VaccineName, &id, now)
}

// Reconcile updates the animal's restriction after the withdrawal period on an
// already-saved trigger record changed. The animal is only touched when its
// active restriction was imposed by that record: matched by sourceID, or, for
// documents written before source tracking, by exact equality between the
// animal's end date and the trigger's previous end date. A zero period clears
// the restriction; otherwise the window is moved to newEnd. Returns true when
// the animal was modified.
func Reconcile(a *models.Animal, sourceID primitive.ObjectID, oldEnd *time.Time, newPeriodDays int, newEnd time.Time) bool {
	if !a.Restriction.IsRestricted {
		return false
	}
	if a.Restriction.SourceID != nil {
		if *a.Restriction.SourceID != sourceID {
			return false
		}
	} else {
		if oldEnd == nil || a.Restriction.RestrictionEndDate == nil ||
			!a.Restriction.RestrictionEndDate.Equal(*oldEnd) {
			return false
		}
	}
	if newPeriodDays <= 0 {
		Clear(a)
		return true
	}
	end := newEnd
	a.Restriction.RestrictionEndDate = &end
	a.Restriction.SourceID = &sourceID
	return true
}

// Expired reports whether the animal's restriction window has passed.
func Expired(a *models.Animal, now time.Time) bool {
	return a.Restriction.IsRestricted &&
		a.Restriction.RestrictionEndDate != nil &&
		!a.Restriction.RestrictionEndDate.After(now)
}

// CheckStatus is the lazy counterpart of the daily sweep: it clears an expired
// restriction in place and reports whether it did so.
func CheckStatus(a *models.Animal, now time.Time) bool {
	if !Expired(a, now) {
		return false
	}
	Clear(a)
	return true
}

// BlocksSale reports whether a sale or slaughter must be rejected for this
// animal right now.
func BlocksSale(a *models.Animal, now time.Time) bool {
	return a.Restriction.IsRestricted && !Expired(a, now)
}
