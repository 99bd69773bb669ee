package restriction_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"livestock-farm-api-server/internal/models"
	"livestock-farm-api-server/internal/restriction"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func restrictedAnimal(end time.Time, sourceID *primitive.ObjectID) *models.Animal {
	return &models.Animal{
		Status: models.AnimalStatusAlive,
		Restriction: models.Restriction{
			IsRestricted:       true,
			Reason:             models.RestrictionReasonTreatment,
			RestrictionEndDate: &end,
			SourceID:           sourceID,
		},
	}
}

func TestApplySetsWindow(t *testing.T) {
	a := &models.Animal{Status: models.AnimalStatusAlive}
	src := primitive.NewObjectID()
	end := now.AddDate(0, 0, 7)

	applied := restriction.Apply(a, models.RestrictionReasonVaccination, end, "rabies", &src, now)

	require.True(t, applied)
	assert.True(t, a.Restriction.IsRestricted)
	assert.Equal(t, models.RestrictionReasonVaccination, a.Restriction.Reason)
	require.NotNil(t, a.Restriction.RestrictionEndDate)
	assert.True(t, a.Restriction.RestrictionEndDate.Equal(end))
	assert.Equal(t, &src, a.Restriction.SourceID)
}

func TestApplyKeepsLaterWindow(t *testing.T) {
	longerEnd := now.AddDate(0, 0, 14)
	a := restrictedAnimal(longerEnd, nil)

	applied := restriction.Apply(a, models.RestrictionReasonVaccination, now.AddDate(0, 0, 3), "", nil, now)

	assert.False(t, applied)
	assert.True(t, a.Restriction.RestrictionEndDate.Equal(longerEnd))
	assert.Equal(t, models.RestrictionReasonTreatment, a.Restriction.Reason)
}

func TestApplyExtendsShorterWindow(t *testing.T) {
	a := restrictedAnimal(now.AddDate(0, 0, 3), nil)
	longerEnd := now.AddDate(0, 0, 21)

	applied := restriction.Apply(a, models.RestrictionReasonVaccination, longerEnd, "", nil, now)

	require.True(t, applied)
	assert.True(t, a.Restriction.RestrictionEndDate.Equal(longerEnd))
	assert.Equal(t, models.RestrictionReasonVaccination, a.Restriction.Reason)
}

func TestApplySkipsAlreadyPastWindow(t *testing.T) {
	a := &models.Animal{Status: models.AnimalStatusAlive}

	applied := restriction.Apply(a, models.RestrictionReasonTreatment, now.Add(-time.Hour), "", nil, now)

	assert.False(t, applied)
	assert.False(t, a.Restriction.IsRestricted)
}

func TestFromHealthEvent(t *testing.T) {
	ev := &models.HealthEvent{
		ID:                      primitive.NewObjectID(),
		EventType:               models.HealthEventTreatment,
		EventDate:               now,
		Medication:              "oxytetracycline",
		ProductWithdrawalPeriod: 10,
	}
	a := &models.Animal{Status: models.AnimalStatusAlive}

	require.True(t, restriction.FromHealthEvent(a, ev, now))
	assert.True(t, a.Restriction.RestrictionEndDate.Equal(now.AddDate(0, 0, 10)))
	assert.Equal(t, models.RestrictionReasonTreatment, a.Restriction.Reason)
	assert.Equal(t, ev.ID, *a.Restriction.SourceID)
}

func TestFromHealthEventZeroPeriodIsNoop(t *testing.T) {
	a := &models.Animal{}
	ev := &models.HealthEvent{EventDate: now}

	assert.False(t, restriction.FromHealthEvent(a, ev, now))
	assert.False(t, a.Restriction.IsRestricted)
}

func TestFromHealthEventBackdatedPastWindowIsNoop(t *testing.T) {
	ev := &models.HealthEvent{
		ID:                      primitive.NewObjectID(),
		EventType:               models.HealthEventTreatment,
		EventDate:               now.AddDate(0, 0, -20),
		ProductWithdrawalPeriod: 10,
	}
	a := &models.Animal{Status: models.AnimalStatusAlive}

	assert.False(t, restriction.FromHealthEvent(a, ev, now))
	assert.False(t, a.Restriction.IsRestricted)
}

func TestFromVaccinationUsesMaxPeriod(t *testing.T) {
	completed := now
	v := &models.Vaccination{
		ID:                   primitive.NewObjectID(),
		VaccineName:          "FMD",
		Status:               models.VaccinationCompleted,
		CompletedDate:        &completed,
		MeatWithdrawalPeriod: 21,
		MilkWithdrawalPeriod: 4,
	}
	a := &models.Animal{}

	require.True(t, restriction.FromVaccination(a, v, now))
	assert.True(t, a.Restriction.RestrictionEndDate.Equal(now.AddDate(0, 0, 21)))
	assert.Equal(t, models.RestrictionReasonVaccination, a.Restriction.Reason)
}

func TestReconcileMatchesBySourceID(t *testing.T) {
	src := primitive.NewObjectID()
	a := restrictedAnimal(now.AddDate(0, 0, 5), &src)
	newEnd := now.AddDate(0, 0, 12)

	changed := restriction.Reconcile(a, src, nil, 12, newEnd)

	require.True(t, changed)
	assert.True(t, a.Restriction.RestrictionEndDate.Equal(newEnd))
}

func TestReconcileIgnoresOtherSource(t *testing.T) {
	src := primitive.NewObjectID()
	end := now.AddDate(0, 0, 5)
	a := restrictedAnimal(end, &src)

	changed := restriction.Reconcile(a, primitive.NewObjectID(), &end, 12, now.AddDate(0, 0, 12))

	assert.False(t, changed)
	assert.True(t, a.Restriction.RestrictionEndDate.Equal(end))
}

func TestReconcileLegacyEqualityFallback(t *testing.T) {
	oldEnd := now.AddDate(0, 0, 5)
	a := restrictedAnimal(oldEnd, nil)
	src := primitive.NewObjectID()
	newEnd := now.AddDate(0, 0, 9)

	require.True(t, restriction.Reconcile(a, src, &oldEnd, 9, newEnd))
	assert.True(t, a.Restriction.RestrictionEndDate.Equal(newEnd))
	assert.Equal(t, src, *a.Restriction.SourceID)

	// A window that no longer matches the old end date stays untouched.
	b := restrictedAnimal(now.AddDate(0, 0, 6), nil)
	assert.False(t, restriction.Reconcile(b, src, &oldEnd, 9, newEnd))
}

func TestReconcileZeroPeriodClears(t *testing.T) {
	src := primitive.NewObjectID()
	a := restrictedAnimal(now.AddDate(0, 0, 5), &src)

	require.True(t, restriction.Reconcile(a, src, nil, 0, time.Time{}))
	assert.False(t, a.Restriction.IsRestricted)
	assert.Nil(t, a.Restriction.RestrictionEndDate)
}

func TestCheckStatusClearsExpired(t *testing.T) {
	a := restrictedAnimal(now.Add(-time.Hour), nil)

	require.True(t, restriction.CheckStatus(a, now))
	assert.False(t, a.Restriction.IsRestricted)
	assert.Empty(t, a.Restriction.Reason)

	b := restrictedAnimal(now.Add(time.Hour), nil)
	assert.False(t, restriction.CheckStatus(b, now))
	assert.True(t, b.Restriction.IsRestricted)
}

func TestBlocksSale(t *testing.T) {
	active := restrictedAnimal(now.AddDate(0, 0, 2), nil)
	expired := restrictedAnimal(now.AddDate(0, 0, -2), nil)
	free := &models.Animal{}

	assert.True(t, restriction.BlocksSale(active, now))
	assert.False(t, restriction.BlocksSale(expired, now))
	assert.False(t, restriction.BlocksSale(free, now))
}
