package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"livestock-farm-api-server/config"
	"livestock-farm-api-server/internal/models"
)

var fixedNow = time.Date(2026, 4, 20, 6, 0, 0, 0, time.UTC)

type fakeStore struct {
	expired       []models.Animal
	cleared       []primitive.ObjectID
	vaccinations  []models.Vaccination
	pregnancies   []models.BreedingEvent
	reminders     []models.Reminder
	existing      map[primitive.ObjectID]bool
	lowStock      []models.InventoryItem
	notifiedToday map[primitive.ObjectID]bool
}

func (f *fakeStore) ExpiredRestrictedAnimals(_ context.Context, _ time.Time) ([]models.Animal, error) {
	return f.expired, nil
}

func (f *fakeStore) ClearRestriction(_ context.Context, id primitive.ObjectID) error {
	f.cleared = append(f.cleared, id)
	return nil
}

func (f *fakeStore) DueVaccinations(_ context.Context, _, _ time.Time) ([]models.Vaccination, error) {
	return f.vaccinations, nil
}

func (f *fakeStore) DuePregnancies(_ context.Context, _, _ time.Time) ([]models.BreedingEvent, error) {
	return f.pregnancies, nil
}

func (f *fakeStore) HasReminder(_ context.Context, _ string, relatedID primitive.ObjectID) (bool, error) {
	return f.existing[relatedID], nil
}

func (f *fakeStore) CreateReminder(_ context.Context, r models.Reminder) error {
	f.reminders = append(f.reminders, r)
	return nil
}

func (f *fakeStore) LowStockItems(_ context.Context) ([]models.InventoryItem, error) {
	return f.lowStock, nil
}

func (f *fakeStore) HasNotificationSince(_ context.Context, _ string, relatedID primitive.ObjectID, _ time.Time) (bool, error) {
	return f.notifiedToday[relatedID], nil
}

type fakeNotifier struct {
	sent []models.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n models.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

func newTestScheduler(store Store, notifier Notifier) *Scheduler {
	s := New(config.SchedulerConfig{DailySpec: "0 6 * * *", ReminderWindowDays: 3}, store, notifier, zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestSweepRestrictions(t *testing.T) {
	end := fixedNow.Add(-time.Hour)
	animal := models.Animal{
		ID:                   primitive.NewObjectID(),
		UserID:               primitive.NewObjectID(),
		IdentificationNumber: "A-17",
		Restriction: models.Restriction{
			IsRestricted:       true,
			Reason:             models.RestrictionReasonTreatment,
			RestrictionEndDate: &end,
		},
	}
	store := &fakeStore{expired: []models.Animal{animal}}
	notifier := &fakeNotifier{}

	require.NoError(t, newTestScheduler(store, notifier).SweepRestrictions(context.Background()))

	require.Len(t, store.cleared, 1)
	assert.Equal(t, animal.ID, store.cleared[0])
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.NotificationRestrictionEnded, notifier.sent[0].Type)
	assert.Equal(t, animal.UserID, notifier.sent[0].UserID)
}

func TestSweepRestrictionsNothingDue(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	require.NoError(t, newTestScheduler(store, notifier).SweepRestrictions(context.Background()))

	assert.Empty(t, store.cleared)
	assert.Empty(t, notifier.sent)
}

func TestVaccinationRemindersDeduplicated(t *testing.T) {
	due := fixedNow.AddDate(0, 0, 2)
	fresh := models.Vaccination{
		ID:            primitive.NewObjectID(),
		UserID:        primitive.NewObjectID(),
		VaccineName:   "FMD",
		Status:        models.VaccinationScheduled,
		ScheduledDate: &due,
	}
	seen := models.Vaccination{
		ID:            primitive.NewObjectID(),
		UserID:        fresh.UserID,
		VaccineName:   "anthrax",
		Status:        models.VaccinationScheduled,
		ScheduledDate: &due,
	}
	store := &fakeStore{
		vaccinations: []models.Vaccination{fresh, seen},
		existing:     map[primitive.ObjectID]bool{seen.ID: true},
	}
	notifier := &fakeNotifier{}

	require.NoError(t, newTestScheduler(store, notifier).GenerateVaccinationReminders(context.Background()))

	require.Len(t, store.reminders, 1)
	assert.Equal(t, models.ReminderVaccination, store.reminders[0].Type)
	assert.Equal(t, fresh.ID, *store.reminders[0].RelatedID)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.NotificationVaccinationDue, notifier.sent[0].Type)
}

func TestBreedingReminders(t *testing.T) {
	expected := fixedNow.AddDate(0, 0, 1)
	ev := models.BreedingEvent{
		ID:                primitive.NewObjectID(),
		UserID:            primitive.NewObjectID(),
		EventType:         models.BreedingEventPregnancy,
		Status:            models.BreedingStatusActive,
		ExpectedBirthDate: &expected,
	}
	store := &fakeStore{pregnancies: []models.BreedingEvent{ev}}
	notifier := &fakeNotifier{}

	require.NoError(t, newTestScheduler(store, notifier).GenerateBreedingReminders(context.Background()))

	require.Len(t, store.reminders, 1)
	assert.Equal(t, models.ReminderBreeding, store.reminders[0].Type)
	assert.True(t, store.reminders[0].DueDate.Equal(expected))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.NotificationBirthDue, notifier.sent[0].Type)
}

func TestCheckLowStock(t *testing.T) {
	low := models.InventoryItem{
		ID:                primitive.NewObjectID(),
		UserID:            primitive.NewObjectID(),
		Name:              "starter feed",
		Unit:              "kg",
		AvailableQuantity: 3,
		LowStockThreshold: 5,
		IsLowStock:        true,
	}
	empty := models.InventoryItem{
		ID:                primitive.NewObjectID(),
		UserID:            low.UserID,
		Name:              "penicillin",
		Unit:              "doses",
		AvailableQuantity: 0,
		LowStockThreshold: 2,
		IsLowStock:        true,
	}
	muted := models.InventoryItem{
		ID:                primitive.NewObjectID(),
		UserID:            low.UserID,
		Name:              "salt block",
		AvailableQuantity: 1,
		LowStockThreshold: 4,
		IsLowStock:        true,
	}
	store := &fakeStore{
		lowStock:      []models.InventoryItem{low, empty, muted},
		notifiedToday: map[primitive.ObjectID]bool{muted.ID: true},
	}
	notifier := &fakeNotifier{}

	require.NoError(t, newTestScheduler(store, notifier).CheckLowStock(context.Background()))

	require.Len(t, notifier.sent, 2)
	types := map[string]bool{}
	for _, n := range notifier.sent {
		types[n.Type] = true
	}
	assert.True(t, types[models.NotificationLowStock])
	assert.True(t, types[models.NotificationOutOfStock])
}
