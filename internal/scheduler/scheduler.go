// Package scheduler runs the daily background sweeps: restriction expiry,
// vaccination and breeding reminders, and low-stock checks. Jobs take a store
// and a clock so they can be driven in tests.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"livestock-farm-api-server/config"
	"livestock-farm-api-server/internal/models"
)

// Store is the persistence surface the jobs need.
type Store interface {
	ExpiredRestrictedAnimals(ctx context.Context, now time.Time) ([]models.Animal, error)
	ClearRestriction(ctx context.Context, animalID primitive.ObjectID) error
	DueVaccinations(ctx context.Context, from, to time.Time) ([]models.Vaccination, error)
	DuePregnancies(ctx context.Context, from, to time.Time) ([]models.BreedingEvent, error)
	HasReminder(ctx context.Context, reminderType string, relatedID primitive.ObjectID) (bool, error)
	CreateReminder(ctx context.Context, reminder models.Reminder) error
	LowStockItems(ctx context.Context) ([]models.InventoryItem, error)
	HasNotificationSince(ctx context.Context, notifType string, relatedID primitive.ObjectID, since time.Time) (bool, error)
}

// Notifier delivers user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification) error
}

// Scheduler manages the scheduled jobs.
type Scheduler struct {
	cron     *cron.Cron
	store    Store
	notifier Notifier
	cfg      config.SchedulerConfig
	logger   *zap.Logger
	now      func() time.Time
}

func New(cfg config.SchedulerConfig, store Store, notifier Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(),
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the daily jobs and runs them once after the startup delay.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("dailySpec", s.cfg.DailySpec))

	if _, err := s.cron.AddFunc(s.cfg.DailySpec, s.runAll); err != nil {
		s.logger.Error("failed to schedule daily jobs", zap.Error(err))
	}
	s.cron.Start()

	go func() {
		time.Sleep(time.Duration(s.cfg.StartupDelaySeconds) * time.Second)
		s.runAll()
	}()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for name, job := range map[string]func(context.Context) error{
		"restriction sweep":     s.SweepRestrictions,
		"vaccination reminders": s.GenerateVaccinationReminders,
		"breeding reminders":    s.GenerateBreedingReminders,
		"low stock check":       s.CheckLowStock,
	} {
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		}
	}
}
