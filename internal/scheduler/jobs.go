package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"livestock-farm-api-server/internal/models"
)

// SweepRestrictions clears every restriction whose window has passed and
// notifies the owner. This sweep is the reliable authority on expiry; the lazy
// per-read check only complements it.
func (s *Scheduler) SweepRestrictions(ctx context.Context) error {
	now := s.now()
	animals, err := s.store.ExpiredRestrictedAnimals(ctx, now)
	if err != nil {
		return err
	}

	for _, animal := range animals {
		if err := s.store.ClearRestriction(ctx, animal.ID); err != nil {
			s.logger.Error("failed to clear restriction",
				zap.String("animal", animal.IdentificationNumber), zap.Error(err))
			continue
		}
		id := animal.ID
		notif := models.Notification{
			UserID:    animal.UserID,
			Type:      models.NotificationRestrictionEnded,
			Title:     "Restriction ended",
			Message:   fmt.Sprintf("The withdrawal period for animal %s has ended.", animal.IdentificationNumber),
			RelatedID: &id,
			CreatedAt: now,
		}
		if err := s.notifier.Notify(ctx, notif); err != nil {
			s.logger.Error("failed to notify restriction expiry", zap.Error(err))
		}
	}

	if len(animals) > 0 {
		s.logger.Info("restriction sweep cleared animals", zap.Int("count", len(animals)))
	}
	return nil
}

// GenerateVaccinationReminders creates a reminder for every scheduled
// vaccination due within the reminder window, once per vaccination.
func (s *Scheduler) GenerateVaccinationReminders(ctx context.Context) error {
	now := s.now()
	until := now.AddDate(0, 0, s.cfg.ReminderWindowDays)

	due, err := s.store.DueVaccinations(ctx, now, until)
	if err != nil {
		return err
	}

	for _, v := range due {
		exists, err := s.store.HasReminder(ctx, models.ReminderVaccination, v.ID)
		if err != nil {
			return err
		}
		if exists || v.ScheduledDate == nil {
			continue
		}

		id := v.ID
		reminder := models.Reminder{
			UserID:    v.UserID,
			Type:      models.ReminderVaccination,
			Title:     fmt.Sprintf("Vaccination %s due", v.VaccineName),
			DueDate:   *v.ScheduledDate,
			RelatedID: &id,
			CreatedAt: now,
		}
		if err := s.store.CreateReminder(ctx, reminder); err != nil {
			return err
		}
		notif := models.Notification{
			UserID:    v.UserID,
			Type:      models.NotificationVaccinationDue,
			Title:     reminder.Title,
			Message:   fmt.Sprintf("Vaccination %s is due on %s.", v.VaccineName, v.ScheduledDate.Format("2006-01-02")),
			RelatedID: &id,
			CreatedAt: now,
		}
		if err := s.notifier.Notify(ctx, notif); err != nil {
			s.logger.Error("failed to notify vaccination reminder", zap.Error(err))
		}
	}
	return nil
}

// GenerateBreedingReminders creates a reminder for every active pregnancy
// expected to deliver within the reminder window, once per breeding event.
func (s *Scheduler) GenerateBreedingReminders(ctx context.Context) error {
	now := s.now()
	until := now.AddDate(0, 0, s.cfg.ReminderWindowDays)

	due, err := s.store.DuePregnancies(ctx, now, until)
	if err != nil {
		return err
	}

	for _, ev := range due {
		if ev.ExpectedBirthDate == nil {
			continue
		}
		exists, err := s.store.HasReminder(ctx, models.ReminderBreeding, ev.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		id := ev.ID
		reminder := models.Reminder{
			UserID:    ev.UserID,
			Type:      models.ReminderBreeding,
			Title:     "Expected birth approaching",
			DueDate:   *ev.ExpectedBirthDate,
			RelatedID: &id,
			CreatedAt: now,
		}
		if err := s.store.CreateReminder(ctx, reminder); err != nil {
			return err
		}
		notif := models.Notification{
			UserID:    ev.UserID,
			Type:      models.NotificationBirthDue,
			Title:     reminder.Title,
			Message:   fmt.Sprintf("A birth is expected around %s.", ev.ExpectedBirthDate.Format("2006-01-02")),
			RelatedID: &id,
			CreatedAt: now,
		}
		if err := s.notifier.Notify(ctx, notif); err != nil {
			s.logger.Error("failed to notify breeding reminder", zap.Error(err))
		}
	}
	return nil
}

// CheckLowStock notifies owners of items at or below their threshold, at most
// once per item per day.
func (s *Scheduler) CheckLowStock(ctx context.Context) error {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	items, err := s.store.LowStockItems(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		notifType := models.NotificationLowStock
		if item.AvailableQuantity <= 0 {
			notifType = models.NotificationOutOfStock
		}

		already, err := s.store.HasNotificationSince(ctx, notifType, item.ID, dayStart)
		if err != nil {
			return err
		}
		if already {
			continue
		}

		id := item.ID
		notif := models.Notification{
			UserID:    item.UserID,
			Type:      notifType,
			Title:     fmt.Sprintf("Stock alert: %s", item.Name),
			Message:   fmt.Sprintf("%s is down to %g %s.", item.Name, item.AvailableQuantity, item.Unit),
			RelatedID: &id,
			CreatedAt: now,
		}
		if err := s.notifier.Notify(ctx, notif); err != nil {
			s.logger.Error("failed to notify low stock", zap.Error(err))
		}
	}
	return nil
}
