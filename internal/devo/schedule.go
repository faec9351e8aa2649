package devo

import (
	"errors"
	"time"
)

const dayPeriod = 24 * time.Hour

// ScheduleDailyVerse registers (or replaces) the recurring daily-verse job
// firing at the given local time.
func (s *DevoService) ScheduleDailyVerse(t TimeOfDay) {
	delay := NextFireDelay(s.clock.Now(), t)
	s.scheduler.RegisterRecurring(DailyVerseJobKey(), delay, dayPeriod, func() {
		if err := s.DeliverDailyVerse(); err != nil {
			if errors.Is(err, ErrNoVerseAvailable) {
				// Corpus has nothing to offer right now; the next cycle
				// retries after re-ingestion may have refilled the pool.
				s.logger.Warn("no verse available for delivery", "error", err)
				return
			}
			s.logger.Error("daily verse delivery failed", "error", err)
		}
	})
	s.logger.Info("daily verse scheduled", "time", t.String(), "initialDelay", delay)
}

// CancelDailyVerse removes the daily-verse job if one is registered.
func (s *DevoService) CancelDailyVerse() {
	s.scheduler.Cancel(DailyVerseJobKey())
}

// SchedulePrayerReminder registers (or replaces) a recurring prayer reminder
// at the given local time. Reminders at distinct times coexist.
func (s *DevoService) SchedulePrayerReminder(t TimeOfDay) {
	delay := NextFireDelay(s.clock.Now(), t)
	s.scheduler.RegisterRecurring(PrayerReminderJobKey(t), delay, dayPeriod, func() {
		s.notifier.Notify(ChannelPrayerReminder, "Prayer Time", "Time to pray and strengthen your faith!")
	})
	s.logger.Info("prayer reminder scheduled", "time", t.String(), "initialDelay", delay)
}

// CancelPrayerReminder removes the reminder registered for the given time.
func (s *DevoService) CancelPrayerReminder(t TimeOfDay) {
	s.scheduler.Cancel(PrayerReminderJobKey(t))
}
