package devo

import (
	"fmt"
	"time"
)

// Job kinds for recurring notification work.
type JobKind string

const (
	JobDailyVerse     JobKind = "daily_verse"
	JobPrayerReminder JobKind = "prayer_reminder"
)

// Scheduler is the external capability that runs recurring jobs. Registering
// an existing key replaces the previous job rather than duplicating it.
// Retry of failing executions is the scheduler's own policy.
type Scheduler interface {
	RegisterRecurring(key string, initialDelay, period time.Duration, run func())
	Cancel(key string)
}

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is a wall-clock time, minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour). The whole string must match;
// trailing input is an error.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// SecondOfDay returns the number of seconds from midnight.
func (t TimeOfDay) SecondOfDay() int {
	return t.Hour*3600 + t.Minute*60
}

// NextFireDelay computes the delay from now to the next occurrence of t:
// same day if t is still in the future, otherwise the same time tomorrow.
// A target equal to the current instant fires tomorrow, never immediately.
func NextFireDelay(now time.Time, t TimeOfDay) time.Duration {
	nowSecond := now.Hour()*3600 + now.Minute()*60 + now.Second()
	delay := t.SecondOfDay() - nowSecond
	if delay <= 0 {
		delay += secondsPerDay
	}
	return time.Duration(delay) * time.Second
}

// DailyVerseJobKey is the scheduler key for the single daily-verse job.
// There is only one such job, so rescheduling at a new time replaces it.
func DailyVerseJobKey() string {
	return string(JobDailyVerse)
}

// PrayerReminderJobKey is the scheduler key for a prayer reminder at the
// given time. Reminders at distinct times coexist.
func PrayerReminderJobKey(t TimeOfDay) string {
	return fmt.Sprintf("%s_%s", JobPrayerReminder, t)
}
