package devo

import (
	"fmt"
	"time"

	"holyverses/internal/model"
)

// PointsPerPrayer is the fixed reward per logged prayer session.
const PointsPerPrayer = 10

// manualScheduledTime marks sessions logged outside any reminder slot.
const manualScheduledTime = "00:00"

// Achievement thresholds, keyed by catalog id. Count achievements trigger on
// total logged sessions, streak achievements on the streak-day counter.
var (
	countThresholds = []struct {
		ID    string
		Count int
	}{
		{"first_prayer", 1},
		{"prayer_10", 10},
		{"prayer_50", 50},
		{"prayer_100", 100},
	}
	streakThresholds = []struct {
		ID   string
		Days int
	}{
		{"streak_7", 7},
		{"streak_30", 30},
		{"streak_100", 100},
	}
)

// LogPrayer records a prayer session against the given reminder slot
// (HH:MM) and evaluates achievements. Returns the stored session together
// with any achievements newly unlocked by it.
func (s *DevoService) LogPrayer(scheduledTime string) (*model.PrayerSession, []*model.Achievement, error) {
	return s.logSession(scheduledTime, false)
}

// LogManualPrayer records an ad hoc prayer session not tied to any
// reminder slot.
func (s *DevoService) LogManualPrayer() (*model.PrayerSession, []*model.Achievement, error) {
	return s.logSession(manualScheduledTime, true)
}

func (s *DevoService) logSession(scheduledTime string, manual bool) (*model.PrayerSession, []*model.Achievement, error) {
	now := s.clock.Now()

	streak, err := s.CurrentStreak()
	if err != nil {
		return nil, nil, fmt.Errorf("reading current streak: %w", err)
	}

	session := &model.PrayerSession{
		ScheduledTime: scheduledTime,
		PrayedAt:      now,
		LoggedAt:      now,
		PointsEarned:  PointsPerPrayer,
		StreakDay:     streak + 1,
		ManualEntry:   manual,
		Date:          now.Format("2006-01-02"),
	}
	if err := s.database.InsertPrayerSession(session); err != nil {
		return nil, nil, fmt.Errorf("logging prayer session: %w", err)
	}
	s.logger.Info("prayer logged", "session", session.ID, "date", session.Date, "streakDay", session.StreakDay)

	unlocked, err := s.checkAchievements(now)
	if err != nil {
		return nil, nil, err
	}
	return session, unlocked, nil
}

// checkAchievements evaluates every threshold against the current totals and
// unlocks all that are met. Unlocking is idempotent, so thresholds crossed
// long ago are simply skipped.
func (s *DevoService) checkAchievements(now time.Time) ([]*model.Achievement, error) {
	count, err := s.database.TotalPrayerCount()
	if err != nil {
		return nil, fmt.Errorf("counting prayer sessions: %w", err)
	}
	streak, err := s.database.MaxStreakDay()
	if err != nil {
		return nil, fmt.Errorf("reading max streak day: %w", err)
	}

	var ids []string
	for _, t := range countThresholds {
		if count >= t.Count {
			ids = append(ids, t.ID)
		}
	}
	for _, t := range streakThresholds {
		if streak >= t.Days {
			ids = append(ids, t.ID)
		}
	}

	var unlocked []*model.Achievement
	for _, id := range ids {
		fresh, err := s.database.UnlockAchievement(id, now)
		if err != nil {
			return nil, fmt.Errorf("unlocking achievement %s: %w", id, err)
		}
		if !fresh {
			continue
		}
		a, err := s.database.FindAchievementByID(id)
		if err != nil {
			return nil, fmt.Errorf("loading achievement %s: %w", id, err)
		}
		if a != nil {
			s.logger.Info("achievement unlocked", "achievement", a.ID, "title", a.Title)
			unlocked = append(unlocked, a)
		}
	}
	return unlocked, nil
}

// UpdatePrayerSession replaces a stored session. Achievements are not
// re-evaluated; the unlocked flag is monotonic.
func (s *DevoService) UpdatePrayerSession(session *model.PrayerSession) error {
	return s.database.UpdatePrayerSession(session)
}

// DeletePrayerSession removes a session from the log. Achievements already
// unlocked stay unlocked.
func (s *DevoService) DeletePrayerSession(id int64) error {
	return s.database.DeletePrayerSession(id)
}

// RecentPrayerSessions returns the most recent sessions, newest first.
func (s *DevoService) RecentPrayerSessions(limit int) ([]*model.PrayerSession, error) {
	return s.database.ListPrayerSessions(limit)
}

// PrayerSessionsForDate returns every session logged for the given
// YYYY-MM-DD date.
func (s *DevoService) PrayerSessionsForDate(date string) ([]*model.PrayerSession, error) {
	return s.database.ListPrayerSessionsByDate(date)
}

// PrayerSessionsBetween returns every session with start <= date <= end,
// both YYYY-MM-DD.
func (s *DevoService) PrayerSessionsBetween(start, end string) ([]*model.PrayerSession, error) {
	return s.database.ListPrayerSessionsByDateRange(start, end)
}

// CurrentStreak returns the highest streak-day value ever recorded.
func (s *DevoService) CurrentStreak() (int, error) {
	return s.database.MaxStreakDay()
}

// ConsecutiveStreak counts the unbroken run of days with at least one
// session, ending today or yesterday. A gap before yesterday means the run
// is over and the count is 0.
func (s *DevoService) ConsecutiveStreak() (int, error) {
	dates, err := s.database.DistinctPrayerDates()
	if err != nil {
		return 0, fmt.Errorf("listing prayer dates: %w", err)
	}
	return consecutiveRun(dates, s.clock.Now()), nil
}

// consecutiveRun counts consecutive days in dates (sorted descending)
// walking backwards from today. The run may start today or yesterday, so a
// streak is not broken before the day is out.
func consecutiveRun(dates []string, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	day := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	if dates[0] != day && dates[0] != yesterday {
		return 0
	}

	run := 1
	prev, err := time.Parse("2006-01-02", dates[0])
	if err != nil {
		return 0
	}
	for _, d := range dates[1:] {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			break
		}
		if !t.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		run++
		prev = t
	}
	return run
}

// Stats aggregates the prayer log for display.
type Stats struct {
	TotalSessions     int
	TotalPoints       int
	CurrentStreak     int
	ConsecutiveStreak int
	TodayCount        int
	Unlocked          int
	Achievements      int
}

// PrayerStats computes the aggregate view of the prayer log.
func (s *DevoService) PrayerStats() (*Stats, error) {
	total, err := s.database.TotalPrayerCount()
	if err != nil {
		return nil, fmt.Errorf("counting prayer sessions: %w", err)
	}
	points, err := s.database.TotalPoints()
	if err != nil {
		return nil, fmt.Errorf("summing prayer points: %w", err)
	}
	streak, err := s.CurrentStreak()
	if err != nil {
		return nil, err
	}
	consecutive, err := s.ConsecutiveStreak()
	if err != nil {
		return nil, err
	}
	today, err := s.database.PrayerCountForDate(s.clock.Now().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("counting today's sessions: %w", err)
	}
	all, err := s.database.ListAchievements()
	if err != nil {
		return nil, fmt.Errorf("listing achievements: %w", err)
	}
	unlocked := 0
	for _, a := range all {
		if a.Unlocked {
			unlocked++
		}
	}

	return &Stats{
		TotalSessions:     total,
		TotalPoints:       points,
		CurrentStreak:     streak,
		ConsecutiveStreak: consecutive,
		TodayCount:        today,
		Unlocked:          unlocked,
		Achievements:      len(all),
	}, nil
}

// Achievements returns the full catalog, locked and unlocked.
func (s *DevoService) Achievements() ([]*model.Achievement, error) {
	return s.database.ListAchievements()
}

// UnlockedAchievements returns only the achievements already earned.
func (s *DevoService) UnlockedAchievements() ([]*model.Achievement, error) {
	return s.database.ListUnlockedAchievements()
}
