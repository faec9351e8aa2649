package model

import "time"

// Testament classifies a book as Old or New Testament.
type Testament string

const (
	TestamentOld Testament = "OLD"
	TestamentNew Testament = "NEW"
)

// Book represents one book of the corpus.
// IDs are assigned sequentially (1-based) during ingestion.
type Book struct {
	ID           int
	Name         string
	Testament    Testament
	Abbreviation string // 3-letter abbreviation, e.g. "Gen"
	ChapterCount int    // Number of chapters parsed for this book
}

// Chapter represents one chapter within a book.
// IDs are globally unique across the whole corpus.
type Chapter struct {
	ID            int
	BookID        int // Foreign key to Book
	ChapterNumber int // 1-based, local to the owning book
}

// Verse represents one verse within a chapter.
// IDs are globally unique across the whole corpus.
type Verse struct {
	ID          int
	ChapterID   int // Foreign key to Chapter
	VerseNumber int // 1-based, local to the owning chapter
	Text        string
	Delivered   bool
	DeliveredAt *time.Time // Set when the verse is first delivered
}

// PrayerSession is one entry in the append-only prayer log.
type PrayerSession struct {
	ID            int64     // Auto-assigned by the store
	ScheduledTime string    // HH:MM the session was scheduled for ("00:00" for ad hoc)
	PrayedAt      time.Time // When the user actually prayed
	LoggedAt      time.Time // When the entry was recorded
	PointsEarned  int
	StreakDay     int    // Streak-day value at time of logging
	ManualEntry   bool   // Manual entry vs. system-detected
	Date          string // YYYY-MM-DD the session counts toward
}

// AchievementCategory groups achievements for display.
type AchievementCategory string

const (
	CategoryStreak      AchievementCategory = "STREAK"
	CategoryConsistency AchievementCategory = "CONSISTENCY"
	CategoryMilestone   AchievementCategory = "MILESTONE"
)

// Achievement is one entry of the pre-seeded achievement catalog.
// The unlocked flag is monotonic: it never transitions back to false.
type Achievement struct {
	ID            string
	Title         string
	Description   string
	Icon          string
	RequiredValue int // Threshold, e.g. 7 for a 7-day streak
	Category      AchievementCategory
	Unlocked      bool
	UnlockedAt    *time.Time
	PointsReward  int
}

// User is a locally stored user record. The ID comes from the external
// identity provider. At most one user is signed in at any time.
type User struct {
	ID                string
	Email             string
	DisplayName       string
	PhotoURL          string
	SignedIn          bool
	LastSyncAt        *time.Time
	TotalPrayerPoints int
	CurrentStreak     int
	LongestStreak     int
}
