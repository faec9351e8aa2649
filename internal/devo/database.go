package devo

import (
	"time"

	"holyverses/internal/model"
)

// Database provides an interface for the relational store that owns all
// persisted entities. Implementations must make ReplaceCorpus a single
// transaction and MarkVerseDelivered / UnlockAchievement / SignInUser
// conditional updates checked for affected rows.
type Database interface {
	// Corpus operations

	// ReplaceCorpus deletes all books, chapters and verses and inserts the
	// given records, in dependency order, inside one transaction. A failure
	// leaves the previous corpus untouched.
	ReplaceCorpus(books []*model.Book, chapters []*model.Chapter, verses []*model.Verse) error

	// Book operations

	// ListBooks returns all books ordered by id.
	ListBooks() ([]*model.Book, error)

	// ListBooksByTestament returns the books of one testament ordered by id.
	ListBooksByTestament(t model.Testament) ([]*model.Book, error)

	// FindBookByID returns nil (not an error) when the book is absent.
	FindBookByID(id int) (*model.Book, error)

	// Chapter operations

	// ListChaptersByBook returns a book's chapters ordered by chapter number.
	ListChaptersByBook(bookID int) ([]*model.Chapter, error)

	// FindChapterByID returns nil when the chapter is absent.
	FindChapterByID(id int) (*model.Chapter, error)

	// Verse operations

	// ListVersesByChapter returns a chapter's verses ordered by verse number.
	ListVersesByChapter(chapterID int) ([]*model.Verse, error)

	// FindVerseByID returns nil when the verse is absent.
	FindVerseByID(id int) (*model.Verse, error)

	// RandomUndeliveredVerse returns one undelivered verse selected uniformly
	// at random, or nil when the undelivered pool is empty.
	RandomUndeliveredVerse() (*model.Verse, error)

	// UndeliveredVerseCount returns the size of the undelivered pool.
	UndeliveredVerseCount() (int, error)

	// SearchVerses returns verses whose text contains query, ordered by id,
	// capped at limit. The ordering is part of the contract: the daily-verse
	// fallback depends on it for date determinism.
	SearchVerses(query string, limit int) ([]*model.Verse, error)

	// MarkVerseDelivered sets the delivered flag and timestamp if and only if
	// the verse is currently undelivered. Returns whether a row changed, so
	// two concurrent callers cannot both deliver the same verse.
	MarkVerseDelivered(id int, at time.Time) (bool, error)

	// Prayer log operations

	// InsertPrayerSession appends a session and fills in its assigned ID.
	InsertPrayerSession(session *model.PrayerSession) error

	// UpdatePrayerSession rewrites an existing session (explicit user edit).
	UpdatePrayerSession(session *model.PrayerSession) error

	// DeletePrayerSession removes a session by id (explicit user delete).
	DeletePrayerSession(id int64) error

	// ListPrayerSessions returns up to limit sessions, newest first by
	// actual-prayed time.
	ListPrayerSessions(limit int) ([]*model.PrayerSession, error)

	// ListPrayerSessionsByDate returns the sessions counting toward one
	// calendar date (YYYY-MM-DD).
	ListPrayerSessionsByDate(date string) ([]*model.PrayerSession, error)

	// ListPrayerSessionsByDateRange returns sessions with start <= date <= end.
	ListPrayerSessionsByDateRange(start, end string) ([]*model.PrayerSession, error)

	// PrayerCountForDate returns the number of sessions for one date.
	PrayerCountForDate(date string) (int, error)

	// TotalPrayerCount returns the total number of logged sessions.
	TotalPrayerCount() (int, error)

	// TotalPoints returns the sum of points earned, 0 when the log is empty.
	TotalPoints() (int, error)

	// MaxStreakDay returns the largest streak-day value ever recorded,
	// 0 when the log is empty.
	MaxStreakDay() (int, error)

	// DistinctPrayerDates returns the distinct session dates, newest first.
	DistinctPrayerDates() ([]string, error)

	// Achievement operations

	// ListAchievements returns the whole catalog ordered by required value.
	ListAchievements() ([]*model.Achievement, error)

	// ListUnlockedAchievements returns the unlocked subset ordered by
	// required value.
	ListUnlockedAchievements() ([]*model.Achievement, error)

	// FindAchievementByID returns nil when the achievement is absent.
	FindAchievementByID(id string) (*model.Achievement, error)

	// UnlockAchievement sets the unlocked flag and timestamp if and only if
	// the achievement is currently locked. Returns whether a row changed;
	// unlocking an unlocked achievement is a no-op and does not re-stamp
	// the timestamp.
	UnlockAchievement(id string, at time.Time) (bool, error)

	// User operations

	// FindUserByID returns nil when the user is absent.
	FindUserByID(id string) (*model.User, error)

	// CurrentUser returns the signed-in user, or nil when nobody is.
	CurrentUser() (*model.User, error)

	// UpsertUser inserts or replaces a user record.
	UpsertUser(user *model.User) error

	// SignInUser clears every signed-in flag and then sets it on the given
	// user, in one transaction, preserving the at-most-one invariant.
	// Returns whether the user existed.
	SignInUser(id string) (bool, error)

	// SignOutAllUsers clears the signed-in flag on every user.
	SignOutAllUsers() error

	// DeleteUser removes a user record.
	DeleteUser(id string) error

	// Maintenance

	// BackupTo writes a consistent copy of the database to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}
