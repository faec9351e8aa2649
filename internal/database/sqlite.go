package database

import (
	"database/sql"
	"fmt"
	"time"

	"holyverses/internal/database/migrations"
	"holyverses/internal/devo"
	"holyverses/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the devo.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

var _ devo.Database = (*SQLiteDatabase)(nil)

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db, path: ""}
}

// OpenConnection opens and configures a SQLite database connection with
// appropriate PRAGMAs. Exported for use in tools and tests that need a
// properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// DB returns the underlying connection for migration tooling.
func (s *SQLiteDatabase) DB() *sql.DB {
	return s.db
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Corpus operations

// ReplaceCorpus wipes and repopulates the corpus tables in one transaction.
// Books go in before chapters, chapters before verses, so foreign keys hold
// at every point; a failure anywhere rolls the whole replace back.
func (s *SQLiteDatabase) ReplaceCorpus(books []*model.Book, chapters []*model.Chapter, verses []*model.Verse) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete children first; the cascade would handle it, but being explicit
	// keeps the dependency order readable.
	for _, table := range []string{"verses", "chapters", "books"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	insertBook, err := tx.Prepare("INSERT INTO books (id, name, testament, abbreviation, chapter_count) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing book insert: %w", err)
	}
	defer insertBook.Close()
	for _, b := range books {
		if _, err := insertBook.Exec(b.ID, b.Name, string(b.Testament), b.Abbreviation, b.ChapterCount); err != nil {
			return fmt.Errorf("inserting book %d: %w", b.ID, err)
		}
	}

	insertChapter, err := tx.Prepare("INSERT INTO chapters (id, book_id, chapter_number) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing chapter insert: %w", err)
	}
	defer insertChapter.Close()
	for _, c := range chapters {
		if _, err := insertChapter.Exec(c.ID, c.BookID, c.ChapterNumber); err != nil {
			return fmt.Errorf("inserting chapter %d: %w", c.ID, err)
		}
	}

	insertVerse, err := tx.Prepare("INSERT INTO verses (id, chapter_id, verse_number, text, is_delivered, delivered_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing verse insert: %w", err)
	}
	defer insertVerse.Close()
	for _, v := range verses {
		if _, err := insertVerse.Exec(v.ID, v.ChapterID, v.VerseNumber, v.Text, v.Delivered, nullableTime(v.DeliveredAt)); err != nil {
			return fmt.Errorf("inserting verse %d: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing corpus replace: %w", err)
	}
	return nil
}

// Book operations

const bookColumns = "id, name, testament, abbreviation, chapter_count"

func (s *SQLiteDatabase) ListBooks() ([]*model.Book, error) {
	rows, err := s.db.Query("SELECT " + bookColumns + " FROM books ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()
	return collectBooks(rows)
}

func (s *SQLiteDatabase) ListBooksByTestament(t model.Testament) ([]*model.Book, error) {
	rows, err := s.db.Query("SELECT "+bookColumns+" FROM books WHERE testament = ? ORDER BY id", string(t))
	if err != nil {
		return nil, fmt.Errorf("listing books by testament: %w", err)
	}
	defer rows.Close()
	return collectBooks(rows)
}

func (s *SQLiteDatabase) FindBookByID(id int) (*model.Book, error) {
	row := s.db.QueryRow("SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding book %d: %w", id, err)
	}
	return book, nil
}

// Chapter operations

func (s *SQLiteDatabase) ListChaptersByBook(bookID int) ([]*model.Chapter, error) {
	rows, err := s.db.Query("SELECT id, book_id, chapter_number FROM chapters WHERE book_id = ? ORDER BY chapter_number", bookID)
	if err != nil {
		return nil, fmt.Errorf("listing chapters for book %d: %w", bookID, err)
	}
	defer rows.Close()

	var chapters []*model.Chapter
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(&c.ID, &c.BookID, &c.ChapterNumber); err != nil {
			return nil, fmt.Errorf("scanning chapter: %w", err)
		}
		chapters = append(chapters, &c)
	}
	return chapters, rows.Err()
}

func (s *SQLiteDatabase) FindChapterByID(id int) (*model.Chapter, error) {
	var c model.Chapter
	err := s.db.QueryRow("SELECT id, book_id, chapter_number FROM chapters WHERE id = ?", id).
		Scan(&c.ID, &c.BookID, &c.ChapterNumber)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding chapter %d: %w", id, err)
	}
	return &c, nil
}

// Verse operations

const verseColumns = "id, chapter_id, verse_number, text, is_delivered, delivered_at"

func (s *SQLiteDatabase) ListVersesByChapter(chapterID int) ([]*model.Verse, error) {
	rows, err := s.db.Query("SELECT "+verseColumns+" FROM verses WHERE chapter_id = ? ORDER BY verse_number", chapterID)
	if err != nil {
		return nil, fmt.Errorf("listing verses for chapter %d: %w", chapterID, err)
	}
	defer rows.Close()
	return collectVerses(rows)
}

func (s *SQLiteDatabase) FindVerseByID(id int) (*model.Verse, error) {
	row := s.db.QueryRow("SELECT "+verseColumns+" FROM verses WHERE id = ?", id)
	verse, err := scanVerse(row)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding verse %d: %w", id, err)
	}
	return verse, nil
}

func (s *SQLiteDatabase) RandomUndeliveredVerse() (*model.Verse, error) {
	row := s.db.QueryRow("SELECT " + verseColumns + " FROM verses WHERE is_delivered = 0 ORDER BY RANDOM() LIMIT 1")
	verse, err := scanVerse(row)
	if err == sql.ErrNoRows {
		return nil, nil // Undelivered pool is empty
	}
	if err != nil {
		return nil, fmt.Errorf("selecting random undelivered verse: %w", err)
	}
	return verse, nil
}

func (s *SQLiteDatabase) UndeliveredVerseCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM verses WHERE is_delivered = 0").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting undelivered verses: %w", err)
	}
	return count, nil
}

func (s *SQLiteDatabase) SearchVerses(query string, limit int) ([]*model.Verse, error) {
	// Ordered by id: the daily-verse fallback requires a stable ordering
	// for its date-seeded pick to be repeatable.
	rows, err := s.db.Query(
		"SELECT "+verseColumns+" FROM verses WHERE text LIKE '%' || ? || '%' ORDER BY id LIMIT ?",
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching verses for %q: %w", query, err)
	}
	defer rows.Close()
	return collectVerses(rows)
}

func (s *SQLiteDatabase) MarkVerseDelivered(id int, at time.Time) (bool, error) {
	// Conditional on is_delivered = 0 so the selecting read and the mark are
	// atomic: of two concurrent callers, exactly one sees an affected row.
	res, err := s.db.Exec("UPDATE verses SET is_delivered = 1, delivered_at = ? WHERE id = ? AND is_delivered = 0", at, id)
	if err != nil {
		return false, fmt.Errorf("marking verse %d delivered: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking affected rows: %w", err)
	}
	return affected == 1, nil
}

// Prayer log operations

const sessionColumns = "id, scheduled_time, prayed_at, logged_at, points_earned, streak_day, is_manual, date"

func (s *SQLiteDatabase) InsertPrayerSession(session *model.PrayerSession) error {
	res, err := s.db.Exec(
		"INSERT INTO prayer_sessions (scheduled_time, prayed_at, logged_at, points_earned, streak_day, is_manual, date) VALUES (?, ?, ?, ?, ?, ?, ?)",
		session.ScheduledTime, session.PrayedAt, session.LoggedAt,
		session.PointsEarned, session.StreakDay, session.ManualEntry, session.Date)
	if err != nil {
		return fmt.Errorf("inserting prayer session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted session id: %w", err)
	}
	session.ID = id
	return nil
}

func (s *SQLiteDatabase) UpdatePrayerSession(session *model.PrayerSession) error {
	res, err := s.db.Exec(
		"UPDATE prayer_sessions SET scheduled_time = ?, prayed_at = ?, logged_at = ?, points_earned = ?, streak_day = ?, is_manual = ?, date = ? WHERE id = ?",
		session.ScheduledTime, session.PrayedAt, session.LoggedAt,
		session.PointsEarned, session.StreakDay, session.ManualEntry, session.Date, session.ID)
	if err != nil {
		return fmt.Errorf("updating prayer session %d: %w", session.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("prayer session %d: %w", session.ID, devo.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) DeletePrayerSession(id int64) error {
	if _, err := s.db.Exec("DELETE FROM prayer_sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting prayer session %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteDatabase) ListPrayerSessions(limit int) ([]*model.PrayerSession, error) {
	rows, err := s.db.Query("SELECT "+sessionColumns+" FROM prayer_sessions ORDER BY prayed_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing prayer sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *SQLiteDatabase) ListPrayerSessionsByDate(date string) ([]*model.PrayerSession, error) {
	rows, err := s.db.Query("SELECT "+sessionColumns+" FROM prayer_sessions WHERE date = ? ORDER BY prayed_at DESC", date)
	if err != nil {
		return nil, fmt.Errorf("listing prayer sessions for %s: %w", date, err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *SQLiteDatabase) ListPrayerSessionsByDateRange(start, end string) ([]*model.PrayerSession, error) {
	rows, err := s.db.Query(
		"SELECT "+sessionColumns+" FROM prayer_sessions WHERE date >= ? AND date <= ? ORDER BY prayed_at DESC",
		start, end)
	if err != nil {
		return nil, fmt.Errorf("listing prayer sessions in [%s, %s]: %w", start, end, err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *SQLiteDatabase) PrayerCountForDate(date string) (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM prayer_sessions WHERE date = ?", date).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting prayer sessions for %s: %w", date, err)
	}
	return count, nil
}

func (s *SQLiteDatabase) TotalPrayerCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM prayer_sessions").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting prayer sessions: %w", err)
	}
	return count, nil
}

func (s *SQLiteDatabase) TotalPoints() (int, error) {
	var total int
	// COALESCE: SUM over an empty log is NULL, the contract says 0.
	if err := s.db.QueryRow("SELECT COALESCE(SUM(points_earned), 0) FROM prayer_sessions").Scan(&total); err != nil {
		return 0, fmt.Errorf("summing prayer points: %w", err)
	}
	return total, nil
}

func (s *SQLiteDatabase) MaxStreakDay() (int, error) {
	var max int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(streak_day), 0) FROM prayer_sessions").Scan(&max); err != nil {
		return 0, fmt.Errorf("reading max streak day: %w", err)
	}
	return max, nil
}

func (s *SQLiteDatabase) DistinctPrayerDates() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT date FROM prayer_sessions ORDER BY date DESC")
	if err != nil {
		return nil, fmt.Errorf("listing prayer dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning prayer date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Achievement operations

const achievementColumns = "id, title, description, icon, required_value, category, is_unlocked, unlocked_at, points_reward"

func (s *SQLiteDatabase) ListAchievements() ([]*model.Achievement, error) {
	rows, err := s.db.Query("SELECT " + achievementColumns + " FROM achievements ORDER BY required_value")
	if err != nil {
		return nil, fmt.Errorf("listing achievements: %w", err)
	}
	defer rows.Close()
	return collectAchievements(rows)
}

func (s *SQLiteDatabase) ListUnlockedAchievements() ([]*model.Achievement, error) {
	rows, err := s.db.Query("SELECT " + achievementColumns + " FROM achievements WHERE is_unlocked = 1 ORDER BY required_value")
	if err != nil {
		return nil, fmt.Errorf("listing unlocked achievements: %w", err)
	}
	defer rows.Close()
	return collectAchievements(rows)
}

func (s *SQLiteDatabase) FindAchievementByID(id string) (*model.Achievement, error) {
	row := s.db.QueryRow("SELECT "+achievementColumns+" FROM achievements WHERE id = ?", id)
	a, err := scanAchievement(row)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding achievement %s: %w", id, err)
	}
	return a, nil
}

func (s *SQLiteDatabase) UnlockAchievement(id string, at time.Time) (bool, error) {
	// Conditional on is_unlocked = 0: the unlocked flag is monotonic and the
	// original unlock timestamp is never re-stamped.
	res, err := s.db.Exec("UPDATE achievements SET is_unlocked = 1, unlocked_at = ? WHERE id = ? AND is_unlocked = 0", at, id)
	if err != nil {
		return false, fmt.Errorf("unlocking achievement %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking affected rows: %w", err)
	}
	return affected == 1, nil
}

// User operations

const userColumns = "id, email, display_name, photo_url, is_signed_in, last_sync_at, total_prayer_points, current_streak, longest_streak"

func (s *SQLiteDatabase) FindUserByID(id string) (*model.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding user %s: %w", id, err)
	}
	return u, nil
}

func (s *SQLiteDatabase) CurrentUser() (*model.User, error) {
	row := s.db.QueryRow("SELECT " + userColumns + " FROM users WHERE is_signed_in = 1 LIMIT 1")
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil // Nobody signed in
	}
	if err != nil {
		return nil, fmt.Errorf("finding current user: %w", err)
	}
	return u, nil
}

func (s *SQLiteDatabase) UpsertUser(user *model.User) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.DisplayName, nullableString(user.PhotoURL),
		user.SignedIn, nullableTime(user.LastSyncAt),
		user.TotalPrayerPoints, user.CurrentStreak, user.LongestStreak)
	if err != nil {
		return fmt.Errorf("upserting user %s: %w", user.ID, err)
	}
	return nil
}

func (s *SQLiteDatabase) SignInUser(id string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Clear first, then set: at most one user is signed in at any time.
	if _, err := tx.Exec("UPDATE users SET is_signed_in = 0"); err != nil {
		return false, fmt.Errorf("clearing signed-in flags: %w", err)
	}

	res, err := tx.Exec("UPDATE users SET is_signed_in = 1 WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("signing in user %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing sign-in: %w", err)
	}
	return affected == 1, nil
}

func (s *SQLiteDatabase) SignOutAllUsers() error {
	if _, err := s.db.Exec("UPDATE users SET is_signed_in = 0"); err != nil {
		return fmt.Errorf("signing out users: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteUser(id string) error {
	if _, err := s.db.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	return nil
}

// Maintenance

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database to %s: %w", destPath, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}

// Row mapping

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*model.Book, error) {
	var b model.Book
	var testament string
	if err := row.Scan(&b.ID, &b.Name, &testament, &b.Abbreviation, &b.ChapterCount); err != nil {
		return nil, err
	}
	b.Testament = model.Testament(testament)
	return &b, nil
}

func collectBooks(rows *sql.Rows) ([]*model.Book, error) {
	var books []*model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func scanVerse(row scanner) (*model.Verse, error) {
	var v model.Verse
	var deliveredAt sql.NullTime
	if err := row.Scan(&v.ID, &v.ChapterID, &v.VerseNumber, &v.Text, &v.Delivered, &deliveredAt); err != nil {
		return nil, err
	}
	if deliveredAt.Valid {
		v.DeliveredAt = &deliveredAt.Time
	}
	return &v, nil
}

func collectVerses(rows *sql.Rows) ([]*model.Verse, error) {
	var verses []*model.Verse
	for rows.Next() {
		v, err := scanVerse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning verse: %w", err)
		}
		verses = append(verses, v)
	}
	return verses, rows.Err()
}

func scanSession(row scanner) (*model.PrayerSession, error) {
	var p model.PrayerSession
	if err := row.Scan(&p.ID, &p.ScheduledTime, &p.PrayedAt, &p.LoggedAt,
		&p.PointsEarned, &p.StreakDay, &p.ManualEntry, &p.Date); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectSessions(rows *sql.Rows) ([]*model.PrayerSession, error) {
	var sessions []*model.PrayerSession
	for rows.Next() {
		p, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning prayer session: %w", err)
		}
		sessions = append(sessions, p)
	}
	return sessions, rows.Err()
}

func scanAchievement(row scanner) (*model.Achievement, error) {
	var a model.Achievement
	var category string
	var unlockedAt sql.NullTime
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Icon, &a.RequiredValue,
		&category, &a.Unlocked, &unlockedAt, &a.PointsReward); err != nil {
		return nil, err
	}
	a.Category = model.AchievementCategory(category)
	if unlockedAt.Valid {
		a.UnlockedAt = &unlockedAt.Time
	}
	return &a, nil
}

func collectAchievements(rows *sql.Rows) ([]*model.Achievement, error) {
	var achievements []*model.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	var photoURL sql.NullString
	var lastSync sql.NullTime
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &photoURL, &u.SignedIn,
		&lastSync, &u.TotalPrayerPoints, &u.CurrentStreak, &u.LongestStreak); err != nil {
		return nil, err
	}
	u.PhotoURL = photoURL.String
	if lastSync.Valid {
		u.LastSyncAt = &lastSync.Time
	}
	return &u, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
