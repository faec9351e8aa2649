package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"holyverses/internal/model"
)

func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	sqlDB, err := OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := sqlDB.Exec(Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := NewSQLiteDatabaseFromDB(sqlDB)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedCorpus loads a minimal two-book corpus: Genesis (2 chapters, 3 verses)
// and Matthew (1 chapter, 1 verse).
func seedCorpus(t *testing.T, db *SQLiteDatabase) {
	t.Helper()

	books := []*model.Book{
		{ID: 1, Name: "Genesis", Testament: model.TestamentOld, Abbreviation: "Gen", ChapterCount: 2},
		{ID: 2, Name: "Matthew", Testament: model.TestamentNew, Abbreviation: "Mat", ChapterCount: 1},
	}
	chapters := []*model.Chapter{
		{ID: 1, BookID: 1, ChapterNumber: 1},
		{ID: 2, BookID: 1, ChapterNumber: 2},
		{ID: 3, BookID: 2, ChapterNumber: 1},
	}
	verses := []*model.Verse{
		{ID: 1, ChapterID: 1, VerseNumber: 1, Text: "In the beginning God created the heaven and the earth."},
		{ID: 2, ChapterID: 1, VerseNumber: 2, Text: "And the earth was without form, and void."},
		{ID: 3, ChapterID: 2, VerseNumber: 1, Text: "Thus the heavens and the earth were finished."},
		{ID: 4, ChapterID: 3, VerseNumber: 1, Text: "The book of the generation of Jesus Christ."},
	}
	if err := db.ReplaceCorpus(books, chapters, verses); err != nil {
		t.Fatalf("ReplaceCorpus() error = %v", err)
	}
}

func TestReplaceCorpus(t *testing.T) {
	db := newTestDB(t)
	seedCorpus(t, db)

	t.Run("loads all records", func(t *testing.T) {
		books, err := db.ListBooks()
		if err != nil {
			t.Fatalf("ListBooks() error = %v", err)
		}
		if len(books) != 2 {
			t.Fatalf("len(books) = %d, want 2", len(books))
		}
		if books[0].Name != "Genesis" || books[1].Name != "Matthew" {
			t.Errorf("books = %v, %v", books[0].Name, books[1].Name)
		}

		count, err := db.UndeliveredVerseCount()
		if err != nil {
			t.Fatalf("UndeliveredVerseCount() error = %v", err)
		}
		if count != 4 {
			t.Errorf("undelivered count = %d, want 4", count)
		}
	})

	t.Run("replaces the previous corpus entirely", func(t *testing.T) {
		books := []*model.Book{
			{ID: 1, Name: "Psalms", Testament: model.TestamentOld, Abbreviation: "Psa", ChapterCount: 1},
		}
		chapters := []*model.Chapter{{ID: 1, BookID: 1, ChapterNumber: 1}}
		verses := []*model.Verse{{ID: 1, ChapterID: 1, VerseNumber: 1, Text: "Blessed is the man."}}

		if err := db.ReplaceCorpus(books, chapters, verses); err != nil {
			t.Fatalf("ReplaceCorpus() error = %v", err)
		}

		got, err := db.ListBooks()
		if err != nil {
			t.Fatalf("ListBooks() error = %v", err)
		}
		if len(got) != 1 || got[0].Name != "Psalms" {
			t.Errorf("books after replace = %v, want only Psalms", got)
		}
	})
}

func TestBookQueries(t *testing.T) {
	db := newTestDB(t)
	seedCorpus(t, db)

	t.Run("by testament", func(t *testing.T) {
		old, err := db.ListBooksByTestament(model.TestamentOld)
		if err != nil {
			t.Fatalf("ListBooksByTestament() error = %v", err)
		}
		if len(old) != 1 || old[0].Name != "Genesis" {
			t.Errorf("OLD books = %v, want [Genesis]", old)
		}
	})

	t.Run("find absent returns nil", func(t *testing.T) {
		book, err := db.FindBookByID(99)
		if err != nil {
			t.Fatalf("FindBookByID() error = %v", err)
		}
		if book != nil {
			t.Errorf("FindBookByID(99) = %v, want nil", book)
		}
	})

	t.Run("chapters ordered by number", func(t *testing.T) {
		chapters, err := db.ListChaptersByBook(1)
		if err != nil {
			t.Fatalf("ListChaptersByBook() error = %v", err)
		}
		if len(chapters) != 2 {
			t.Fatalf("len(chapters) = %d, want 2", len(chapters))
		}
		if chapters[0].ChapterNumber != 1 || chapters[1].ChapterNumber != 2 {
			t.Errorf("chapter numbers = %d, %d", chapters[0].ChapterNumber, chapters[1].ChapterNumber)
		}
	})

	t.Run("verses by chapter", func(t *testing.T) {
		verses, err := db.ListVersesByChapter(1)
		if err != nil {
			t.Fatalf("ListVersesByChapter() error = %v", err)
		}
		if len(verses) != 2 {
			t.Errorf("len(verses) = %d, want 2", len(verses))
		}
	})
}

func TestMarkVerseDelivered(t *testing.T) {
	db := newTestDB(t)
	seedCorpus(t, db)

	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	marked, err := db.MarkVerseDelivered(1, at)
	if err != nil {
		t.Fatalf("MarkVerseDelivered() error = %v", err)
	}
	if !marked {
		t.Fatal("MarkVerseDelivered() = false, want true")
	}

	verse, err := db.FindVerseByID(1)
	if err != nil {
		t.Fatalf("FindVerseByID() error = %v", err)
	}
	if !verse.Delivered {
		t.Error("Delivered = false, want true")
	}
	if verse.DeliveredAt == nil || !verse.DeliveredAt.Equal(at) {
		t.Errorf("DeliveredAt = %v, want %v", verse.DeliveredAt, at)
	}

	// Second mark is a no-op and preserves the original timestamp.
	later := at.Add(24 * time.Hour)
	marked, err = db.MarkVerseDelivered(1, later)
	if err != nil {
		t.Fatalf("MarkVerseDelivered() second call error = %v", err)
	}
	if marked {
		t.Error("second MarkVerseDelivered() = true, want false")
	}
	verse, _ = db.FindVerseByID(1)
	if !verse.DeliveredAt.Equal(at) {
		t.Errorf("DeliveredAt re-stamped to %v, want %v", verse.DeliveredAt, at)
	}

	count, err := db.UndeliveredVerseCount()
	if err != nil {
		t.Fatalf("UndeliveredVerseCount() error = %v", err)
	}
	if count != 3 {
		t.Errorf("undelivered count = %d, want 3", count)
	}
}

func TestRandomUndeliveredVerse(t *testing.T) {
	db := newTestDB(t)
	seedCorpus(t, db)

	at := time.Now().UTC()
	seen := make(map[int]bool)
	for i := 0; i < 4; i++ {
		verse, err := db.RandomUndeliveredVerse()
		if err != nil {
			t.Fatalf("RandomUndeliveredVerse() error = %v", err)
		}
		if verse == nil {
			t.Fatalf("pool exhausted after %d draws, want 4", i)
		}
		if seen[verse.ID] {
			t.Fatalf("verse %d drawn twice", verse.ID)
		}
		seen[verse.ID] = true

		if _, err := db.MarkVerseDelivered(verse.ID, at); err != nil {
			t.Fatalf("MarkVerseDelivered() error = %v", err)
		}
	}

	verse, err := db.RandomUndeliveredVerse()
	if err != nil {
		t.Fatalf("RandomUndeliveredVerse() error = %v", err)
	}
	if verse != nil {
		t.Errorf("RandomUndeliveredVerse() after exhaustion = %v, want nil", verse)
	}
}

func TestSearchVerses(t *testing.T) {
	db := newTestDB(t)
	seedCorpus(t, db)

	t.Run("ordered by id", func(t *testing.T) {
		matches, err := db.SearchVerses("the", 50)
		if err != nil {
			t.Fatalf("SearchVerses() error = %v", err)
		}
		if len(matches) != 4 {
			t.Fatalf("len(matches) = %d, want 4", len(matches))
		}
		for i := 1; i < len(matches); i++ {
			if matches[i].ID <= matches[i-1].ID {
				t.Errorf("matches not ordered by id: %d after %d", matches[i].ID, matches[i-1].ID)
			}
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		matches, err := db.SearchVerses("the", 2)
		if err != nil {
			t.Fatalf("SearchVerses() error = %v", err)
		}
		if len(matches) != 2 {
			t.Errorf("len(matches) = %d, want 2", len(matches))
		}
	})

	t.Run("no matches", func(t *testing.T) {
		matches, err := db.SearchVerses("zebra", 50)
		if err != nil {
			t.Fatalf("SearchVerses() error = %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("len(matches) = %d, want 0", len(matches))
		}
	})
}

func TestPrayerSessions(t *testing.T) {
	db := newTestDB(t)

	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	insert := func(date string, streakDay int) *model.PrayerSession {
		t.Helper()
		s := &model.PrayerSession{
			ScheduledTime: "07:00",
			PrayedAt:      now,
			LoggedAt:      now,
			PointsEarned:  10,
			StreakDay:     streakDay,
			Date:          date,
		}
		if err := db.InsertPrayerSession(s); err != nil {
			t.Fatalf("InsertPrayerSession() error = %v", err)
		}
		return s
	}

	t.Run("insert assigns ids", func(t *testing.T) {
		s1 := insert("2024-01-14", 1)
		s2 := insert("2024-01-15", 2)
		if s1.ID == 0 || s2.ID == 0 || s1.ID == s2.ID {
			t.Errorf("ids = %d, %d, want distinct non-zero", s1.ID, s2.ID)
		}
	})

	t.Run("aggregates", func(t *testing.T) {
		count, err := db.TotalPrayerCount()
		if err != nil {
			t.Fatalf("TotalPrayerCount() error = %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}

		points, err := db.TotalPoints()
		if err != nil {
			t.Fatalf("TotalPoints() error = %v", err)
		}
		if points != 20 {
			t.Errorf("points = %d, want 20", points)
		}

		max, err := db.MaxStreakDay()
		if err != nil {
			t.Fatalf("MaxStreakDay() error = %v", err)
		}
		if max != 2 {
			t.Errorf("max streak day = %d, want 2", max)
		}

		dates, err := db.DistinctPrayerDates()
		if err != nil {
			t.Fatalf("DistinctPrayerDates() error = %v", err)
		}
		want := []string{"2024-01-15", "2024-01-14"}
		if len(dates) != 2 || dates[0] != want[0] || dates[1] != want[1] {
			t.Errorf("dates = %v, want %v", dates, want)
		}
	})

	t.Run("by date and range", func(t *testing.T) {
		forDate, err := db.ListPrayerSessionsByDate("2024-01-15")
		if err != nil {
			t.Fatalf("ListPrayerSessionsByDate() error = %v", err)
		}
		if len(forDate) != 1 {
			t.Errorf("sessions for date = %d, want 1", len(forDate))
		}

		inRange, err := db.ListPrayerSessionsByDateRange("2024-01-14", "2024-01-15")
		if err != nil {
			t.Fatalf("ListPrayerSessionsByDateRange() error = %v", err)
		}
		if len(inRange) != 2 {
			t.Errorf("sessions in range = %d, want 2", len(inRange))
		}

		n, err := db.PrayerCountForDate("2024-01-14")
		if err != nil {
			t.Fatalf("PrayerCountForDate() error = %v", err)
		}
		if n != 1 {
			t.Errorf("count for date = %d, want 1", n)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		s := insert("2024-01-16", 3)

		s.PointsEarned = 25
		if err := db.UpdatePrayerSession(s); err != nil {
			t.Fatalf("UpdatePrayerSession() error = %v", err)
		}
		got, err := db.ListPrayerSessionsByDate("2024-01-16")
		if err != nil {
			t.Fatalf("ListPrayerSessionsByDate() error = %v", err)
		}
		if got[0].PointsEarned != 25 {
			t.Errorf("PointsEarned = %d, want 25", got[0].PointsEarned)
		}

		if err := db.DeletePrayerSession(s.ID); err != nil {
			t.Fatalf("DeletePrayerSession() error = %v", err)
		}
		got, _ = db.ListPrayerSessionsByDate("2024-01-16")
		if len(got) != 0 {
			t.Errorf("sessions after delete = %d, want 0", len(got))
		}
	})

	t.Run("update missing session fails", func(t *testing.T) {
		err := db.UpdatePrayerSession(&model.PrayerSession{ID: 9999, Date: "2024-01-01", PrayedAt: now, LoggedAt: now})
		if err == nil {
			t.Error("UpdatePrayerSession() error = nil, want not found")
		}
	})
}

func TestAchievements(t *testing.T) {
	db := newTestDB(t)

	t.Run("catalog is seeded", func(t *testing.T) {
		all, err := db.ListAchievements()
		if err != nil {
			t.Fatalf("ListAchievements() error = %v", err)
		}
		if len(all) != 7 {
			t.Fatalf("len(achievements) = %d, want 7", len(all))
		}
		for _, a := range all {
			if a.Unlocked {
				t.Errorf("achievement %s seeded unlocked", a.ID)
			}
		}
	})

	t.Run("unlock is conditional and idempotent", func(t *testing.T) {
		at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

		fresh, err := db.UnlockAchievement("first_prayer", at)
		if err != nil {
			t.Fatalf("UnlockAchievement() error = %v", err)
		}
		if !fresh {
			t.Fatal("first unlock = false, want true")
		}

		fresh, err = db.UnlockAchievement("first_prayer", at.Add(time.Hour))
		if err != nil {
			t.Fatalf("UnlockAchievement() second call error = %v", err)
		}
		if fresh {
			t.Error("second unlock = true, want false")
		}

		a, err := db.FindAchievementByID("first_prayer")
		if err != nil {
			t.Fatalf("FindAchievementByID() error = %v", err)
		}
		if !a.Unlocked {
			t.Error("Unlocked = false, want true")
		}
		if a.UnlockedAt == nil || !a.UnlockedAt.Equal(at) {
			t.Errorf("UnlockedAt = %v, want %v", a.UnlockedAt, at)
		}

		unlocked, err := db.ListUnlockedAchievements()
		if err != nil {
			t.Fatalf("ListUnlockedAchievements() error = %v", err)
		}
		if len(unlocked) != 1 || unlocked[0].ID != "first_prayer" {
			t.Errorf("unlocked = %v, want [first_prayer]", unlocked)
		}
	})

	t.Run("unknown id affects nothing", func(t *testing.T) {
		fresh, err := db.UnlockAchievement("no_such", time.Now())
		if err != nil {
			t.Fatalf("UnlockAchievement() error = %v", err)
		}
		if fresh {
			t.Error("unlock of unknown id = true, want false")
		}
	})
}

func TestUsers(t *testing.T) {
	db := newTestDB(t)

	alice := &model.User{ID: "u1", Email: "alice@example.com", DisplayName: "Alice"}
	bob := &model.User{ID: "u2", Email: "bob@example.com"}

	if err := db.UpsertUser(alice); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if err := db.UpsertUser(bob); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}

	t.Run("at most one signed in", func(t *testing.T) {
		ok, err := db.SignInUser("u1")
		if err != nil {
			t.Fatalf("SignInUser() error = %v", err)
		}
		if !ok {
			t.Fatal("SignInUser(u1) = false, want true")
		}

		ok, err = db.SignInUser("u2")
		if err != nil {
			t.Fatalf("SignInUser() error = %v", err)
		}
		if !ok {
			t.Fatal("SignInUser(u2) = false, want true")
		}

		current, err := db.CurrentUser()
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if current == nil || current.ID != "u2" {
			t.Errorf("CurrentUser() = %v, want u2", current)
		}

		u1, _ := db.FindUserByID("u1")
		if u1.SignedIn {
			t.Error("u1 still signed in after u2 signed in")
		}
	})

	t.Run("sign in unknown user", func(t *testing.T) {
		ok, err := db.SignInUser("ghost")
		if err != nil {
			t.Fatalf("SignInUser() error = %v", err)
		}
		if ok {
			t.Error("SignInUser(ghost) = true, want false")
		}
	})

	t.Run("sign out all", func(t *testing.T) {
		if err := db.SignOutAllUsers(); err != nil {
			t.Fatalf("SignOutAllUsers() error = %v", err)
		}
		current, err := db.CurrentUser()
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if current != nil {
			t.Errorf("CurrentUser() after sign out = %v, want nil", current)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := db.DeleteUser("u2"); err != nil {
			t.Fatalf("DeleteUser() error = %v", err)
		}
		u, err := db.FindUserByID("u2")
		if err != nil {
			t.Fatalf("FindUserByID() error = %v", err)
		}
		if u != nil {
			t.Errorf("FindUserByID(u2) after delete = %v, want nil", u)
		}
	})
}

func TestBackupTo(t *testing.T) {
	db := newTestDB(t)
	seedCorpus(t, db)

	dest := filepath.Join(t.TempDir(), "snapshot.db")
	if err := db.BackupTo(dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("snapshot is empty")
	}

	// The snapshot is a complete, openable database.
	copied, err := NewSQLiteDatabase(dest)
	if err != nil {
		t.Fatalf("opening snapshot: %v", err)
	}
	defer copied.Close()

	books, err := copied.ListBooks()
	if err != nil {
		t.Fatalf("ListBooks() on snapshot error = %v", err)
	}
	if len(books) != 2 {
		t.Errorf("snapshot books = %d, want 2", len(books))
	}
}
