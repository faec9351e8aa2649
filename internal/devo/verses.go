package devo

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"holyverses/internal/model"
)

// fallbackTerms are the search terms the fallback selector draws from once
// every verse has been delivered.
var fallbackTerms = []string{"God", "Lord", "love", "peace", "hope", "faith", "joy", "light"}

// fallbackSearchLimit caps how many matches the fallback selector considers.
const fallbackSearchLimit = 50

// markRetries bounds how often the random selector retries after losing the
// race to mark its pick delivered.
const markRetries = 3

// SelectDailyVerse returns the verse of the day for the given date
// (formatted YYYY-MM-DD).
//
// While undelivered verses remain, it picks one uniformly at random and marks
// it delivered, so each verse is seen exactly once before any repeats. Once
// the pool is exhausted it falls back to a date-seeded thematic pick, which is
// deterministic per date and does not touch delivery state.
func (s *DevoService) SelectDailyVerse(date string) (*model.Verse, error) {
	for i := 0; i < markRetries; i++ {
		verse, err := s.database.RandomUndeliveredVerse()
		if err != nil {
			return nil, fmt.Errorf("selecting undelivered verse: %w", err)
		}
		if verse == nil {
			break // Pool exhausted
		}

		now := s.clock.Now()
		marked, err := s.database.MarkVerseDelivered(verse.ID, now)
		if err != nil {
			return nil, fmt.Errorf("marking verse %d delivered: %w", verse.ID, err)
		}
		if !marked {
			// Another caller delivered this verse between our read and our
			// mark. Draw again.
			continue
		}

		verse.Delivered = true
		verse.DeliveredAt = &now
		s.logger.Info("daily verse selected", "verse", verse.ID, "date", date)
		return verse, nil
	}

	return s.fallbackVerse(date)
}

// fallbackVerse picks a verse deterministically from the date: the date
// string seeds a PRNG which chooses a search term and then one of the
// matching verses. Same date, same verse.
func (s *DevoService) fallbackVerse(date string) (*model.Verse, error) {
	rng := rand.New(rand.NewSource(dateSeed(date)))

	term := fallbackTerms[rng.Intn(len(fallbackTerms))]
	matches, err := s.database.SearchVerses(term, fallbackSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching verses for %q: %w", term, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no verse matches %q: %w", term, ErrNoVerseAvailable)
	}

	verse := matches[rng.Intn(len(matches))]
	s.logger.Info("fallback verse selected", "verse", verse.ID, "date", date, "term", term)
	return verse, nil
}

// dateSeed derives a stable PRNG seed from a date string.
func dateSeed(date string) int64 {
	h := fnv.New64a()
	h.Write([]byte(date))
	return int64(h.Sum64())
}

// MarkDelivered marks the verse with the given id as delivered now.
// Returns ErrNotFound when no such verse exists; marking an already
// delivered verse is a no-op.
func (s *DevoService) MarkDelivered(id int) error {
	marked, err := s.database.MarkVerseDelivered(id, s.clock.Now())
	if err != nil {
		return err
	}
	if !marked {
		verse, err := s.database.FindVerseByID(id)
		if err != nil {
			return err
		}
		if verse == nil {
			return fmt.Errorf("verse %d: %w", id, ErrNotFound)
		}
		// Already delivered: keep the original timestamp.
	}
	return nil
}

// DeliverDailyVerse selects today's verse and sends it out on the daily
// verse notification channel. This is the scheduled job's entry point.
func (s *DevoService) DeliverDailyVerse() error {
	date := s.clock.Now().Format("2006-01-02")
	verse, err := s.SelectDailyVerse(date)
	if err != nil {
		return err
	}

	body, err := s.verseReference(verse)
	if err != nil {
		return err
	}
	s.notifier.Notify(ChannelDailyVerse, "Daily Verse", body)
	return nil
}

// verseReference formats a verse as "Text (Book Chapter:Verse)".
func (s *DevoService) verseReference(verse *model.Verse) (string, error) {
	chapter, err := s.database.FindChapterByID(verse.ChapterID)
	if err != nil {
		return "", fmt.Errorf("resolving chapter %d: %w", verse.ChapterID, err)
	}
	if chapter == nil {
		return verse.Text, nil
	}
	book, err := s.database.FindBookByID(chapter.BookID)
	if err != nil {
		return "", fmt.Errorf("resolving book %d: %w", chapter.BookID, err)
	}
	if book == nil {
		return verse.Text, nil
	}
	return fmt.Sprintf("%s (%s %d:%d)", verse.Text, book.Name, chapter.ChapterNumber, verse.VerseNumber), nil
}

// Browse read models

func (s *DevoService) Books() ([]*model.Book, error) {
	return s.database.ListBooks()
}

func (s *DevoService) BooksByTestament(t model.Testament) ([]*model.Book, error) {
	return s.database.ListBooksByTestament(t)
}

func (s *DevoService) Chapters(bookID int) ([]*model.Chapter, error) {
	return s.database.ListChaptersByBook(bookID)
}

func (s *DevoService) Verses(chapterID int) ([]*model.Verse, error) {
	return s.database.ListVersesByChapter(chapterID)
}

func (s *DevoService) UndeliveredCount() (int, error) {
	return s.database.UndeliveredVerseCount()
}
