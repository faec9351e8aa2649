// Package corpus parses the raw text corpus into normalized book, chapter
// and verse records.
//
// Each document holds one book. The filename encodes the book's canonical
// order and display name ("01 - Genesis - KJV.md"), a line of the form
// "## <Book> Chapter <n>" opens a new chapter, and a line of the form
// "<n> <text>" is a verse belonging to the most recently opened chapter.
package corpus

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"holyverses/internal/model"
)

// oldTestamentBooks is the number of canonical Old Testament books.
// A book order number at or below it classifies the book as OLD.
const oldTestamentBooks = 39

// corpusExtension marks a document as corpus text; anything else is ignored.
const corpusExtension = ".md"

const chapterMarker = " Chapter "

var verseLineRe = regexp.MustCompile(`^\d+ .+`)

// Document is one named raw corpus document.
type Document struct {
	Name    string
	Content []byte
}

// ParseFailure records a document that could not be parsed. Ingestion
// continues with the remaining documents.
type ParseFailure struct {
	Name string
	Err  error
}

// Result holds the normalized output of a corpus parse.
type Result struct {
	Books    []*model.Book
	Chapters []*model.Chapter
	Verses   []*model.Verse
	Failures []ParseFailure
}

// Parse converts the given documents into book, chapter and verse records.
// Documents are processed in filename order so that identifiers follow
// canonical book order; non-corpus documents are skipped. Identifiers are
// assigned from running counters, making them globally unique.
func Parse(docs []Document) *Result {
	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	result := &Result{}

	bookID := 1
	chapterID := 1
	verseID := 1

	for _, doc := range sorted {
		if !strings.HasSuffix(doc.Name, corpusExtension) {
			continue
		}

		book, chapters, verses, err := parseDocument(doc, bookID, chapterID, verseID)
		if err != nil {
			result.Failures = append(result.Failures, ParseFailure{Name: doc.Name, Err: err})
			continue
		}

		result.Books = append(result.Books, book)
		result.Chapters = append(result.Chapters, chapters...)
		result.Verses = append(result.Verses, verses...)

		bookID++
		chapterID += len(chapters)
		verseID += len(verses)
	}

	return result
}

// parseDocument parses one book document. It either succeeds completely or
// reports an error without contributing partial records.
func parseDocument(doc Document, bookID, startChapterID, startVerseID int) (*model.Book, []*model.Chapter, []*model.Verse, error) {
	order, name, err := splitFileName(doc.Name)
	if err != nil {
		return nil, nil, nil, err
	}

	testament := model.TestamentNew
	if order <= oldTestamentBooks {
		testament = model.TestamentOld
	}

	var chapters []*model.Chapter
	var verses []*model.Verse

	chapterID := startChapterID
	verseID := startVerseID
	chapterOpen := false

	for _, line := range strings.Split(string(doc.Content), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "## ") && strings.Contains(line, chapterMarker):
			after := line[strings.LastIndex(line, chapterMarker)+len(chapterMarker):]
			number, err := strconv.Atoi(strings.TrimSpace(after))
			if err != nil {
				continue
			}
			chapters = append(chapters, &model.Chapter{
				ID:            chapterID,
				BookID:        bookID,
				ChapterNumber: number,
			})
			chapterID++
			chapterOpen = true

		case chapterOpen && verseLineRe.MatchString(line):
			space := strings.Index(line, " ")
			number, err := strconv.Atoi(line[:space])
			if err != nil {
				continue
			}
			text := line[space+1:]
			// Verse belongs to the most recently opened chapter.
			verses = append(verses, &model.Verse{
				ID:          verseID,
				ChapterID:   chapterID - 1,
				VerseNumber: number,
				Text:        text,
			})
			verseID++
		}
	}

	book := &model.Book{
		ID:           bookID,
		Name:         name,
		Testament:    testament,
		Abbreviation: Abbreviation(name),
		ChapterCount: len(chapters),
	}
	return book, chapters, verses, nil
}

// splitFileName extracts the book order number and display name from a
// filename of the form "<order> - <Name> - <EditionTag>.<ext>".
func splitFileName(fileName string) (int, string, error) {
	base := strings.TrimSuffix(fileName, corpusExtension)
	parts := strings.Split(base, " - ")
	if len(parts) < 3 {
		return 0, "", fmt.Errorf("filename %q does not match \"<order> - <name> - <edition>\"", fileName)
	}

	order, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, "", fmt.Errorf("filename %q has no leading order number: %w", fileName, err)
	}

	// The name may itself contain " - "; only the first and last segments
	// are order and edition tag.
	name := strings.Join(parts[1:len(parts)-1], " - ")
	if name == "" {
		return 0, "", fmt.Errorf("filename %q has an empty book name", fileName)
	}

	return order, name, nil
}
