package devo

import (
	"fmt"

	"holyverses/internal/corpus"
)

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Books    int
	Chapters int
	Verses   int
	Failures []corpus.ParseFailure
}

// IsFirstTimeSetup reports whether the corpus has never been ingested on
// this installation.
func (s *DevoService) IsFirstTimeSetup() (bool, error) {
	done, err := s.flags.GetBool(FlagIngestionDone, false)
	if err != nil {
		return false, fmt.Errorf("reading ingestion flag: %w", err)
	}
	return !done, nil
}

// Ingest loads every document from the source, parses the corpus, and
// atomically replaces the stored corpus with the parse result. Documents that
// fail to parse are reported in the result but do not abort the run; a run
// that yields zero books is a failure and leaves the store untouched.
func (s *DevoService) Ingest() (*IngestResult, error) {
	names, err := s.source.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if len(names) == 0 {
		return nil, ErrEmptyCorpus
	}

	docs := make([]corpus.Document, 0, len(names))
	for _, name := range names {
		content, err := s.source.Read(name)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrSourceUnavailable, name, err)
		}
		docs = append(docs, corpus.Document{Name: name, Content: content})
	}

	result := corpus.Parse(docs)
	for _, f := range result.Failures {
		s.logger.Warn("document failed to parse", "name", f.Name, "error", f.Err)
	}
	if len(result.Books) == 0 {
		return nil, fmt.Errorf("%w: no documents parsed", ErrEmptyCorpus)
	}

	if err := s.database.ReplaceCorpus(result.Books, result.Chapters, result.Verses); err != nil {
		return nil, fmt.Errorf("replacing corpus: %w", err)
	}
	if err := s.flags.SetBool(FlagIngestionDone, true); err != nil {
		return nil, fmt.Errorf("recording ingestion flag: %w", err)
	}

	s.logger.Info("corpus ingested",
		"books", len(result.Books),
		"chapters", len(result.Chapters),
		"verses", len(result.Verses),
		"failures", len(result.Failures))

	return &IngestResult{
		Books:    len(result.Books),
		Chapters: len(result.Chapters),
		Verses:   len(result.Verses),
		Failures: result.Failures,
	}, nil
}

// EnsureIngested runs ingestion only when it has never completed before.
// Returns the result of the run, or nil when ingestion was skipped.
func (s *DevoService) EnsureIngested() (*IngestResult, error) {
	first, err := s.IsFirstTimeSetup()
	if err != nil {
		return nil, err
	}
	if !first {
		return nil, nil
	}
	return s.Ingest()
}

// ForceReload clears the ingestion flag and re-ingests the corpus from
// scratch. Delivery state on existing verses is lost.
func (s *DevoService) ForceReload() (*IngestResult, error) {
	if err := s.flags.SetBool(FlagIngestionDone, false); err != nil {
		return nil, fmt.Errorf("clearing ingestion flag: %w", err)
	}
	return s.Ingest()
}
