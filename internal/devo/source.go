package devo

// DocumentSource is the capability that yields the raw corpus documents:
// a flat namespace of named text documents, one per book.
type DocumentSource interface {
	// List returns the document names available in the source, in no
	// particular order. An empty listing is not an error at this level;
	// the ingestion controller decides how to treat it.
	List() ([]string, error)

	// Read returns the raw content of one named document.
	Read(name string) ([]byte, error)
}
