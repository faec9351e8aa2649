package devo

// Keys for the persisted flag store.
const (
	// FlagIngestionDone tracks whether first-time corpus ingestion has
	// completed. Defaults to false; reset to false to force re-ingestion.
	FlagIngestionDone = "ingestion_done"
)

// FlagStore is a small persisted key-value store for boolean flags that
// live outside the relational store, such as the ingestion-completion flag.
type FlagStore interface {
	// GetBool returns the stored value, or def when the key was never set.
	GetBool(key string, def bool) (bool, error)

	// SetBool stores the value durably.
	SetBool(key string, value bool) error
}
