package devo

// DevoService is the orchestration layer that coordinates across all components
// to perform the high-level devotional operations needed by the CLI.
type DevoService struct {
	database  Database
	source    DocumentSource
	flags     FlagStore
	notifier  Notifier
	scheduler Scheduler
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewDevoService creates a new DevoService with the provided dependencies.
func NewDevoService(database Database, source DocumentSource, flags FlagStore, notifier Notifier, scheduler Scheduler, logger Logger, clock Clock, idgen IDGenerator) *DevoService {
	return &DevoService{
		database:  database,
		source:    source,
		flags:     flags,
		notifier:  notifier,
		scheduler: scheduler,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}
