package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"holyverses/internal/config"
	"holyverses/internal/database"
	"holyverses/internal/database/migrations"
	"holyverses/internal/devo"
	"holyverses/internal/encryption"
	"holyverses/internal/flagstore"
	"holyverses/internal/notify"
	"holyverses/internal/schedule"
	"holyverses/internal/source"
	"holyverses/internal/vault"
)

// DevoApp is the application layer between the CLI and DevoService.
// It constructs all dependencies from config, exposes the service, and
// manages the DB and scheduler lifecycle on Close.
type DevoApp struct {
	cfg       *config.Config
	db        devo.Database
	encryptor devo.Encryptor
	runner    *schedule.Runner
	service   *devo.DevoService
	logger    devo.Logger
	logFile   *os.File
}

// NewDevoApp creates a fully wired DevoApp from the given config.
// The caller must call Close when done.
func NewDevoApp(cfg *config.Config) (*DevoApp, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	// The in-memory database starts empty, the sqlite one may carry an old
	// schema. Either way, bring it up to date.
	if sqlite, ok := db.(*database.SQLiteDatabase); ok {
		if err := migrations.MigrateUp(sqlite.DB()); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		if err := sqlite.CheckMigrations(); err != nil {
			db.Close()
			return nil, fmt.Errorf("verifying database schema: %w", err)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	docs := source.NewDirSource(cfg.Corpus.Dir)
	flags := flagstore.NewFileStore(filepath.Join(cfg.BaseDir, "flags.toml"))
	notifier := notify.NewWriterNotifier(os.Stdout, devo.RealClock{})
	runner := schedule.NewRunner(log)

	svc := devo.NewDevoService(db, docs, flags, notifier, runner, log, devo.RealClock{}, devo.UUIDGenerator{})

	return &DevoApp{
		cfg:       cfg,
		db:        db,
		encryptor: enc,
		runner:    runner,
		service:   svc,
		logger:    log,
		logFile:   logFile,
	}, nil
}

// Service returns the wired DevoService.
func (a *DevoApp) Service() *devo.DevoService {
	return a.service
}

// Config returns the loaded configuration.
func (a *DevoApp) Config() *config.Config {
	return a.cfg
}

// Encryptor returns the configured encryptor.
func (a *DevoApp) Encryptor() devo.Encryptor {
	return a.encryptor
}

// Vault builds the first configured vault backend.
func (a *DevoApp) Vault() (devo.Vault, error) {
	if len(a.cfg.Vaults) == 0 {
		return nil, fmt.Errorf("no vaults configured")
	}
	return vault.NewVaultFromConfig(context.Background(), a.cfg.Vaults[0])
}

// ScheduleAll registers the daily verse job and every configured prayer
// reminder from the notification config.
func (a *DevoApp) ScheduleAll() error {
	verseTime, err := devo.ParseTimeOfDay(a.cfg.Notifications.DailyVerseTime)
	if err != nil {
		return fmt.Errorf("daily verse time: %w", err)
	}
	a.service.ScheduleDailyVerse(verseTime)

	for _, raw := range a.cfg.Notifications.PrayerReminderTimes {
		t, err := devo.ParseTimeOfDay(raw)
		if err != nil {
			return fmt.Errorf("prayer reminder time: %w", err)
		}
		a.service.SchedulePrayerReminder(t)
	}
	return nil
}

// Close stops the scheduler and closes all resources.
func (a *DevoApp) Close() error {
	a.runner.Stop()

	var firstErr error
	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
