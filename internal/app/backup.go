package app

import (
	"fmt"
	"os"
	"time"
)

// snapshotName is the vault object name for the database snapshot.
const snapshotName = "db"

// Backup snapshots the database, encrypts the snapshot with the configured
// public key, and uploads it to the first configured vault. The snapshot
// version is the upload timestamp, so later backups always carry a higher
// version.
func (a *DevoApp) Backup() error {
	if !a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys not set up: run 'holyverses keys init' first")
	}

	v, err := a.Vault()
	if err != nil {
		return err
	}
	if err := v.ValidateSetup(); err != nil {
		return fmt.Errorf("validating vault: %w", err)
	}

	// Snapshot the DB to a temp file.
	tmpDB, err := os.CreateTemp("", "holyverses-db-*.db")
	if err != nil {
		return fmt.Errorf("creating temp file for db snapshot: %w", err)
	}
	tmpDBPath := tmpDB.Name()
	tmpDB.Close()
	os.Remove(tmpDBPath) // VACUUM INTO requires the target not to exist
	defer os.Remove(tmpDBPath)

	if err := a.db.BackupTo(tmpDBPath); err != nil {
		return fmt.Errorf("snapshotting database: %w", err)
	}

	// Encrypt the snapshot to a second temp file.
	plain, err := os.Open(tmpDBPath)
	if err != nil {
		return fmt.Errorf("opening db snapshot: %w", err)
	}
	defer plain.Close()

	encFile, err := os.CreateTemp("", "holyverses-db-*.age")
	if err != nil {
		return fmt.Errorf("creating temp file for encrypted snapshot: %w", err)
	}
	encPath := encFile.Name()
	defer os.Remove(encPath)

	if err := a.encryptor.Encrypt(plain, encFile); err != nil {
		encFile.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := encFile.Close(); err != nil {
		return fmt.Errorf("closing encrypted snapshot: %w", err)
	}

	// Upload with the timestamp as version.
	f, err := os.Open(encPath)
	if err != nil {
		return fmt.Errorf("opening encrypted snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat encrypted snapshot: %w", err)
	}

	version := time.Now().UTC().Unix()
	if err := v.PutSnapshot(a.cfg.HostID, snapshotName, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot to vault: %w", err)
	}

	a.logger.Info("database backed up", "host", a.cfg.HostID, "version", version, "bytes", info.Size())
	return nil
}

// Restore downloads the encrypted database snapshot from the vault, decrypts
// it with the passphrase-unlocked private key, and writes the plaintext
// database to outputPath. It refuses to overwrite an existing file.
func (a *DevoApp) Restore(passphrase, outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("refusing to overwrite existing file: %s", outputPath)
	}

	v, err := a.Vault()
	if err != nil {
		return err
	}

	version, err := v.SnapshotVersion(a.cfg.HostID, snapshotName)
	if err != nil {
		return fmt.Errorf("checking snapshot version: %w", err)
	}
	if version == 0 {
		return fmt.Errorf("no snapshot stored for host %s", a.cfg.HostID)
	}

	dctx, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}

	encFile, err := os.CreateTemp("", "holyverses-restore-*.age")
	if err != nil {
		return fmt.Errorf("creating temp file for download: %w", err)
	}
	encPath := encFile.Name()
	defer os.Remove(encPath)

	if err := v.GetSnapshot(a.cfg.HostID, snapshotName, encFile); err != nil {
		encFile.Close()
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	if err := encFile.Close(); err != nil {
		return fmt.Errorf("closing downloaded snapshot: %w", err)
	}

	enc, err := os.Open(encPath)
	if err != nil {
		return fmt.Errorf("opening downloaded snapshot: %w", err)
	}
	defer enc.Close()

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := dctx.Decrypt(enc, out); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}

	a.logger.Info("database restored", "host", a.cfg.HostID, "version", version, "output", outputPath)
	return nil
}
