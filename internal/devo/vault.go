package devo

import "io"

// Vault is a backup destination for encrypted database snapshots.
// All operations stream through io.Reader/io.Writer so large snapshots
// never need to be held in memory.
type Vault interface {
	// PutSnapshot stores a named snapshot for a specific host, replacing any
	// previous one. size is the number of bytes that will be read from r.
	// version is stored alongside the snapshot for consistency checks.
	PutSnapshot(hostID, name string, r io.Reader, size int64, version int64) error

	// GetSnapshot retrieves a named snapshot for a host and writes it to w.
	GetSnapshot(hostID, name string, w io.Writer) error

	// SnapshotVersion returns the stored version for a host/name pair,
	// 0 when no snapshot has been stored.
	SnapshotVersion(hostID, name string) (int64, error)

	// ValidateSetup verifies the vault is accessible and properly configured.
	ValidateSetup() error
}
