package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFSVault(t *testing.T) *FileSystemVault {
	t.Helper()

	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	return v
}

func TestFileSystemVault(t *testing.T) {
	t.Run("put and get snapshot", func(t *testing.T) {
		v := newTestFSVault(t)

		data := "snapshot bytes"
		err := v.PutSnapshot("host-1", "db", strings.NewReader(data), int64(len(data)), 7)
		if err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}

		var buf bytes.Buffer
		if err := v.GetSnapshot("host-1", "db", &buf); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if buf.String() != data {
			t.Errorf("GetSnapshot() = %q, want %q", buf.String(), data)
		}
	})

	t.Run("version tracking", func(t *testing.T) {
		v := newTestFSVault(t)

		version, err := v.SnapshotVersion("host-1", "db")
		if err != nil {
			t.Fatalf("SnapshotVersion() error = %v", err)
		}
		if version != 0 {
			t.Errorf("version before put = %d, want 0", version)
		}

		if err := v.PutSnapshot("host-1", "db", strings.NewReader("x"), 1, 42); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		version, err = v.SnapshotVersion("host-1", "db")
		if err != nil {
			t.Fatalf("SnapshotVersion() error = %v", err)
		}
		if version != 42 {
			t.Errorf("version = %d, want 42", version)
		}
	})

	t.Run("replaces previous snapshot", func(t *testing.T) {
		v := newTestFSVault(t)

		if err := v.PutSnapshot("host-1", "db", strings.NewReader("old"), 3, 1); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		if err := v.PutSnapshot("host-1", "db", strings.NewReader("newer"), 5, 2); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}

		var buf bytes.Buffer
		if err := v.GetSnapshot("host-1", "db", &buf); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if buf.String() != "newer" {
			t.Errorf("GetSnapshot() = %q, want %q", buf.String(), "newer")
		}
	})

	t.Run("size mismatch leaves no snapshot behind", func(t *testing.T) {
		v := newTestFSVault(t)

		err := v.PutSnapshot("host-1", "db", strings.NewReader("abc"), 99, 1)
		if err == nil {
			t.Fatal("PutSnapshot() error = nil, want size mismatch")
		}

		var buf bytes.Buffer
		if err := v.GetSnapshot("host-1", "db", &buf); err == nil {
			t.Error("GetSnapshot() error = nil, want not found")
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		v := newTestFSVault(t)

		var buf bytes.Buffer
		err := v.GetSnapshot("host-1", "db", &buf)
		if err == nil {
			t.Fatal("GetSnapshot() error = nil, want not found")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("GetSnapshot() error = %v, want not found", err)
		}
	})

	t.Run("hosts are isolated", func(t *testing.T) {
		v := newTestFSVault(t)

		if err := v.PutSnapshot("host-1", "db", strings.NewReader("a"), 1, 1); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		version, err := v.SnapshotVersion("host-2", "db")
		if err != nil {
			t.Fatalf("SnapshotVersion() error = %v", err)
		}
		if version != 0 {
			t.Errorf("other host's version = %d, want 0", version)
		}
	})

	t.Run("corrupt version file", func(t *testing.T) {
		v := newTestFSVault(t)

		if err := v.PutSnapshot("host-1", "db", strings.NewReader("a"), 1, 1); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		versionPath := filepath.Join(v.snapshotsDir, "host-1", "db.version")
		if err := os.WriteFile(versionPath, []byte("not a number"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		if _, err := v.SnapshotVersion("host-1", "db"); err == nil {
			t.Error("SnapshotVersion() error = nil, want parse error")
		}
	})

	t.Run("validate setup", func(t *testing.T) {
		v := newTestFSVault(t)
		if err := v.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("validate setup fails for missing root", func(t *testing.T) {
		root := t.TempDir()
		v, err := NewFileSystemVault("test", root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		if err := os.RemoveAll(root); err != nil {
			t.Fatalf("RemoveAll() error = %v", err)
		}
		if err := v.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() error = nil, want failure")
		}
	})
}
