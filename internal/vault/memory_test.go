package vault

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryVault(t *testing.T) {
	t.Run("put and get snapshot", func(t *testing.T) {
		v := NewMemoryVault("test")

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
		v := NewMemoryVault("test")

		version, err := v.SnapshotVersion("host-1", "db")
		if err != nil {
			t.Fatalf("SnapshotVersion() error = %v", err)
		}
		if version != 0 {
			t.Errorf("version before put = %d, want 0", version)
		}

		data := "x"
		if err := v.PutSnapshot("host-1", "db", strings.NewReader(data), 1, 42); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		version, _ = v.SnapshotVersion("host-1", "db")
		if version != 42 {
			t.Errorf("version = %d, want 42", version)
		}
	})

	t.Run("replaces previous snapshot", func(t *testing.T) {
		v := NewMemoryVault("test")

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

	t.Run("size mismatch", func(t *testing.T) {
		v := NewMemoryVault("test")

		err := v.PutSnapshot("host-1", "db", strings.NewReader("abc"), 99, 1)
		if err == nil {
			t.Error("PutSnapshot() error = nil, want size mismatch")
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		v := NewMemoryVault("test")

		var buf bytes.Buffer
		if err := v.GetSnapshot("host-1", "db", &buf); err == nil {
			t.Error("GetSnapshot() error = nil, want not found")
		}
	})

	t.Run("hosts are isolated", func(t *testing.T) {
		v := NewMemoryVault("test")

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

	t.Run("validate setup", func(t *testing.T) {
		if err := NewMemoryVault("test").ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})
}
