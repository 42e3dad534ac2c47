package atomicwrite

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

var testContent = []byte("lorem ipsum\ndolor $it amet\nmet consâ‚¬quiat\neladamet")

func writeTestContent(w io.Writer) error { _, err := w.Write(testContent); return err }

func TestWrite(t *testing.T) {
	name := filepath.Join(t.TempDir(), "token")
	if err := Write(name, writeTestContent); err != nil {
		t.Error(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Error(err)
	}
	if !bytes.Equal(data, testContent) {
		t.Errorf("read back written data: got %q, want %q", data, testContent)
	}
	info, err := os.Stat(name)
	if err != nil {
		t.Fatal(err)
	}
	if perms := info.Mode().Perm(); perms != defaultPerms {
		t.Errorf("after Write, got permissions %v, want %v", perms, os.FileMode(defaultPerms))
	}
}

func TestPermissionsPreserved(t *testing.T) {
	name := filepath.Join(t.TempDir(), "token")
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0755)
	if err != nil {
		t.Fatal(err)
	}
	info, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	oldPerms := info.Mode() & os.ModePerm
	f.Close()
	if err := Write(name, writeTestContent); err != nil {
		t.Error(err)
	}
	if info, err = os.Stat(name); err != nil {
		t.Fatal(err)
	}
	if newPerms := info.Mode() & os.ModePerm; newPerms != oldPerms {
		t.Errorf("after Write, got permissions %v, want %v", newPerms, oldPerms)
	}
}

func TestFailedWriteLeavesNoTrash(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "token")
	wantErr := Write(name, func(io.Writer) error { return io.ErrShortWrite })
	if wantErr == nil {
		t.Fatal("Write reported success for a failing content writer")
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Errorf("target file exists after failed write (stat err: %v)", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover files after failed write: %v", entries)
	}
}
