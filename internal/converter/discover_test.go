package converter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writePNG(t, filepath.Join(dir, "b.png"), gradient(2, 2))
	writePNG(t, filepath.Join(dir, "sub", "a.dat"), gradient(2, 2))
	touch(t, filepath.Join(dir, "notes.png"))
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("just some text here"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	explicit := filepath.Join(dir, "missing.jpg")
	got, err := Discover([]string{dir, explicit})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "sub", "a.dat"),
		explicit,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
