package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFS(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	f, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return f, dir
}

func TestNewFSRequiresExistingDirectory(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFS(file); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	f, _ := newTestFS(t)

	if err := f.Write("catalog.json", []byte(`{"version":"2"}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := f.Read("catalog.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != `{"version":"2"}` {
		t.Errorf("content = %q", data)
	}
}

func TestWriteCreatesSubdirectories(t *testing.T) {
	f, dir := newTestFS(t)

	if err := f.Write("sub/dir/out.json", []byte("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sub", "dir", "out.json")); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	f, dir := newTestFS(t)

	if err := f.Write("out.json", []byte("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".catena-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSafePathRejectsTraversal(t *testing.T) {
	f, _ := newTestFS(t)

	for _, p := range []string{"../escape.json", "sub/../../escape.json", "/etc/passwd"} {
		if _, err := f.Read(p); err == nil {
			t.Errorf("Read(%q) should fail", p)
		}
		if err := f.Write(p, []byte("x")); err == nil {
			t.Errorf("Write(%q) should fail", p)
		}
		if err := f.Delete(p); err == nil {
			t.Errorf("Delete(%q) should fail", p)
		}
	}
}

func TestListFiltersTemplateFiles(t *testing.T) {
	f, dir := newTestFS(t)

	files := map[string]bool{
		"a.json":       true,
		"b.yml":        true,
		"sub/c.yaml":   true,
		"notes.txt":    false,
		"README.md":    false,
		"sub/d.golden": false,
	}
	for name := range files {
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := f.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	seen := make(map[string]bool)
	for _, info := range infos {
		seen[filepath.ToSlash(info.Path)] = true
		if info.Checksum == "" {
			t.Errorf("missing checksum for %s", info.Path)
		}
	}
	for name, want := range files {
		if seen[name] != want {
			t.Errorf("listed[%s] = %v, want %v", name, seen[name], want)
		}
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	f, _ := newTestFS(t)

	if err := f.Write("gone.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := f.Delete("gone.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.Read("gone.json"); err == nil {
		t.Error("file still readable after delete")
	}
}

func TestEncodeJSONFormat(t *testing.T) {
	data, err := EncodeJSON(map[string]string{"note": "a <b> & ünïcode"})
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	s := string(data)
	if strings.Contains(s, `\u003c`) {
		t.Errorf("HTML escaping should be off: %s", s)
	}
	if !strings.Contains(s, "<b>") {
		t.Errorf("angle brackets should stay literal: %s", s)
	}
	if !strings.Contains(s, "ünïcode") {
		t.Errorf("UTF-8 should pass through: %s", s)
	}
	if !strings.HasSuffix(s, "\n") {
		t.Error("output should end with a newline")
	}
}
