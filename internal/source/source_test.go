package source

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestOS_IsRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.html")
	if err := os.WriteFile(file, []byte("<p>x</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.html")
	if err := os.Symlink(file, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	var fsys OS
	if !fsys.IsRegularFile(file) {
		t.Error("expected regular file")
	}
	if fsys.IsRegularFile(dir) {
		t.Error("expected directory not to be a regular file")
	}
	if fsys.IsRegularFile(filepath.Join(dir, "missing.html")) {
		t.Error("expected missing path not to be a regular file")
	}
	if fsys.IsRegularFile(link) {
		t.Error("expected symlink not to be a regular file")
	}

	text, err := fsys.ReadText(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "<p>x</p>" {
		t.Errorf("expected %q, got %q", "<p>x</p>", text)
	}
}

func TestFromFS(t *testing.T) {
	fsys := FromFS(fstest.MapFS{
		"pages/a.html":  {Data: []byte("A")},
		"partials/b.md": {Data: []byte("B")},
	})

	tests := []struct {
		path string
		want bool
	}{
		{"pages/a.html", true},
		{"/pages/a.html", true},
		{"pages/../partials/b.md", true},
		{"pages", false},
		{"pages/missing.html", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := fsys.IsRegularFile(tt.path); got != tt.want {
			t.Errorf("IsRegularFile(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}

	text, err := fsys.ReadText("partials/b.md")
	if err != nil || text != "B" {
		t.Errorf("expected B, got %q (err=%v)", text, err)
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("pages/blog", "../_layouts/base.html"); got != filepath.Join("pages", "_layouts", "base.html") {
		t.Errorf("unexpected relative resolution %q", got)
	}
	abs := filepath.Join(string(filepath.Separator), "srv", "site", "x.html")
	if got := Resolve("pages", abs); got != abs {
		t.Errorf("expected absolute ref to be kept, got %q", got)
	}
}

func TestRooted_ConfinesReads(t *testing.T) {
	base := t.TempDir()
	site := filepath.Join(base, "site")
	if err := os.MkdirAll(filepath.Join(site, "pages"), 0o755); err != nil {
		t.Fatal(err)
	}
	page := filepath.Join(site, "pages", "a.html")
	secret := filepath.Join(base, "secret.txt")
	for path, data := range map[string]string{page: "A", secret: "TOPSECRET"} {
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fsys, err := OpenRooted(site)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fsys.Close()

	if !fsys.IsRegularFile(page) {
		t.Error("expected page under the root to be a regular file")
	}
	if text, err := fsys.ReadText(page); err != nil || text != "A" {
		t.Errorf("expected A, got %q (err=%v)", text, err)
	}

	outside := []string{
		secret,
		filepath.Join(site, "..", "secret.txt"),
		Resolve(filepath.Join(site, "pages"), "../../secret.txt"),
		Resolve(filepath.Join(site, "pages"), secret),
	}
	for _, path := range outside {
		if fsys.IsRegularFile(path) {
			t.Errorf("expected %s to be refused", path)
		}
		if text, err := fsys.ReadText(path); err == nil {
			t.Errorf("expected read of %s to fail, got %q", path, text)
		}
	}
}

func TestRooted_SymlinkedDirectoryRefused(t *testing.T) {
	base := t.TempDir()
	site := filepath.Join(base, "site")
	private := filepath.Join(base, "private")
	for _, dir := range []string{site, private} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(private, "key.txt"), []byte("k"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(private, filepath.Join(site, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	fsys, err := OpenRooted(site)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fsys.Close()

	path := filepath.Join(site, "link", "key.txt")
	if fsys.IsRegularFile(path) {
		t.Error("expected file behind a symlinked directory to be refused")
	}
	if _, err := fsys.ReadText(path); err == nil {
		t.Error("expected read behind a symlinked directory to fail")
	}
}
