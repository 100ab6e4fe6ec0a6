package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "TEMPLEXT_SITE_ROOT", "TEMPLEXT_OUT_DIR", "TEMPLEXT_EXTENSIONS", "WORKER_COUNT", "JOB_TTL", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.SiteRoot != "." || cfg.OutDir == "" {
		t.Errorf("unexpected build dirs %q -> %q", cfg.SiteRoot, cfg.OutDir)
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[0] != ".html" {
		t.Errorf("unexpected extensions %v", cfg.Extensions)
	}
	if cfg.WorkerCount != 4 || cfg.JobTTL != time.Hour {
		t.Errorf("unexpected pool defaults: workers=%d ttl=%s", cfg.WorkerCount, cfg.JobTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TEMPLEXT_SITE_ROOT", "site")
	t.Setenv("TEMPLEXT_EXTENSIONS", ".html, .xml ,,")
	t.Setenv("TEMPLEXT_IGNORE", "_*,drafts")
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("MAX_CONCURRENT_FILES", "2")
	t.Setenv("JOB_TTL", "15m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")

	cfg := Load()
	if cfg.SiteRoot != "site" {
		t.Errorf("expected site root from env, got %q", cfg.SiteRoot)
	}
	if strings.Join(cfg.Extensions, "|") != ".html|.xml" {
		t.Errorf("unexpected extensions %v", cfg.Extensions)
	}
	if strings.Join(cfg.Ignore, "|") != "_*|drafts" {
		t.Errorf("unexpected ignore %v", cfg.Ignore)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected non-positive worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
	if cfg.MaxConcurrentFiles != 2 || cfg.JobTTL != 15*time.Minute || cfg.PDFFallbackPdftotext {
		t.Errorf("unexpected values %+v", cfg)
	}
	if cfg.MaxUploadBytes != 10485760 {
		t.Errorf("expected invalid number to fall back, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoadFile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templext.yaml")
	data := "site_root: ./web\nout_dir: ./public\nworker_count: 2\njob_ttl: 30m\nextensions: [.html]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	base := Config{APIKey: "secret", OutDir: "dist", LogLevel: "info", LogFormat: "json"}
	cfg, err := LoadFile(path, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SiteRoot != "./web" || cfg.OutDir != "./public" {
		t.Errorf("expected file to override dirs, got %q -> %q", cfg.SiteRoot, cfg.OutDir)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("expected base api key to survive, got %q", cfg.APIKey)
	}
	if cfg.WorkerCount != 2 || cfg.JobTTL != 30*time.Minute {
		t.Errorf("unexpected pool settings: workers=%d ttl=%s", cfg.WorkerCount, cfg.JobTTL)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected defaults applied after overlay, got %d", cfg.MaxQueueSize)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), Config{}); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("worker_count: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path, Config{}); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoadWithFile_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("out_dir: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(PathEnv, path)
	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OutDir != "from-file" {
		t.Errorf("expected out dir from $%s, got %q", PathEnv, cfg.OutDir)
	}
}

func TestValidate(t *testing.T) {
	good := Config{SiteRoot: ".", OutDir: "dist", LogLevel: "debug", LogFormat: "text", APIKey: "k", Port: "8090"}
	if err := good.ValidateServer(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		server bool
	}{
		{"missing site root", func(c *Config) { c.SiteRoot = "" }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, false},
		{"missing api key", func(c *Config) { c.APIKey = "" }, true},
	}
	for _, tt := range tests {
		cfg := good
		tt.mutate(&cfg)
		var err error
		if tt.server {
			err = cfg.ValidateServer()
		} else {
			err = cfg.Validate()
		}
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	noKey := good
	noKey.APIKey = ""
	if err := noKey.Validate(); err != nil {
		t.Errorf("expected build validation to ignore api key, got %v", err)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := Config{LogLevel: "warn", LogFormat: "text"}.Logger(&buf)
	log.Info("hidden")
	log.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "msg=shown") {
		t.Errorf("unexpected log output %q", buf.String())
	}

	buf.Reset()
	Config{LogLevel: "info", LogFormat: "json"}.Logger(&buf).Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected json output, got %q", buf.String())
	}
}
