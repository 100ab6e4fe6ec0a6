package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/templext/internal/config"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	}
	return root
}

var site = map[string]string{
	"index.html": `<extend-to src="_layouts/base.html" section="body"/>` +
		`<section-body><include-file src="notes.md"/></section-body>`,
	"_layouts/base.html": "<main><section-body></section-body></main>",
	"notes.md":           "---\ntitle: Notes\n---\n# Notes\n",
	"about.html":         "<p>about</p>",
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected *ExitError, got %v", err)
	return exitErr.Code
}

func TestRun_Resolve(t *testing.T) {
	t.Setenv(config.PathEnv, "")
	root := writeSite(t, site)

	var out bytes.Buffer
	err := run(context.Background(), &out, io.Discard, []string{"resolve", filepath.Join(root, "index.html")})
	require.NoError(t, err)

	want := "<main><h1>Notes</h1></main>"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("resolved output mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Build(t *testing.T) {
	t.Setenv(config.PathEnv, "")
	root := writeSite(t, site)
	out := t.TempDir()

	var stdout bytes.Buffer
	err := run(context.Background(), &stdout, io.Discard, []string{
		"build", "--src", root, "--out", out, "--workers=2", "--log-format=text", "--log-level=debug",
	})
	require.NoError(t, err)
	require.Contains(t, stdout.String(), "completed: 2 pages, 2 written")

	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Equal(t, "<main><h1>Notes</h1></main>", string(data))
	require.NoFileExists(t, filepath.Join(out, "_layouts", "base.html"))
}

func TestRun_BuildPartial(t *testing.T) {
	t.Setenv(config.PathEnv, "")
	root := writeSite(t, map[string]string{
		"ok.html":   "<p>ok</p>",
		"loop.html": `<include-file src="loop.html"/>`,
	})

	var stdout bytes.Buffer
	err := run(context.Background(), &stdout, io.Discard, []string{"build", "--src", root, "--out", t.TempDir()})
	require.Error(t, err)
	require.Equal(t, 1, exitCode(t, err))
	require.Contains(t, stdout.String(), "error: loop.html:")
}

func TestRun_ConfigFile(t *testing.T) {
	t.Setenv(config.PathEnv, "")
	root := writeSite(t, map[string]string{"a.htm": "<p>a</p>"})
	out := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "templext.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("site_root: "+root+"\nout_dir: "+out+"\nextensions: [.htm]\n"), 0o644))

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), &stdout, io.Discard, []string{"build", "--config", cfgPath}))
	require.FileExists(t, filepath.Join(out, "a.htm"))
}

func TestRun_UsageErrors(t *testing.T) {
	t.Setenv(config.PathEnv, "")
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"serve"}, 2},
		{"unknown flag", []string{"build", "--nope"}, 2},
		{"resolve without file", []string{"resolve"}, 2},
		{"build with argument", []string{"build", "extra"}, 2},
		{"bad log format", []string{"build", "--log-format=yaml"}, 2},
		{"bad workers", []string{"build", "--workers=0"}, 2},
		{"missing file", []string{"resolve", filepath.Join(t.TempDir(), "nope.html")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), io.Discard, io.Discard, tt.args)
			require.Error(t, err)
			require.Equal(t, tt.code, exitCode(t, err))
		})
	}
}

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, io.Discard, []string{"--help"}))
	require.Contains(t, out.String(), "Usage:")
	require.Contains(t, out.String(), "--src")

	out.Reset()
	require.NoError(t, run(context.Background(), &out, io.Discard, []string{"build", "-h"}))
	require.Contains(t, out.String(), "--out")
}
