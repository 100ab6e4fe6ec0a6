// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultIgnore skips underscore-prefixed files and directories, where
// layouts and partials live.
var DefaultIgnore = []string{"_*"}

// FindFiles recursively searches root for files whose extension is one of
// exts, compared case-insensitively. Files and directories whose name matches
// any ignore glob are skipped; the root itself is never ignored. Paths are
// returned in lexical order.
func FindFiles(root string, exts []string, ignore []string) ([]string, error) {
	if len(exts) == 0 {
		return nil, errors.New("no extensions given")
	}
	want := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		want[ext] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && ignored(d.Name(), ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && d.Type().IsRegular() && want[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func ignored(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
