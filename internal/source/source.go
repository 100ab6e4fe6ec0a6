// Package source is the filesystem seam used by the resolver.
package source

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FS answers the two questions resolution asks of a filesystem.
type FS interface {
	// IsRegularFile never fails; any stat error means false.
	IsRegularFile(path string) bool
	ReadText(path string) (string, error)
}

// OS reads from the host filesystem. Symlinks are not followed, so a link is
// never a regular file.
type OS struct{}

func (OS) IsRegularFile(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (OS) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Rooted reads from the host filesystem below one directory. Paths outside
// it, whether absolute, climbing with "..", or reached through a symlinked
// directory, are never regular files.
type Rooted struct {
	dir  string
	root *os.Root
}

// OpenRooted confines reads to dir. Close releases the directory handle.
func OpenRooted(dir string) (*Rooted, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", dir, err)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("open root %s: %w", dir, err)
	}
	return &Rooted{dir: abs, root: root}, nil
}

func (r *Rooted) Close() error {
	return r.root.Close()
}

func (r *Rooted) IsRegularFile(path string) bool {
	rel, ok := r.rel(path)
	if !ok {
		return false
	}
	info, err := r.root.Lstat(rel)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (r *Rooted) ReadText(path string) (string, error) {
	rel, ok := r.rel(path)
	if !ok {
		return "", fmt.Errorf("%s is outside %s", path, r.dir)
	}
	f, err := r.root.Open(rel)
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// rel maps path, absolute or relative to the working directory, onto a
// name below the root.
func (r *Rooted) rel(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(r.dir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// FromFS adapts an io/fs filesystem. Paths are cleaned, converted to slash
// form and stripped of any leading separator before lookup.
func FromFS(fsys fs.FS) FS {
	return &ioFS{fsys: fsys}
}

type ioFS struct {
	fsys fs.FS
}

func (f *ioFS) IsRegularFile(path string) bool {
	info, err := fs.Stat(f.fsys, fsPath(path))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (f *ioFS) ReadText(path string) (string, error) {
	data, err := fs.ReadFile(f.fsys, fsPath(path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func fsPath(p string) string {
	p = filepath.ToSlash(filepath.Clean(p))
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// Resolve joins ref onto baseDir unless ref is already absolute.
func Resolve(baseDir, ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(baseDir, ref)
}
