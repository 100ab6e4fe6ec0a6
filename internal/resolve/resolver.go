// Package resolve expands include and extend directives in markup trees.
package resolve

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/templext/internal/convert"
	"github.com/dgallion1/templext/internal/report"
	"github.com/dgallion1/templext/internal/source"
)

// Options configures a Resolver. Zero values select the OS filesystem, a
// discarding reporter and a discarding logger.
type Options struct {
	FS         source.FS
	Reporter   report.Reporter
	Converters convert.Set
	Logger     *slog.Logger
}

// Resolver holds the collaborators used while resolving. It keeps no
// per-document state and is safe for concurrent use.
type Resolver struct {
	fs      source.FS
	report  report.Reporter
	convert convert.Set
	log     *slog.Logger
}

func New(opts Options) *Resolver {
	r := &Resolver{
		fs:      opts.FS,
		report:  opts.Reporter,
		convert: opts.Converters,
		log:     opts.Logger,
	}
	if r.fs == nil {
		r.fs = source.OS{}
	}
	if r.report == nil {
		r.report = report.Discard
	}
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}
	return r
}

// WithReporter returns a copy of r that sends warnings to rep.
func (r *Resolver) WithReporter(rep report.Reporter) *Resolver {
	cp := *r
	if rep == nil {
		rep = report.Discard
	}
	cp.report = rep
	return &cp
}

// load reads a referenced file for splicing. It reports false, after a
// warning, when the file cannot be used.
func (r *Resolver) load(path string) (string, bool) {
	if !r.fs.IsRegularFile(path) {
		r.report.Warn(path + " is not a file")
		return "", false
	}
	text, err := r.fs.ReadText(path)
	if err != nil {
		r.report.Warn(fmt.Sprintf("read %s: %v", path, err))
		return "", false
	}
	if c, ok := r.convert.ForFile(path); ok {
		text, err = c.Convert(strings.NewReader(text), filepath.Base(path))
		if err != nil {
			r.report.Warn(fmt.Sprintf("convert %s: %v", path, err))
			return "", false
		}
	}
	return strings.TrimSpace(text), true
}

func key(path string) string {
	return filepath.Clean(path)
}

func extendChain(chain []string, path string) []string {
	out := make([]string, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, key(path))
}
