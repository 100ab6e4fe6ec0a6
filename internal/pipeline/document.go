package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/templext/internal/cleanup"
	"github.com/dgallion1/templext/internal/directive"
	"github.com/dgallion1/templext/internal/markup"
	"github.com/dgallion1/templext/internal/report"
	"github.com/dgallion1/templext/internal/resolve"
)

// ErrStreamingUnsupported is returned for units whose payload is a stream.
var ErrStreamingUnsupported = errors.New("streams not supported")

// Unit is one file handed to the processor. Contents is nil for a null
// payload; Stream is set instead of Contents for streamed payloads.
type Unit struct {
	Path     string
	Contents []byte
	Stream   io.Reader
}

// State is a step of per-document processing.
type State string

const (
	StateReceived         State = "received"
	StateParsed           State = "parsed"
	StatePassthrough      State = "passthrough"
	StateIncludesResolved State = "includes_resolved"
	StateExtendsResolved  State = "extends_resolved"
	StateSerialized       State = "serialized"
	StateCleaned          State = "cleaned"
	StateEmitted          State = "emitted"
)

// Result is the processed form of a Unit. Path always equals the unit's.
type Result struct {
	Path     string
	Contents []byte
	States   []State
	Warnings []string
	Duration time.Duration
}

// Processor runs one document through include and extend resolution.
type Processor struct {
	resolver *resolve.Resolver
	stats    *LatencyStats
	log      *slog.Logger
}

// NewProcessor creates a processor. stats may be nil.
func NewProcessor(resolver *resolve.Resolver, stats *LatencyStats, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Processor{resolver: resolver, stats: stats, log: log}
}

// Process resolves u. Warnings go to rep as they happen and are also
// returned in the result. Every call uses a fresh template cache.
func (p *Processor) Process(ctx context.Context, u Unit, rep report.Reporter) (res Result, err error) {
	start := time.Now()
	res = Result{Path: u.Path, States: []State{StateReceived}}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	col := report.NewCollector(rep)
	defer func() {
		res.Warnings = col.Warnings()
		res.Duration = time.Since(start)
	}()

	if u.Contents == nil && u.Stream != nil {
		return res, fmt.Errorf("%s: %w", u.Path, ErrStreamingUnsupported)
	}
	if len(u.Contents) == 0 {
		res.Contents = u.Contents
		res.States = append(res.States, StateEmitted)
		return res, nil
	}

	doc := markup.Parse(string(u.Contents))
	if !doc.HasElements() {
		res.Contents = u.Contents
		res.States = append(res.States, StatePassthrough, StateEmitted)
		return res, nil
	}
	res.States = append(res.States, StateParsed)

	r := p.resolver.WithReporter(col)
	if err := r.ResolveIncludes(doc, filepath.Dir(u.Path)); err != nil {
		return res, fmt.Errorf("resolve includes %s: %w", u.Path, err)
	}
	res.States = append(res.States, StateIncludesResolved)

	root, err := r.ResolveExtends(doc, u.Path, resolve.NewTemplateCache())
	if err != nil {
		return res, fmt.Errorf("resolve extends %s: %w", u.Path, err)
	}
	res.States = append(res.States, StateExtendsResolved)

	text := markup.Render(root, markup.PairTags(directive.IsMarker))
	res.States = append(res.States, StateSerialized)

	text = cleanup.Strip(text)
	res.States = append(res.States, StateCleaned)

	res.Contents = []byte(text)
	res.States = append(res.States, StateEmitted)
	elapsed := time.Since(start)
	if p.stats != nil {
		p.stats.Record(elapsed)
	}
	p.log.Debug("document resolved", "path", u.Path, "duration_ms", elapsed.Milliseconds())
	return res, nil
}
