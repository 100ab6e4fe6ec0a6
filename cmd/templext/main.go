package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/templext/internal/config"
	"github.com/dgallion1/templext/internal/convert"
	"github.com/dgallion1/templext/internal/pipeline"
	"github.com/dgallion1/templext/internal/report"
	"github.com/dgallion1/templext/internal/resolve"
	"github.com/spf13/pflag"
)

// ExitError carries the process exit code for a failed run.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const usage = `templext resolves include and extend directives in markup files.

Usage:
  templext build [flags]     resolve every page under --src into --out
  templext resolve [flags] FILE
                             resolve one file and write it to stdout

Flags:
`

// run executes one command. Results go to stdout, logs to stderr.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return &ExitError{Code: 2, Message: "missing command"}
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		newFlagSet(cmd, stdout, new(options)).PrintDefaults()
		return nil
	case "build", "resolve":
	default:
		return &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", cmd)}
	}

	var opts options
	flagSet := newFlagSet(cmd, stdout, &opts)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return &ExitError{Code: 2, Message: err.Error()}
	}

	cfg, err := opts.config(flagSet)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	log := cfg.Logger(stderr)

	resolver := resolve.New(resolve.Options{
		Converters: convert.Set{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		Logger:     log,
	})
	proc := pipeline.NewProcessor(resolver, nil, log)

	if cmd == "resolve" {
		if flagSet.NArg() != 1 {
			return &ExitError{Code: 2, Message: "resolve takes exactly one FILE argument"}
		}
		return resolveFile(ctx, stdout, proc, log, flagSet.Arg(0))
	}
	if flagSet.NArg() > 0 {
		return &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument: %s", flagSet.Arg(0))}
	}
	return build(ctx, stdout, proc, log, cfg)
}

type options struct {
	configPath string
	src        string
	out        string
	workers    int
	logLevel   string
	logFormat  string
}

func newFlagSet(name string, output io.Writer, opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.PathEnv+")")
	flagSet.StringVar(&opts.src, "src", "", "site root to build (default $TEMPLEXT_SITE_ROOT or .)")
	flagSet.StringVar(&opts.out, "out", "", "output directory (default $TEMPLEXT_OUT_DIR or dist)")
	flagSet.IntVar(&opts.workers, "workers", 0, "files resolved concurrently (default $MAX_CONCURRENT_FILES or 8)")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.StringVar(&opts.logFormat, "log-format", "", "json or text")
	return flagSet
}

// config layers the flags that were set on top of the environment and the
// optional config file.
func (o *options) config(flagSet *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.LoadWithFile(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flagSet.Changed("src") {
		cfg.SiteRoot = o.src
	}
	if flagSet.Changed("out") {
		cfg.OutDir = o.out
	}
	if flagSet.Changed("workers") {
		cfg.MaxConcurrentFiles = o.workers
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flagSet.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if cfg.MaxConcurrentFiles <= 0 {
		return config.Config{}, fmt.Errorf("--workers must be positive, got %d", cfg.MaxConcurrentFiles)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func resolveFile(ctx context.Context, stdout io.Writer, proc *pipeline.Processor, log *slog.Logger, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ExitError{Code: 1, Message: fmt.Sprintf("read %s: %v", path, err)}
	}
	res, err := proc.Process(ctx, pipeline.Unit{Path: path, Contents: data}, report.NewLogger(log.With("path", path)))
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	_, err = stdout.Write(res.Contents)
	return err
}

func build(ctx context.Context, stdout io.Writer, proc *pipeline.Processor, log *slog.Logger, cfg config.Config) error {
	worker := pipeline.NewWorker(proc, log, pipeline.WorkerOptions{
		Extensions:         cfg.Extensions,
		Ignore:             cfg.Ignore,
		MaxConcurrentFiles: cfg.MaxConcurrentFiles,
	})
	job := pipeline.NewJob(cfg.SiteRoot, cfg.OutDir)
	worker.Process(ctx, job)

	snap := job.Snapshot()
	p := snap.Progress
	fmt.Fprintf(stdout, "%s: %d pages, %d written, %d unchanged, %d warnings, %d errors\n",
		snap.Status, p.Total, p.Written, p.Unchanged, len(p.Warnings), len(p.Errors))
	for _, msg := range p.Errors {
		fmt.Fprintln(stdout, "error:", msg)
	}

	switch snap.Status {
	case pipeline.StatusCompleted:
		return nil
	case pipeline.StatusPartial:
		return &ExitError{Code: 1, Message: fmt.Sprintf("build finished with %d errors", len(p.Errors))}
	}
	return &ExitError{Code: 1, Message: "build failed"}
}
