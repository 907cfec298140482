// Package main is a command line driver for the nextedit prediction engine.
//
// It runs one prediction for a file: load configuration, snapshot the file,
// call the backend, and print the resulting hunks. With -accept the predicted
// document is written to stdout instead.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dshills/nextedit/internal/config"
	"github.com/dshills/nextedit/internal/hunk"
	"github.com/dshills/nextedit/internal/logging"
	"github.com/dshills/nextedit/internal/predict"
	"github.com/dshills/nextedit/internal/render"
	"github.com/dshills/nextedit/internal/state"
	"github.com/dshills/nextedit/internal/transport"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath string
	File       string
	Line       int
	Col        int
	LogLevel   string
	Accept     bool
	Timeout    time.Duration
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Output: os.Stderr,
		Prefix: "nextedit",
	})

	content, err := os.ReadFile(opts.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", opts.File, err)
		return 1
	}

	backend := newBackend(cfg.Backend)
	defer backend.Close()

	host := newMemHost()
	id := state.DocumentID(opts.File)
	host.set(id, string(content))

	var notifier render.Notifier = render.NopNotifier{}
	if !opts.Accept {
		notifier = hunkPrinter{out: os.Stdout}
	}

	engine, err := predict.New(host, backend,
		predict.WithConfig(cfg.Engine),
		predict.WithLogger(log),
		predict.WithNotifier(notifier),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := engine.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer engine.Shutdown()

	// Pick up config edits made while waiting on a slow backend.
	watcher, err := config.NewWatcher(opts.ConfigPath, cfg, func(next config.Config, err error) {
		if err != nil {
			log.Warn("config reload: %v", err)
			return
		}
		if err := engine.UpdateConfig(next.Engine); err != nil {
			log.Warn("config reload: %v", err)
			return
		}
		if opts.LogLevel == "" {
			log.SetLevel(logging.ParseLevel(next.Log.Level))
		}
	})
	if err == nil {
		defer watcher.Close()
	}

	engine.OnDocumentEnterEditing(id)
	engine.OnCursorMoved(id, opts.Line, opts.Col)
	engine.TriggerNow(id)

	if !waitForOutcome(engine, id, opts.Timeout) {
		fmt.Fprintln(os.Stderr, "Error: timed out waiting for a prediction")
		return 1
	}

	if !engine.HasPrediction(id) {
		log.Info("no change predicted for %s", opts.File)
		return 0
	}

	if opts.Accept {
		if err := engine.Accept(id); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Print(host.get(id))
	}
	return 0
}

// waitForOutcome polls until the request settles one way or the other.
func waitForOutcome(engine *predict.Engine, id state.DocumentID, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		rep, ok := engine.DocumentReport(id)
		if !ok {
			return false
		}
		if rep.HasPrediction || rep.Status == "idle" {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func newBackend(cfg config.Backend) *transport.HTTPBackend {
	var opts []transport.HTTPOption
	if cfg.APIKey != "" {
		opts = append(opts, transport.WithAPIKey(cfg.APIKey))
	}
	if cfg.Model != "" {
		opts = append(opts, transport.WithModel(cfg.Model))
	}
	if cfg.Path != "" {
		opts = append(opts, transport.WithCompletionPath(cfg.Path))
	}
	opts = append(opts, transport.WithCacheTTL(cfg.CacheTTL()))
	return transport.NewHTTPBackend(cfg.BaseURL, opts...)
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", defaultConfigPath(), "Path to configuration file")
	flag.StringVar(&opts.File, "file", "", "File to predict for (required)")
	flag.StringVar(&opts.File, "f", "", "File to predict for (shorthand)")
	flag.IntVar(&opts.Line, "line", 1, "Cursor line (1-indexed)")
	flag.IntVar(&opts.Col, "col", 0, "Cursor column")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Accept, "accept", false, "Apply the prediction and print the result to stdout")
	flag.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "How long to wait for a prediction")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "nextedit - next-edit prediction engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: nextedit -file <path> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nextedit -f main.go -line 42        Print predicted hunks\n")
		fmt.Fprintf(os.Stderr, "  nextedit -f main.go -accept         Print the predicted document\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("nextedit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.File == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	if opts.LogLevel != "" {
		switch opts.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	return opts
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nextedit.toml"
	}
	return home + "/.config/nextedit/config.toml"
}

// hunkPrinter writes hunks in a unified-diff flavored listing.
type hunkPrinter struct {
	out *os.File
}

func (p hunkPrinter) Show(documentID string, hunks []hunk.Hunk) {
	for _, h := range hunks {
		switch h.Kind {
		case hunk.KindInsert:
			fmt.Fprintf(p.out, "@@ insert before line %d @@\n", h.StartLine)
		case hunk.KindDelete:
			fmt.Fprintf(p.out, "@@ delete lines %d-%d @@\n", h.StartLine, h.EndLine-1)
		case hunk.KindReplace:
			fmt.Fprintf(p.out, "@@ replace lines %d-%d @@\n", h.StartLine, h.EndLine-1)
		}
		for _, line := range h.OldLines {
			fmt.Fprintf(p.out, "-%s\n", line)
		}
		for _, line := range h.NewLines {
			fmt.Fprintf(p.out, "+%s\n", line)
		}
	}
}

func (p hunkPrinter) Clear(string) {}
