package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"plagiarism_detection/internal/app"
	"plagiarism_detection/internal/config"
	"plagiarism_detection/internal/detect"
	"plagiarism_detection/internal/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath     string
		comparePath string
		useArchive  bool
		threshold   float64
		closeness   int
		store       bool
		output      string
		noWeb       bool
		logLevel    string
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or the workspace config)")
	flag.StringVar(&comparePath, "p", "", "Path to the files to be compared with the analyzed file")
	flag.BoolVar(&useArchive, "db", true, "Use documents from the archive")
	flag.Float64Var(&threshold, "t", 0.7, "Similarity threshold between 0 and 1")
	flag.IntVar(&closeness, "n", 3, "Minimum number of shared topic terms, exclusive, between 0 and 10")
	flag.BoolVar(&store, "s", false, "Store the comparison files in the archive")
	flag.StringVar(&output, "o", "", "Report output path (default results.json)")
	flag.BoolVar(&noWeb, "offline", false, "Skip citation links and topic search")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	subject := flag.Arg(0)

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.Archive.Enabled = useArchive
		case "t":
			cfg.Detection.Threshold = threshold
		case "n":
			cfg.Detection.Closeness = closeness
		case "s":
			cfg.Archive.Store = store
		case "o":
			cfg.Output = output
		case "log-level":
			cfg.Log.Level = logLevel
		}
	})
	if noWeb {
		cfg.Web.Citations = false
		cfg.Web.Topic = false
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := run(cfg, subject, comparePath); err != nil {
		if errors.Is(err, detect.ErrNoSources) {
			flag.Usage()
		}
		log.Fatalf("%v", err)
	}
}

// run owns the logger and the archive and closes both before returning.
func run(cfg *config.AppConfig, subject, comparePath string) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, closeArchive, err := app.NewEngine(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("engine init failed: %w", err)
	}
	defer func() { _ = closeArchive() }()

	opts := app.Options(cfg)
	opts.ComparePath = comparePath
	res, err := engine.CheckFile(ctx, subject, opts)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if err := res.Report.WriteFile(cfg.Output); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("%d flagged sentences, %d matches (%d candidates compared, %d web pages, %d skipped)\n",
		res.Stats.Flagged, res.Stats.Matches, res.Stats.Compared, res.Stats.WebPages, res.Stats.WebSkipped)
	fmt.Printf("Report written to %s\n", cfg.Output)
	return nil
}
