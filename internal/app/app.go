package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"plagiarism_detection/internal/archive"
	"plagiarism_detection/internal/config"
	"plagiarism_detection/internal/detect"
	"plagiarism_detection/internal/nlp"
	"plagiarism_detection/internal/web"
	"plagiarism_detection/internal/workspace"
)

// Options converts the detection and source settings of cfg.
func Options(cfg *config.AppConfig) detect.Options {
	return detect.Options{
		Threshold:   cfg.Detection.Threshold,
		Closeness:   cfg.Detection.Closeness,
		DBCeiling:   cfg.Detection.DBCeiling,
		WebCeiling:  cfg.Detection.WebCeiling,
		UseArchive:  cfg.Archive.Enabled,
		Store:       cfg.Archive.Store,
		Citations:   cfg.Web.Citations,
		TopicSearch: cfg.Web.Topic,
	}
}

// ArchiveDSN returns the configured DSN or the workspace SQLite file.
func ArchiveDSN(cfg *config.AppConfig) (string, error) {
	if cfg.Archive.DSN != "" {
		return cfg.Archive.DSN, nil
	}
	root, err := workspace.EnsureDefault()
	if err != nil {
		return "", err
	}
	return workspace.ArchiveDSN(root), nil
}

// NewEngine wires the normalizer, the archive when it is used and the web
// provider when any web source is enabled. The returned func closes the
// archive.
func NewEngine(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*detect.Engine, func() error, error) {
	n, err := nlp.NewNormalizer(cfg.Detection.Language)
	if err != nil {
		return nil, nil, err
	}
	e := &detect.Engine{Normalizer: n, Logger: log}
	closer := func() error { return nil }

	if cfg.Archive.Enabled || cfg.Archive.Store {
		dsn, err := ArchiveDSN(cfg)
		if err != nil {
			return nil, nil, err
		}
		store, err := archive.Open(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open archive: %w", err)
		}
		count, err := store.Count(ctx)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		log.Info("archive ready", zap.String("driver", store.Driver()), zap.Int("documents", count))
		e.Archive = store
		closer = store.Close
	}

	if cfg.Web.Citations || cfg.Web.Topic {
		fetcher := web.NewFetcher(web.FetcherOptions{
			Timeout:           time.Duration(cfg.Web.TimeoutSecs) * time.Second,
			UserAgent:         cfg.Web.UserAgent,
			RequestsPerSecond: cfg.Web.RequestsPerSecond,
		})
		e.Web = &web.Provider{
			Fetcher:    fetcher,
			Searcher:   web.NewDuckDuckGo(cfg.Web.SearchURL, fetcher),
			Normalizer: n,
			Workers:    cfg.Web.Workers,
			Logger:     log,
		}
	}
	return e, closer, nil
}
