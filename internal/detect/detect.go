package detect

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"plagiarism_detection/internal/author"
	"plagiarism_detection/internal/document"
	"plagiarism_detection/internal/ingest"
	"plagiarism_detection/internal/nlp"
	"plagiarism_detection/internal/report"
	"plagiarism_detection/internal/similarity"
	"plagiarism_detection/internal/topic"
	"plagiarism_detection/internal/web"
)

// ErrNoSources is returned when neither a comparison path nor a configured
// archive is available.
var ErrNoSources = errors.New("no documents to compare: enable the archive or give a comparison path")

// Archive is the persistent reference corpus.
type Archive interface {
	Load(ctx context.Context) ([]document.Document, error)
	Save(ctx context.Context, docs ...document.Document) error
}

type Options struct {
	Threshold  float64
	Closeness  int
	DBCeiling  float64
	WebCeiling float64

	UseArchive  bool
	ComparePath string

	// Store upserts the documents read from ComparePath into the archive.
	Store bool

	Citations   bool
	TopicSearch bool
}

// DefaultOptions mirrors the command line defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:   similarity.DefaultThreshold,
		Closeness:   topic.DefaultCloseness,
		DBCeiling:   similarity.DBCeiling,
		WebCeiling:  similarity.WebCeiling,
		UseArchive:  true,
		Citations:   true,
		TopicSearch: true,
	}
}

func (o Options) Validate() error {
	if err := (similarity.Params{Threshold: o.Threshold, Ceiling: o.DBCeiling}).Validate(); err != nil {
		return err
	}
	if err := (similarity.Params{Threshold: o.Threshold, Ceiling: o.WebCeiling}).Validate(); err != nil {
		return err
	}
	if o.Closeness < 0 || o.Closeness > topic.Size {
		return fmt.Errorf("closeness %d out of range [0,%d]", o.Closeness, topic.Size)
	}
	return nil
}

type Stats struct {
	RunID      string `json:"run_id"`
	Candidates int    `json:"candidates"`
	Compared   int    `json:"compared"`
	WebPages   int    `json:"web_pages"`
	WebSkipped int    `json:"web_skipped"`
	Sentences  int    `json:"sentences"`
	Flagged    int    `json:"flagged"`
	Matches    int    `json:"matches"`
}

type Result struct {
	Subject document.Document
	Report  report.Report
	Stats   Stats
}

// Engine runs plagiarism checks. Archive and Web are optional.
type Engine struct {
	Normalizer *nlp.Normalizer
	Archive    Archive
	Web        *web.Provider
	Logger     *zap.Logger
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// CheckFile parses path and checks it.
func (e *Engine) CheckFile(ctx context.Context, path string, opts Options) (*Result, error) {
	parsed, err := ingest.ParseFile(path)
	if err != nil {
		return nil, err
	}
	e.logger().Info("parsed subject", zap.String("path", path), zap.String("size", humanize.Bytes(uint64(parsed.Size))))
	return e.Check(ctx, parsed.Document(), opts)
}

// Check compares subject against the requested sources and returns the
// aggregated report.
func (e *Engine) Check(ctx context.Context, subject document.Document, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.ComparePath == "" && (!opts.UseArchive || e.Archive == nil) {
		return nil, ErrNoSources
	}
	runID := uuid.NewString()
	log := e.logger().With(zap.String("run_id", runID), zap.String("subject", subject.ID))

	candidates, err := e.candidates(ctx, log, opts)
	if err != nil {
		return nil, err
	}
	e.prepare(&subject)

	res := &Result{Subject: subject, Report: report.New()}
	res.Stats.RunID = runID
	res.Stats.Candidates = len(candidates)
	res.Stats.Sentences = len(subject.Processed)

	related := topic.Filter(subject.Topic, candidates, opts.Closeness)
	res.Stats.Compared = len(related)
	log.Info("filtered candidates",
		zap.Strings("topic", subject.Topic),
		zap.Int("candidates", len(candidates)),
		zap.Int("related", len(related)))

	for _, ref := range related {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		compareInto(res.Report, subject, ref, similarity.Params{Threshold: opts.Threshold, Ceiling: opts.DBCeiling})
	}

	if e.Web != nil {
		var links, terms []string
		if opts.Citations {
			links = subject.Citations
		}
		if opts.TopicSearch {
			terms = subject.Topic
		}
		r := e.Web.Gather(ctx, links, terms)
		pages := r.Documents
		res.Stats.WebSkipped = r.Skipped
		res.Stats.WebPages = len(pages)
		for _, page := range pages {
			compareInto(res.Report, subject, page, similarity.Params{Threshold: opts.Threshold, Ceiling: opts.WebCeiling})
		}
		if res.Stats.WebSkipped > 0 {
			log.Warn("web sources skipped", zap.Int("skipped", res.Stats.WebSkipped))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Stats.Flagged = res.Report.Len()
	res.Stats.Matches = res.Report.MatchCount()
	log.Info("check finished",
		zap.Int("flagged", res.Stats.Flagged),
		zap.Int("matches", res.Stats.Matches),
		zap.Int("web_pages", res.Stats.WebPages))
	return res, nil
}

// candidates reads the comparison path first, stores it when asked, then
// appends the archive. Later copies of an identifier are dropped.
func (e *Engine) candidates(ctx context.Context, log *zap.Logger, opts Options) ([]document.Document, error) {
	var docs []document.Document
	if opts.ComparePath != "" {
		local, err := e.readPath(log, opts.ComparePath)
		if err != nil {
			return nil, err
		}
		if opts.Store && e.Archive != nil && len(local) > 0 {
			if err := e.Archive.Save(ctx, local...); err != nil {
				return nil, fmt.Errorf("store comparison documents: %w", err)
			}
			log.Info("stored comparison documents", zap.Int("count", len(local)))
		}
		docs = append(docs, local...)
	}
	if opts.UseArchive && e.Archive != nil {
		stored, err := e.Archive.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load archive: %w", err)
		}
		for i := range stored {
			if !stored[i].Prepared() {
				e.prepare(&stored[i])
			}
		}
		log.Debug("loaded archive", zap.Int("count", len(stored)))
		docs = append(docs, stored...)
	}
	return document.Dedupe(docs), nil
}

func (e *Engine) readPath(log *zap.Logger, path string) ([]document.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat comparison path: %w", err)
	}
	var parsed []*ingest.Parsed
	if info.IsDir() {
		parsed, err = ingest.ParseDir(path)
	} else {
		var p *ingest.Parsed
		p, err = ingest.ParseFile(path)
		parsed = []*ingest.Parsed{p}
	}
	if err != nil {
		return nil, err
	}

	docs := make([]document.Document, 0, len(parsed))
	for _, p := range parsed {
		log.Debug("parsed reference", zap.String("path", p.SourcePath), zap.String("size", humanize.Bytes(uint64(p.Size))))
		d := p.Document()
		e.prepare(&d)
		docs = append(docs, d)
	}
	return docs, nil
}

// prepare resolves authors from the raw text, then segments the document.
func (e *Engine) prepare(d *document.Document) {
	if d.Source == document.SourceFile {
		d.Authors = author.Extract(d.Text, d.Headers, d.Authors)
	}
	d.Prepare(e.Normalizer)
}
