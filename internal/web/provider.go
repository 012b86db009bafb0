package web

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"plagiarism_detection/internal/document"
	"plagiarism_detection/internal/nlp"
	"plagiarism_detection/internal/pipeline"
)

// MaxTopicResults is the number of search results compared for a topic.
const MaxTopicResults = 3

// Result holds the pages that could be fetched, in input order, and the
// number of sources that were skipped.
type Result struct {
	Documents []document.Document
	Skipped   int
}

type Provider struct {
	Fetcher    *Fetcher
	Searcher   Searcher
	Normalizer *nlp.Normalizer
	Workers    int
	Logger     *zap.Logger
}

func (p *Provider) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// FromLinks fetches and segments every link. Failed fetches are logged and
// counted, never returned.
func (p *Provider) FromLinks(ctx context.Context, links []string) Result {
	links = dedupe(links)
	if len(links) == 0 {
		return Result{}
	}
	slots := make([]*document.Document, len(links))
	pipeline.Run(ctx, links, p.Workers, func(ctx context.Context, i int, link string) error {
		text, err := p.Fetcher.Text(ctx, link)
		if err != nil {
			p.logger().Warn("skipping web page", zap.String("url", link), zap.Error(err))
			return err
		}
		d := document.Document{ID: link, Source: document.SourceWebsite, Text: text}
		d.Prepare(p.Normalizer)
		slots[i] = &d
		return nil
	})

	var res Result
	for _, d := range slots {
		if d == nil {
			res.Skipped++
			continue
		}
		res.Documents = append(res.Documents, *d)
	}
	p.logger().Debug("fetched web pages", zap.Int("fetched", len(res.Documents)), zap.Int("skipped", res.Skipped))
	return res
}

// FromTopic searches the space-joined topic terms and fetches the first
// MaxTopicResults distinct results. A failed search counts as one skip.
func (p *Provider) FromTopic(ctx context.Context, topic []string) Result {
	return p.Gather(ctx, nil, topic)
}

// Gather fetches links together with the topic search results. A URL found
// both ways is fetched and returned once, in its first position.
func (p *Provider) Gather(ctx context.Context, links, topic []string) Result {
	skipped := 0
	if p.Searcher != nil && len(topic) > 0 {
		found, err := p.TopicLinks(ctx, topic)
		if err != nil {
			skipped++
		}
		links = append(links[:len(links):len(links)], found...)
	}
	res := p.FromLinks(ctx, links)
	res.Skipped += skipped
	return res
}

// TopicLinks returns at most MaxTopicResults distinct search results for the
// topic terms.
func (p *Provider) TopicLinks(ctx context.Context, topic []string) ([]string, error) {
	query := strings.Join(topic, " ")
	links, err := p.Searcher.Search(ctx, query, MaxTopicResults)
	if err != nil {
		p.logger().Warn("topic search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	links = dedupe(links)
	if len(links) > MaxTopicResults {
		links = links[:MaxTopicResults]
	}
	p.logger().Debug("topic search", zap.String("query", query), zap.Strings("urls", links))
	return links, nil
}

func dedupe(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
