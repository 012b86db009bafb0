package web

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Searcher returns result URLs for a query, best first.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

const DefaultSearchURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the HTML results page of DuckDuckGo or any endpoint that
// serves the same markup.
type DuckDuckGo struct {
	BaseURL string
	Fetcher *Fetcher
}

func NewDuckDuckGo(baseURL string, f *Fetcher) *DuckDuckGo {
	if baseURL == "" {
		baseURL = DefaultSearchURL
	}
	return &DuckDuckGo{BaseURL: baseURL, Fetcher: f}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	u, err := url.Parse(d.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	doc, err := d.Fetcher.Get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var out []string
	seen := map[string]struct{}{}
	doc.Find("a.result__a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		link := resultLink(href)
		if link == "" {
			return true
		}
		if _, dup := seen[link]; dup {
			return true
		}
		seen[link] = struct{}{}
		out = append(out, link)
		return maxResults <= 0 || len(out) < maxResults
	})
	return out, nil
}

// resultLink unwraps DuckDuckGo redirect links (".../l/?uddg=<target>").
func resultLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return u.String()
	}
	return ""
}
