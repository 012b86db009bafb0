package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plagiarism_detection/internal/nlp"
)

const pageHTML = `<html><head><title>Economía</title><style>body { color: red; }</style></head>
<body>
<h1>La economía regional</h1>
<p>La economía regional creció durante el último año fiscal gracias a las exportaciones.</p>
<script>var tracking = "no debería aparecer";</script>
<p>Primera frase  Segunda frase</p>
</body></html>`

type stubSearcher struct {
	links []string
	err   error
	query string
}

func (s *stubSearcher) Search(_ context.Context, query string, _ int) ([]string, error) {
	s.query = query
	return s.links, s.err
}

func newProvider(t *testing.T) *Provider {
	t.Helper()
	n, err := nlp.NewNormalizer("spanish")
	require.NoError(t, err)
	return &Provider{
		Fetcher:    NewFetcher(FetcherOptions{Timeout: time.Second}),
		Normalizer: n,
		Workers:    2,
	}
}

func Test_Flatten(t *testing.T) {
	got := Flatten("  Titulo  \n\n Primera parte  Segunda parte \n\t\n fin")
	assert.Equal(t, "Titulo. Primera parte. Segunda parte. fin", got)
}

func Test_Fetcher_Text_StripsScriptsAndStyles(t *testing.T) {
	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.UserAgent())
		fmt.Fprint(w, pageHTML)
	}))
	defer srv.Close()

	text, err := NewFetcher(FetcherOptions{}).Text(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, ua.Load())
	assert.Contains(t, text, "La economía regional creció")
	assert.Contains(t, text, "Primera frase. Segunda frase")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color")
}

func Test_Fetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewFetcher(FetcherOptions{Timeout: 50 * time.Millisecond}).Text(context.Background(), srv.URL)

	assert.Error(t, err)
}

func Test_Fetcher_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewFetcher(FetcherOptions{}).Text(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func Test_Provider_FromLinks_KeepsOrderAndCountsSkips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			fmt.Fprintf(w, "<html><body><p>Página %s sobre economía regional y exportaciones agrícolas del país.</p></body></html>", strings.TrimPrefix(r.URL.Path, "/"))
		}
	}))
	defer srv.Close()
	p := newProvider(t)
	links := []string{srv.URL + "/a", srv.URL + "/broken", srv.URL + "/b", srv.URL + "/a", srv.URL + "/c"}

	res := p.FromLinks(context.Background(), links)

	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Documents, 3)
	for i, suffix := range []string{"/a", "/b", "/c"} {
		assert.Equal(t, srv.URL+suffix, res.Documents[i].ID)
		assert.True(t, res.Documents[i].Prepared())
		assert.NotEmpty(t, res.Documents[i].Processed)
	}
}

func Test_Provider_FromTopic_TruncatesResults(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, pageHTML)
	}))
	defer srv.Close()
	p := newProvider(t)
	s := &stubSearcher{links: []string{srv.URL + "/1", srv.URL + "/1", srv.URL + "/2", srv.URL + "/3", srv.URL + "/4"}}
	p.Searcher = s

	res := p.FromTopic(context.Background(), []string{"econom", "regional"})

	assert.Equal(t, "econom regional", s.query)
	assert.Len(t, res.Documents, MaxTopicResults)
	assert.Equal(t, int32(MaxTopicResults), atomic.LoadInt32(&hits))
}

func Test_Provider_FromTopic_SearchFailureIsSkipped(t *testing.T) {
	p := newProvider(t)
	p.Searcher = &stubSearcher{err: errors.New("blocked")}

	res := p.FromTopic(context.Background(), []string{"econom"})

	assert.Empty(t, res.Documents)
	assert.Equal(t, 1, res.Skipped)
}

func Test_Provider_Gather_FetchesSharedLinkOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, pageHTML)
	}))
	defer srv.Close()
	p := newProvider(t)
	p.Searcher = &stubSearcher{links: []string{srv.URL + "/cita", srv.URL + "/otra"}}

	res := p.Gather(context.Background(), []string{srv.URL + "/cita"}, []string{"econom"})

	assert.Equal(t, 0, res.Skipped)
	require.Len(t, res.Documents, 2)
	assert.Equal(t, srv.URL+"/cita", res.Documents[0].ID)
	assert.Equal(t, srv.URL+"/otra", res.Documents[1].ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func Test_DuckDuckGo_Search(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		target := url.QueryEscape("https://example.org/articulo")
		fmt.Fprintf(w, `<html><body>
<a class="result__a" href="//duckduckgo.com/l/?uddg=%s&rut=abc">Uno</a>
<a class="result__a" href="https://example.net/dos">Dos</a>
<a class="result__a" href="//duckduckgo.com/l/?uddg=%s&rut=def">Uno otra vez</a>
<a class="result__a" href="/relativo">Relativo</a>
<a class="result__a" href="https://example.com/tres">Tres</a>
<a class="result__a" href="https://example.com/cuatro">Cuatro</a>
</body></html>`, target, target)
	}))
	defer srv.Close()
	d := NewDuckDuckGo(srv.URL+"/html/", NewFetcher(FetcherOptions{}))

	links, err := d.Search(context.Background(), "economia regional", 3)

	require.NoError(t, err)
	assert.Equal(t, "economia regional", query)
	assert.Equal(t, []string{"https://example.org/articulo", "https://example.net/dos", "https://example.com/tres"}, links)
}
