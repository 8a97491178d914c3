package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presidency_scraper/internal/config"
	"presidency_scraper/internal/fetch"
	"presidency_scraper/internal/filter"
	"presidency_scraper/internal/models"
	"presidency_scraper/internal/store"
)

func docHTML(title, speaker, state string) string {
	stateDiv := ""
	if state != "" {
		stateDiv = fmt.Sprintf(`<div class="field-spot-state"><a href="#">%s</a></div>`, state)
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><body>
<div class="field-docs-content"><p>Thank you all very much.</p></div>
<span class="date-display-single">November 4, 2008</span>
<div class="field-ds-doc-title"><h1>%s</h1></div>
<h3 class="diet-title"><a href="#">%s</a></h3>
%s
<p class="ucsbapp_citation">%s, %s. The American Presidency Project.</p>
</body></html>`, title, speaker, stateDiv, speaker, title)
}

func listingHTML(hrefs []string, nextHref string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body><table>")
	for i, href := range hrefs {
		class := "even"
		if i%2 == 1 {
			class = "odd"
		}
		fmt.Fprintf(&b, `<tr class=%q><td class="views-field-title"><a href=%q>doc</a></td></tr>`, class, href)
	}
	b.WriteString("</table>")
	if nextHref != "" {
		fmt.Fprintf(&b, `<a title="Go to next page" href=%q>next</a>`, nextHref)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// testSite is a two-page archive: documents a and b on page 0, c on page 1.
type testSite struct {
	mu     sync.Mutex
	hits   map[string]int
	broken map[string]bool // paths forced to return 500
	pages  map[string]string
}

func newTestSite() *testSite {
	site := &testSite{
		hits:   map[string]int{},
		broken: map[string]bool{},
		pages: map[string]string{
			"/documents/a": docHTML("Remarks in Columbus, Ohio", "Barack Obama", "Ohio"),
			"/documents/b": docHTML("Press Release on Jobs", "Barack Obama", ""),
			"/documents/c": docHTML("Remarks in Des Moines, Iowa", "John McCain", "Iowa"),
		},
	}
	return site
}

func (s *testSite) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.Path == "/listing" {
			key = "/listing?page=" + r.URL.Query().Get("page")
		}
		s.mu.Lock()
		s.hits[key]++
		broken := s.broken[key]
		s.mu.Unlock()

		if broken {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		switch key {
		case "/listing?page=0", "/listing?page=":
			io.WriteString(w, listingHTML([]string{"/documents/a", "/documents/b"}, "/listing?page=1"))
		case "/listing?page=1":
			io.WriteString(w, listingHTML([]string{"/documents/c"}, ""))
		default:
			page, ok := s.pages[key]
			if !ok {
				http.NotFound(w, r)
				return
			}
			io.WriteString(w, page)
		}
	})
}

func (s *testSite) hitCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

func newTestScraper(t *testing.T, serverURL, dir string, rules filter.Rules, limit int) *Scraper {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	links, err := store.OpenLinkLog(filepath.Join(dir, "scrapedWebsites.txt"))
	require.NoError(t, err)
	t.Cleanup(func() { links.Close() })

	cfg := &config.Config{}
	cfg.Scraper.InitialURL = serverURL + "/listing?page=0"
	cfg.Scraper.Limit = limit

	return &Scraper{
		cfg:       cfg,
		baseURL:   serverURL,
		paths:     NewPaths(dir),
		client:    fetch.NewClient("test-agent", 5*time.Second, 0, log),
		rules:     rules,
		links:     links,
		corpus:    store.NewCorpusStore(filepath.Join(dir, "content.json")),
		log:       log,
		state:     StateIdle,
		collected: models.Corpus{},
	}
}

func TestRunUntilExhausted(t *testing.T) {
	site := newTestSite()
	server := httptest.NewServer(site.handler())
	defer server.Close()

	dir := t.TempDir()
	s := newTestScraper(t, server.URL, dir, filter.Rules{}, 0)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, StateExhausted, s.state)

	corpus := s.corpus.Load()
	require.Len(t, corpus, 3)
	assert.Equal(t, "Barack Obama", corpus[server.URL+"/documents/a"].Speaker)
	assert.Equal(t, "Columbus", corpus[server.URL+"/documents/a"].City)

	assert.Equal(t, 1, site.hitCount("/listing?page=0"))
	assert.Equal(t, 1, site.hitCount("/listing?page=1"))
	assert.Equal(t, 1, site.hitCount("/documents/c"))
}

func TestVisitedLinksAreNotRefetched(t *testing.T) {
	site := newTestSite()
	server := httptest.NewServer(site.handler())
	defer server.Close()

	dir := t.TempDir()

	// A prior run already handled document a.
	prior, err := store.OpenLinkLog(filepath.Join(dir, "scrapedWebsites.txt"))
	require.NoError(t, err)
	require.NoError(t, prior.Add(server.URL+"/documents/a"))
	require.NoError(t, prior.Close())

	s := newTestScraper(t, server.URL, dir, filter.Rules{}, 0)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, 0, site.hitCount("/documents/a"))
	assert.Equal(t, 1, site.hitCount("/documents/b"))

	corpus := s.corpus.Load()
	assert.Len(t, corpus, 2)
	assert.NotContains(t, corpus, server.URL+"/documents/a")
}

func TestLimitStopsMidPage(t *testing.T) {
	site := newTestSite()
	server := httptest.NewServer(site.handler())
	defer server.Close()

	s := newTestScraper(t, server.URL, t.TempDir(), filter.Rules{}, 1)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, StateLimitReached, s.state)
	assert.Equal(t, 1, site.hitCount("/documents/a"))
	assert.Equal(t, 0, site.hitCount("/documents/b"))
	assert.Equal(t, 0, site.hitCount("/listing?page=1"))

	assert.Len(t, s.corpus.Load(), 1)
}

func TestVisitedLinksDoNotConsumeLimit(t *testing.T) {
	site := newTestSite()
	server := httptest.NewServer(site.handler())
	defer server.Close()

	dir := t.TempDir()
	prior, err := store.OpenLinkLog(filepath.Join(dir, "scrapedWebsites.txt"))
	require.NoError(t, err)
	require.NoError(t, prior.Add(server.URL+"/documents/a"))
	require.NoError(t, prior.Close())

	s := newTestScraper(t, server.URL, dir, filter.Rules{}, 1)
	require.NoError(t, s.Run(context.Background()))

	// The limit budget goes to document b, not to the already-visited a.
	assert.Equal(t, StateLimitReached, s.state)
	assert.Equal(t, 1, site.hitCount("/documents/b"))
	assert.Len(t, s.corpus.Load(), 1)
}

func TestListingFailureAbortsButPersists(t *testing.T) {
	site := newTestSite()
	site.broken["/listing?page=1"] = true
	server := httptest.NewServer(site.handler())
	defer server.Close()

	s := newTestScraper(t, server.URL, t.TempDir(), filter.Rules{}, 0)
	err := s.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateAborted, s.state)

	// Page 0's documents were gathered before the failure and survive it.
	corpus := s.corpus.Load()
	assert.Len(t, corpus, 2)
	assert.Contains(t, corpus, server.URL+"/documents/a")
}

func TestFilterRejectionIsFinal(t *testing.T) {
	site := newTestSite()
	server := httptest.NewServer(site.handler())
	defer server.Close()

	rules, err := filter.Parse(nil, map[string][]string{
		"title_substring": {"Press Release"},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	s := newTestScraper(t, server.URL, dir, rules, 0)
	require.NoError(t, s.Run(context.Background()))

	corpus := s.corpus.Load()
	assert.Len(t, corpus, 2)
	assert.NotContains(t, corpus, server.URL+"/documents/b")

	// The rejected document is marked visited all the same.
	assert.True(t, s.links.Seen(server.URL+"/documents/b"))
}

func TestDocumentFailureIsRetriedNextRun(t *testing.T) {
	site := newTestSite()
	site.broken["/documents/b"] = true
	server := httptest.NewServer(site.handler())
	defer server.Close()

	dir := t.TempDir()
	s := newTestScraper(t, server.URL, dir, filter.Rules{}, 0)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, StateExhausted, s.state)
	assert.Len(t, s.corpus.Load(), 2)
	assert.False(t, s.links.Seen(server.URL+"/documents/b"))

	// Next run: b works again and is picked up; a and c are skipped.
	site.mu.Lock()
	site.broken["/documents/b"] = false
	site.mu.Unlock()

	s2 := newTestScraper(t, server.URL, dir, filter.Rules{}, 0)
	require.NoError(t, s2.Run(context.Background()))

	assert.Len(t, s2.corpus.Load(), 3)
	assert.Equal(t, 1, site.hitCount("/documents/a"))
	assert.Equal(t, 1, site.hitCount("/documents/c"))
}

func TestMalformedDocumentIsSkipped(t *testing.T) {
	site := newTestSite()
	site.pages["/documents/b"] = "<html><body><p>no transcript markup at all</p></body></html>"
	server := httptest.NewServer(site.handler())
	defer server.Close()

	s := newTestScraper(t, server.URL, t.TempDir(), filter.Rules{}, 0)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, StateExhausted, s.state)
	assert.Len(t, s.corpus.Load(), 2)
	assert.False(t, s.links.Seen(server.URL+"/documents/b"))
}

func TestUnreachableSeedFailsBeforeCrawling(t *testing.T) {
	site := newTestSite()
	server := httptest.NewServer(site.handler())
	server.Close() // nothing listening anymore

	s := newTestScraper(t, server.URL, t.TempDir(), filter.Rules{}, 0)
	err := s.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateIdle, s.state)
	assert.Empty(t, s.corpus.Load())
}
