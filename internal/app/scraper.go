package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"presidency_scraper/internal/extract"
	"presidency_scraper/internal/frontier"
	"presidency_scraper/internal/models"
)

// State of the crawl loop.
type State int

const (
	StateIdle State = iota
	StatePaginating
	StateExhausted
	StateLimitReached
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePaginating:
		return "paginating"
	case StateExhausted:
		return "exhausted"
	case StateLimitReached:
		return "limit reached"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Run executes one crawl. A failed seed check is a configuration error and
// returns before any state is touched. Once pagination has started, every
// outcome - including an abort - goes through the finalizer, so documents
// gathered before a failure are never lost. The returned error is non-nil
// only for the aborted case.
func (s *Scraper) Run(ctx context.Context) error {
	seed := s.cfg.Scraper.InitialURL
	if !strings.HasPrefix(seed, s.baseURL) {
		return fmt.Errorf("seed url %s does not match the base url %s", seed, s.baseURL)
	}
	if err := s.client.Check(ctx, seed); err != nil {
		return fmt.Errorf("seed url check failed: %w", err)
	}
	s.client.LoadRobots(ctx, s.baseURL)

	start := time.Now()
	s.state = StatePaginating
	s.collected = models.Corpus{}
	s.processed = 0

	runErr := s.paginate(ctx, seed)
	if runErr != nil {
		s.state = StateAborted
	}
	s.finalize(start)

	if runErr != nil {
		return fmt.Errorf("crawl aborted: %w", runErr)
	}
	return nil
}

// paginate walks listing pages until pagination is exhausted, the item
// limit is hit, or a listing fetch fails. Document-level failures are
// handled inside processDocument and never stop the walk.
func (s *Scraper) paginate(ctx context.Context, url string) error {
	s.pageNr = 1
	limit := s.cfg.Scraper.Limit

	for {
		s.log.Infof("loading results page %03d: %s", s.pageNr, url)

		listing, err := s.client.Get(ctx, url)
		if err != nil {
			return fmt.Errorf("fetch listing page %d: %w", s.pageNr, err)
		}

		for _, link := range frontier.Listing(listing, s.baseURL) {
			s.log.Debugf("found link: %s", link)
			if s.links.Seen(link) {
				// Already handled in a prior run. Free: does not
				// consume the limit budget.
				continue
			}

			s.processDocument(ctx, link)
			s.processed++
			if limit > 0 && s.processed >= limit {
				s.state = StateLimitReached
				return nil
			}
		}

		next, ok := frontier.NextPage(listing, s.baseURL)
		if !ok {
			s.state = StateExhausted
			return nil
		}
		url = next
		s.pageNr++
	}
}

// processDocument fetches, extracts and filters one document. Fetch and
// extraction failures are logged and skipped without marking the link
// visited, so a later run retries the document. Filter rejections are
// final and do mark the link visited.
func (s *Scraper) processDocument(ctx context.Context, link string) {
	page, err := s.client.Get(ctx, link)
	if err != nil {
		s.log.Warnf("skipping %s: %v", link, err)
		return
	}

	speech, err := extract.Parse(page)
	if err != nil {
		var missing *extract.MissingFieldError
		if errors.As(err, &missing) {
			s.log.Warnf("skipping %s: missing field %q", link, missing.Field)
		} else {
			s.log.Warnf("skipping %s: %v", link, err)
		}
		return
	}

	if s.rules.Accepts(*speech) {
		s.collected[link] = *speech
		s.log.Debugf("accepted %q (%s)", speech.Title, link)
	} else {
		s.log.Debugf("filtered out %q (%s)", speech.Title, link)
	}

	// Mark visited only after the record is safely in the accumulator.
	if err := s.links.Add(link); err != nil {
		s.log.Errorf("could not mark %s as visited: %v", link, err)
	}
}

// finalize persists everything gathered this run and logs the summary. It
// runs on every terminal path.
func (s *Scraper) finalize(start time.Time) {
	added, err := s.corpus.Merge(s.collected)
	if err != nil {
		s.log.Errorf("could not persist corpus: %v", err)
	}

	if s.mirror != nil && added > 0 {
		if err := s.mirror.SaveAll(s.collected); err != nil {
			s.log.Errorf("could not mirror corpus: %v", err)
		}
	}

	elapsed := time.Since(start).Round(time.Second)
	s.log.Warnf("scraped %d documents in %s (%s, %d new in store)",
		len(s.collected), formatDuration(elapsed), s.state, added)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}
