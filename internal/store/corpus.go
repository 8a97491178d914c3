// Package store owns the two durable artifacts of a crawl: the visited-link
// log and the keyed corpus file. Both layouts are fixed (line-delimited URLs,
// one JSON object keyed by URL) so stores written by earlier runs, or by the
// original tool, stay readable.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"presidency_scraper/internal/models"
)

// CorpusStore merges accepted speeches into one JSON file. Existing entries
// are never overwritten, which makes Merge idempotent and a crawl resumable.
type CorpusStore struct {
	path string
}

func NewCorpusStore(path string) *CorpusStore {
	return &CorpusStore{path: path}
}

// Load reads the persisted corpus. A missing or corrupt file means "no
// prior data", never a failed run.
func (s *CorpusStore) Load() models.Corpus {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.Corpus{}
	}
	var corpus models.Corpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return models.Corpus{}
	}
	if corpus == nil {
		corpus = models.Corpus{}
	}
	return corpus
}

// Merge adds records whose key is not yet stored and rewrites the file as a
// single unit. First write wins; nothing is written when every key already
// exists. Returns the number of records actually added.
func (s *CorpusStore) Merge(records models.Corpus) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	corpus := s.Load()
	added := 0
	for url, speech := range records {
		if _, ok := corpus[url]; !ok {
			corpus[url] = speech
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}

	data, err := json.Marshal(corpus)
	if err != nil {
		return 0, fmt.Errorf("encode corpus: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write corpus: %w", err)
	}
	return added, nil
}
