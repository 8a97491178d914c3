package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"presidency_scraper/internal/config"
	"presidency_scraper/internal/db"
	"presidency_scraper/internal/fetch"
	"presidency_scraper/internal/filter"
	"presidency_scraper/internal/models"
	"presidency_scraper/internal/store"
)

// Paths is the on-disk layout of one run configuration. Everything lives
// under a single root so two configurations never share state.
type Paths struct {
	Root         string
	Links        string
	Content      string
	MetadataCSV  string
	MetadataXLSX string
	Zip          string
	Analysis     string
}

func NewPaths(root string) Paths {
	return Paths{
		Root:         root,
		Links:        filepath.Join(root, "scrapedWebsites.txt"),
		Content:      filepath.Join(root, "content.json"),
		MetadataCSV:  filepath.Join(root, "metadata.csv"),
		MetadataXLSX: filepath.Join(root, "metadata.xlsx"),
		Zip:          filepath.Join(root, "corpora.zip"),
		Analysis:     filepath.Join(root, "analysis.xlsx"),
	}
}

// Scraper drives one crawl: pagination, per-document extraction and
// filtering, incremental persistence. One instance per run configuration;
// the logger is injected so two scrapers in one process stay independent.
type Scraper struct {
	cfg     *config.Config
	baseURL string
	paths   Paths
	client  *fetch.Client
	rules   filter.Rules
	links   *store.LinkLog
	corpus  *store.CorpusStore
	mirror  *db.Mirror
	log     *logrus.Logger

	state     State
	collected models.Corpus
	processed int
	pageNr    int
}

// New wires a scraper from a validated config. The output directory and its
// state files are created here; the seed URL is not touched until Run.
func New(cfg *config.Config, log *logrus.Logger) (*Scraper, error) {
	paths := NewPaths(cfg.Scraper.OutputDir)
	if err := os.MkdirAll(paths.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	links, err := store.OpenLinkLog(paths.Links)
	if err != nil {
		return nil, err
	}

	s := &Scraper{
		cfg:     cfg,
		baseURL: config.BaseURL,
		paths:   paths,
		rules:   rules,
		links:   links,
		corpus:  store.NewCorpusStore(paths.Content),
		log:     log,
		client: fetch.NewClient(
			cfg.Scraper.UserAgent,
			time.Duration(cfg.Scraper.TimeoutSec)*time.Second,
			time.Duration(cfg.Scraper.DelayMS)*time.Millisecond,
			log,
		),
		state:     StateIdle,
		collected: models.Corpus{},
	}

	if cfg.DB.Enabled {
		mirror, err := db.Connect(cfg.DB)
		if err != nil {
			links.Close()
			return nil, err
		}
		s.mirror = mirror
	}
	return s, nil
}

// Paths exposes the run's file layout for the export stages.
func (s *Scraper) Paths() Paths {
	return s.paths
}

func (s *Scraper) Close() error {
	err := s.links.Close()
	if s.mirror != nil {
		if cerr := s.mirror.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
