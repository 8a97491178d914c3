package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"presidency_scraper/internal/app"
	"presidency_scraper/internal/config"
	"presidency_scraper/internal/export"
	"presidency_scraper/internal/population"
	"presidency_scraper/internal/store"
)

var (
	configPath string
	limit      int
)

func main() {
	root := &cobra.Command{
		Use:   "presidency_scraper",
		Short: "Harvest speech transcripts from the American Presidency Project archive",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the yaml configuration")

	crawlCmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run the incremental crawl, then regenerate all exports",
		RunE:  runCrawl,
	}
	crawlCmd.Flags().IntVar(&limit, "limit", -1, "max documents this run (overrides config; 0 means unlimited)")

	root.AddCommand(crawlCmd,
		&cobra.Command{
			Use:   "export",
			Short: "Regenerate the metadata table and zip corpus from the store",
			RunE:  runExport,
		},
		&cobra.Command{
			Use:   "analyze",
			Short: "Build the analysis workbook from the store",
			RunE:  runAnalyze,
		})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	log.SetLevel(level)

	return cfg, log, nil
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if limit >= 0 {
		cfg.Scraper.Limit = limit
	}

	scraper, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer scraper.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// An aborted crawl has already persisted what it gathered; the exports
	// below still run over the merged store.
	if err := scraper.Run(ctx); err != nil {
		log.Errorf("%v", err)
	}

	return exportAll(cfg, log, scraper.Paths())
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	return exportAll(cfg, log, app.NewPaths(cfg.Scraper.OutputDir))
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	paths := app.NewPaths(cfg.Scraper.OutputDir)

	corpus := store.NewCorpusStore(paths.Content).Load()
	log.Infof("analyzing %d documents", len(corpus))
	return export.Analysis(corpus, paths.Analysis)
}

func exportAll(cfg *config.Config, log *logrus.Logger, paths app.Paths) error {
	corpus := store.NewCorpusStore(paths.Content).Load()
	log.Infof("exporting %d documents", len(corpus))

	var popIndex *population.Index
	if cfg.Population.CSV != "" {
		idx, err := population.LoadIndex(cfg.Population.CSV)
		if err != nil {
			log.Warnf("population lookup disabled: %v", err)
		} else {
			popIndex = idx
		}
	}

	if err := export.Metadata(corpus, popIndex, paths.MetadataCSV, paths.MetadataXLSX); err != nil {
		return err
	}
	if err := export.TextCorpus(corpus, paths.Zip); err != nil {
		return err
	}
	return export.Analysis(corpus, paths.Analysis)
}
