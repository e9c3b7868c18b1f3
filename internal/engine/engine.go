package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/serpharvest/serpharvest/internal/aggregator"
	"github.com/serpharvest/serpharvest/internal/config"
	"github.com/serpharvest/serpharvest/internal/database"
	"github.com/serpharvest/serpharvest/internal/expander"
	"github.com/serpharvest/serpharvest/internal/export"
	"github.com/serpharvest/serpharvest/internal/extractor"
	"github.com/serpharvest/serpharvest/internal/fetcher"
	"github.com/serpharvest/serpharvest/internal/model"
	"github.com/serpharvest/serpharvest/internal/proxy"
	"github.com/serpharvest/serpharvest/internal/ratelimit"
	"github.com/serpharvest/serpharvest/internal/scheduler"
	"github.com/serpharvest/serpharvest/internal/suggest"
)

// Engine runs harvest flows against a fixed configuration.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger

	pool      *proxy.Pool
	suggests  *suggest.Client
	collector *aggregator.Collector
	expand    *expander.Expander
	sched     *scheduler.Scheduler
	browser   *fetcher.BrowserFetcher

	// testScrape overrides the browser fetcher in tests.
	testScrape fetcher.Fetcher
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// withScrapeFetcher overrides the browser fetcher. Test seam.
func withScrapeFetcher(f fetcher.Fetcher) Option {
	return func(e *Engine) {
		e.testScrape = f
	}
}

// New builds an Engine from a validated configuration.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	e.pool = proxy.NewPool(cfg.ProxyURLs, cfg.RotateProxy)
	e.suggests = suggest.NewClient("", cfg.Language, cfg.Country)
	e.collector = aggregator.New()

	httpFetcher := fetcher.NewHTTPFetcher(
		e.suggests,
		cfg.GoogleDomain,
		cfg.Language,
		cfg.ResultsPerPage,
		cfg.RequestTimeout,
		cfg.UserAgents,
		e.pool,
	)

	var scrape fetcher.Fetcher
	if e.testScrape != nil {
		scrape = e.testScrape
	} else {
		e.browser = fetcher.NewBrowserFetcher(
			cfg.GoogleDomain,
			cfg.Language,
			cfg.ResultsPerPage,
			cfg.RequestTimeout,
			cfg.Headless,
			cfg.UserAgents,
			e.pool,
		)
		scrape = e.browser
	}

	router := &fetcher.Router{HTTP: httpFetcher, Scrape: scrape}

	e.sched = scheduler.New(router, e.handle,
		scheduler.WithConcurrency(cfg.MaxConcurrency),
		scheduler.WithMaxRetries(cfg.MaxRetries),
		scheduler.WithProxySource(e.pool),
		scheduler.WithLimiter(ratelimit.New(cfg.MinDelay, cfg.MaxDelay)),
		scheduler.WithLogger(e.logger),
	)

	e.expand = expander.New(e.sched, e.suggests, cfg.Modifiers, cfg.MaxDepth, cfg.MaxKeywords, e.logger)

	return e, nil
}

// handle dispatches completed fetches by purpose.
func (e *Engine) handle(ctx context.Context, task *model.FetchTask, res *fetcher.Result) error {
	switch task.Purpose {
	case model.PurposeSuggest:
		return e.expand.HandleSuggest(ctx, task, res)
	case model.PurposeScrape:
		serp, err := extractor.Extract(string(res.Body), task.Keyword, task.Page)
		if err != nil {
			return &fetcher.FetchError{Kind: fetcher.KindParse, URL: res.FinalURL, Err: err}
		}
		e.collector.Add(serp)
		return nil
	default:
		return fmt.Errorf("engine: unknown task purpose %q", task.Purpose)
	}
}

// Scrape fetches result pages for every seed keyword and returns the
// run's export document.
func (e *Engine) Scrape(ctx context.Context) (*export.Document, error) {
	e.logger.Info("starting scrape run",
		"seeds", len(e.cfg.Seeds),
		"pages_per_keyword", e.cfg.PagesPerKeyword,
		"concurrency", e.cfg.MaxConcurrency,
	)

	err := e.run(ctx, func() {
		for _, seed := range e.cfg.Seeds {
			for page := 1; page <= e.cfg.PagesPerKeyword; page++ {
				e.sched.Submit(&model.FetchTask{
					Keyword: seed,
					Purpose: model.PurposeScrape,
					Page:    page,
				})
			}
		}
	})
	if err != nil {
		return nil, err
	}

	meta := model.NewRunMetadata(model.RunScrape, e.cfg.Language, e.cfg.Country, e.cfg.Seeds)
	failures := e.sched.Failures()
	meta.TaskCount = e.sched.Accepted()
	meta.FailedTasks = len(failures)

	doc := &export.Document{
		Metadata: meta,
		Results:  e.collector.Results(),
		Failures: failures,
	}
	e.logger.Info("scrape run finished",
		"pages", len(doc.Results),
		"organic_results", e.collector.TotalOrganic(),
		"skipped_items", e.collector.TotalSkipped(),
		"failed_tasks", len(failures),
	)

	return doc, e.persist(ctx, doc)
}

// Expand grows the keyword tree from the seeds and returns the run's
// export document.
func (e *Engine) Expand(ctx context.Context) (*export.Document, error) {
	e.logger.Info("starting expansion run",
		"seeds", len(e.cfg.Seeds),
		"max_depth", e.cfg.MaxDepth,
		"modifiers", len(e.cfg.Modifiers),
	)

	var nodes []model.KeywordNode
	var expandErr error
	err := e.run(ctx, func() {
		nodes, expandErr = e.expand.Expand(ctx, e.cfg.Seeds)
	})
	if err != nil {
		return nil, err
	}
	if expandErr != nil {
		return nil, expandErr
	}

	meta := model.NewRunMetadata(model.RunExpand, e.cfg.Language, e.cfg.Country, e.cfg.Seeds)
	failures := e.sched.Failures()
	meta.MaxDepth = e.cfg.MaxDepth
	meta.TaskCount = e.sched.Accepted()
	meta.FailedTasks = len(failures)

	stats := e.expand.Stats()
	doc := &export.Document{
		Metadata: meta,
		Keywords: nodes,
		Stats:    &stats,
		Failures: failures,
	}
	e.logger.Info("expansion run finished",
		"keywords", len(nodes),
		"queries", meta.TaskCount,
		"failed_tasks", len(failures),
	)

	return doc, e.persist(ctx, doc)
}

// run starts the scheduler, executes submit, drains, and shuts the
// worker pool down.
func (e *Engine) run(ctx context.Context, submit func()) error {
	runErr := make(chan error, 1)
	go func() { runErr <- e.sched.Run(ctx) }()

	submit()

	drainErr := e.sched.Drain(ctx)
	e.sched.Stop()
	if err := <-runErr; err != nil {
		return err
	}
	return drainErr
}

// persist saves the run to the SQLite store when enabled.
func (e *Engine) persist(ctx context.Context, doc *export.Document) error {
	if !e.cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(e.databaseDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer db.Close() //nolint:errcheck // close after save

	if err := db.SaveRun(ctx, doc.Metadata, doc.Results, doc.Keywords); err != nil {
		return err
	}
	e.logger.Info("run persisted", "run_id", doc.Metadata.ID, "db", db.Path())
	return nil
}

// databaseDir resolves the run store directory.
func (e *Engine) databaseDir() string {
	if e.cfg.DBDir != "" {
		return e.cfg.DBDir
	}
	return config.XDGDataDir()
}

// Export writes the document to the configured output location and
// returns the file path.
func (e *Engine) Export(doc *export.Document) (string, error) {
	dir := e.cfg.OutputDir
	if dir == "" {
		dir = config.XDGDataDir()
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := e.cfg.OutputName
	if name == "" {
		seed := ""
		if len(e.cfg.Seeds) > 0 {
			seed = e.cfg.Seeds[0]
		}
		prefix := "serp"
		if doc.Metadata.Kind == model.RunExpand {
			prefix = "keywords"
		}
		name = export.DefaultFileName(prefix, seed, e.cfg.ExportFormat, doc.Metadata.GeneratedAt)
	} else {
		name = fmt.Sprintf("%s.%s", export.SanitizeFilename(name), e.cfg.ExportFormat)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close() //nolint:errcheck // double close on error path is harmless

	w, err := export.ForFormat(e.cfg.ExportFormat, f)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(doc); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	e.logger.Info("export written", "path", path, "format", e.cfg.ExportFormat)
	return path, nil
}

// Close releases browser processes.
func (e *Engine) Close() error {
	if e.browser != nil {
		return e.browser.Close()
	}
	return nil
}
