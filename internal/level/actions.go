package level

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dtnitsch/llm-page-leveler/internal/common"
	"github.com/dtnitsch/llm-page-leveler/models"
	"github.com/dtnitsch/llm-page-leveler/pkg/db"
	"github.com/dtnitsch/llm-page-leveler/pkg/fetcher"
	"github.com/dtnitsch/llm-page-leveler/pkg/genclient"
	"github.com/dtnitsch/llm-page-leveler/pkg/langdetect"
	"github.com/dtnitsch/llm-page-leveler/pkg/session"
	"github.com/dtnitsch/llm-page-leveler/pkg/storage"
)

const defaultWorkerCount = 4

// input is one page to process: a URL to fetch or a local HTML file.
type input struct {
	URL  string
	Path string
}

func (in input) name() string {
	if in.URL != "" {
		return in.URL
	}
	return in.Path
}

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// resolveConfig loads the YAML config file and applies CLI flag overrides.
func resolveConfig(c *cli.Context) (*models.LevelerConfig, error) {
	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("endpoint") || config.Endpoint == "" {
		config.Endpoint = c.String("endpoint")
	}
	if c.IsSet("model") || config.Model == "" {
		config.Model = c.String("model")
	}
	if c.IsSet("api-key") || config.APIKey == "" {
		config.APIKey = c.String("api-key")
	}
	if c.IsSet("level") || config.Level == "" {
		config.Level = c.String("level")
	}
	if c.IsSet("output-dir") || config.OutputDir == "" {
		config.OutputDir = c.String("output-dir")
	}
	if c.IsSet("workers") || config.Workers <= 0 {
		config.Workers = c.Int("workers")
	}
	if config.Workers <= 0 {
		config.Workers = defaultWorkerCount
	}
	return config, nil
}

// collectInputs gathers pages from --urls and --files, sanitizing and
// validating URLs before any work starts (fail fast).
func collectInputs(c *cli.Context) ([]input, error) {
	var inputs []input

	if c.IsSet("urls") {
		urls := strings.Split(c.String("urls"), ",")
		sanitized, invalid := common.SanitizeAndValidateURLs(urls)
		if len(invalid) > 0 {
			fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed (even after cleanup):\n", len(invalid))
			for _, badURL := range invalid {
				fmt.Fprintf(os.Stderr, "  - %s\n", badURL)
			}
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Note: URLs are auto-cleaned (whitespace trimmed, trailing punctuation removed, markdown links extracted)")
			fmt.Fprintln(os.Stderr, "      Spaces in URLs must be pre-encoded as %20.")
			return nil, fmt.Errorf("%d malformed URL(s)", len(invalid))
		}
		for _, u := range sanitized {
			inputs = append(inputs, input{URL: u})
		}
	}

	if c.IsSet("files") {
		for _, p := range strings.Split(c.String("files"), ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				inputs = append(inputs, input{Path: p})
			}
		}
	}

	return inputs, nil
}

func usageHint(command string) {
	fmt.Fprintln(os.Stderr, "Error: No pages provided")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintf(os.Stderr, "  leveler %s --urls \"https://example.com\" --level B1\n", command)
	fmt.Fprintf(os.Stderr, "  leveler %s --files page.html --level A2\n", command)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "Need help? Run: leveler %s --help\n", command)
}

// progressLogger adapts pipeline progress events onto the structured log.
func progressLogger(logger *slog.Logger, name string) models.ProgressFunc {
	return func(ev models.ProgressEvent) {
		logger.Info("progress", "page", name, "phase", string(ev.Phase), "percent", ev.Percent)
	}
}

func loadDocument(ctx context.Context, f *fetcher.Fetcher, in input) (*goquery.Document, error) {
	if in.Path != "" {
		return fetcher.ReadDocument(in.Path)
	}
	return f.GetDocument(ctx, in.URL)
}

func RewriteAction(c *cli.Context) error {
	logger := newLogger(c)
	startTime := time.Now()

	config, err := resolveConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if config.Endpoint == "" {
		fmt.Fprintln(os.Stderr, "Error: No backend endpoint configured")
		fmt.Fprintln(os.Stderr, "Set --endpoint or put 'endpoint:' in config.yaml")
		os.Exit(1)
	}

	levelValue := models.ParseLevel(config.Level)
	logger.Info("Target level resolved", "requested", config.Level, "level", string(levelValue))

	inputs, err := collectInputs(c)
	if err != nil {
		os.Exit(1)
	}
	if len(inputs) == 0 {
		usageHint("rewrite")
		os.Exit(1)
	}

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	client := genclient.New(genclient.Config{
		Endpoint: config.Endpoint,
		Model:    config.Model,
		APIKey:   config.APIKey,
	}, logger)
	detector := langdetect.New()
	f := fetcher.NewFetcher()
	store := &storage.Storage{}
	verify := c.Bool("verify-restore")

	results := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(config.Workers)
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = processRewrite(ctx, logger, client, detector, f, store, in, levelValue, config.OutputDir, verify)
			return nil
		})
	}
	// Per-page failures are contained in the result set; Wait only reports
	// context cancellation.
	if err := g.Wait(); err != nil {
		logger.Error("rewrite run interrupted", "error", err)
	}

	recordRuns(logger, database, results)

	successful := 0
	for _, r := range results {
		if r.Err == nil {
			successful++
		}
	}

	summaryPath, err := WriteRunSummary(results, time.Since(startTime), config.OutputDir)
	if err != nil {
		logger.Warn("failed to write run summary", "error", err)
	}

	fmt.Printf("Rewrote %d/%d pages at level %s\n", successful, len(inputs), levelValue)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  failed: %s (%s)\n", r.Name, r.Err)
			continue
		}
		fmt.Printf("  %s -> %s (%d/%d elements)\n", r.Name, r.OutputPath, r.Rewritten, r.Targets)
	}
	if summaryPath != "" {
		fmt.Printf("Run summary: %s\n", summaryPath)
	}

	exitOnFailures(successful, len(inputs))
	return nil
}

func processRewrite(ctx context.Context, logger *slog.Logger, client *genclient.Client, detector *langdetect.Detector, f *fetcher.Fetcher, store *storage.Storage, in input, levelValue models.Level, outputDir string, verify bool) Result {
	start := time.Now()
	res := Result{Name: in.name(), Action: "rewrite", Level: string(levelValue)}

	doc, err := loadDocument(ctx, f, in)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	sess := session.New(doc, in.URL, session.Config{
		Backend:  client,
		Logger:   logger,
		Detector: detector,
		Progress: progressLogger(logger, in.name()),
	})

	var baseline string
	if verify {
		baseline, err = sess.Html()
		if err != nil {
			res.Err = err
			res.Duration = time.Since(start)
			return res
		}
	}

	rr, err := sess.Rewrite(ctx, levelValue)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}
	res.Targets = rr.TargetsFound
	res.Rewritten = rr.ElementsRewritten
	res.Language = sess.Language()

	html, err := sess.Html()
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	slug := outputSlug(in)
	outputName := fmt.Sprintf("%s-%s.html", slug, strings.ToLower(string(levelValue)))
	outputPath, err := store.SaveFileIn(outputDir, outputName, []byte(html))
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}
	res.OutputPath = outputPath

	if verify {
		restored := sess.Reset()
		restoredHTML, htmlErr := sess.Html()
		if htmlErr != nil {
			res.Err = htmlErr
			res.Duration = time.Since(start)
			return res
		}
		res.RestoreVerified = common.ContentHash([]byte(restoredHTML)) == common.ContentHash([]byte(baseline))
		if !res.RestoreVerified {
			logger.Warn("restored page does not match original", "page", in.name(), "restored_elements", restored)
		}
		restoredPath, saveErr := store.SaveFileIn(outputDir, slug+"-restored.html", []byte(restoredHTML))
		if saveErr != nil {
			logger.Warn("failed to write restored page", "page", in.name(), "error", saveErr)
		} else {
			logger.Info("restored page written", "page", in.name(), "path", restoredPath, "verified", res.RestoreVerified)
		}
	}

	res.Duration = time.Since(start)
	return res
}

func SummarizeAction(c *cli.Context) error {
	logger := newLogger(c)
	startTime := time.Now()

	config, err := resolveConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if config.Endpoint == "" {
		fmt.Fprintln(os.Stderr, "Error: No backend endpoint configured")
		fmt.Fprintln(os.Stderr, "Set --endpoint or put 'endpoint:' in config.yaml")
		os.Exit(1)
	}

	levelValue := models.ParseLevel(config.Level)

	inputs, err := collectInputs(c)
	if err != nil {
		os.Exit(1)
	}
	if len(inputs) == 0 {
		usageHint("summarize")
		os.Exit(1)
	}

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	client := genclient.New(genclient.Config{
		Endpoint: config.Endpoint,
		Model:    config.Model,
		APIKey:   config.APIKey,
	}, logger)
	detector := langdetect.New()
	f := fetcher.NewFetcher()
	store := &storage.Storage{}

	results := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(config.Workers)
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = processSummarize(ctx, logger, client, detector, f, store, in, levelValue, config.OutputDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("summarize run interrupted", "error", err)
	}

	recordRuns(logger, database, results)

	successful := 0
	for _, r := range results {
		if r.Err == nil {
			successful++
		}
	}

	summaryPath, err := WriteRunSummary(results, time.Since(startTime), config.OutputDir)
	if err != nil {
		logger.Warn("failed to write run summary", "error", err)
	}

	fmt.Printf("Summarized %d/%d pages at level %s\n", successful, len(inputs), levelValue)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  failed: %s (%s)\n", r.Name, r.Err)
			continue
		}
		fmt.Printf("  %s -> %s (%d chars)\n", r.Name, r.OutputPath, r.SummaryChars)
	}
	if len(inputs) == 1 && results[0].Err == nil && !c.Bool("quiet") {
		fmt.Println()
		fmt.Println(results[0].Summary)
	}
	if summaryPath != "" {
		fmt.Printf("Run summary: %s\n", summaryPath)
	}

	exitOnFailures(successful, len(inputs))
	return nil
}

func processSummarize(ctx context.Context, logger *slog.Logger, client *genclient.Client, detector *langdetect.Detector, f *fetcher.Fetcher, store *storage.Storage, in input, levelValue models.Level, outputDir string) Result {
	start := time.Now()
	res := Result{Name: in.name(), Action: "summarize", Level: string(levelValue)}

	doc, err := loadDocument(ctx, f, in)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	sess := session.New(doc, in.URL, session.Config{
		Backend:  client,
		Logger:   logger,
		Detector: detector,
		Progress: progressLogger(logger, in.name()),
	})

	sr, err := sess.Summarize(ctx, levelValue)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}
	res.Language = sess.Language()
	res.Summary = sr.Summary
	res.SummaryChars = len(sr.Summary)

	outputPath, err := store.SaveFileIn(outputDir, sr.Filename, []byte(sr.Summary))
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}
	res.OutputPath = outputPath

	res.Duration = time.Since(start)
	return res
}

// SessionsAction lists recent recorded runs in a table.
func SessionsAction(c *cli.Context) error {
	database, err := db.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return nil
	}

	fmt.Printf("%-6s %-20s %-10s %-5s %-8s %-8s %-9s %-8s %-40s\n",
		"ID", "Created", "Action", "Level", "Targets", "Written", "Duration", "Status", "URL")
	fmt.Println(strings.Repeat("-", 120))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-10s %-5s %-8d %-8d %-9s %-8s %-40s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Action,
			r.Level,
			r.Targets,
			r.Rewritten,
			r.Duration.Round(time.Millisecond),
			r.Status,
			r.URL,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	return nil
}

// recordRuns persists each result. Persistence failures are logged, never
// fatal: the artifacts on disk are the source of truth.
func recordRuns(logger *slog.Logger, database *db.DB, results []Result) {
	for _, r := range results {
		run := db.Run{
			URL:          r.Name,
			Action:       r.Action,
			Level:        r.Level,
			Language:     r.Language,
			Targets:      r.Targets,
			Rewritten:    r.Rewritten,
			SummaryChars: r.SummaryChars,
			Duration:     r.Duration,
			Status:       "success",
		}
		if r.Err != nil {
			run.Status = "failed"
			run.Error = r.Err.Error()
		}
		if _, err := database.InsertRun(run); err != nil {
			logger.Warn("failed to record run", "page", r.Name, "error", err)
		}
	}
}

func outputSlug(in input) string {
	if in.URL != "" {
		return common.SlugFromURL(in.URL)
	}
	base := in.Path
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".html")
}

func exitOnFailures(successful, total int) {
	if successful == 0 {
		os.Exit(2)
	}
	if successful < total {
		os.Exit(1)
	}
}
