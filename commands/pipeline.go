package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/assessortools/covmap/config"
	"github.com/assessortools/covmap/coverage"
	"github.com/assessortools/covmap/export"
	"github.com/assessortools/covmap/extract"
	"github.com/assessortools/covmap/ingest"
	"github.com/assessortools/covmap/llm"
	"github.com/assessortools/covmap/mapping"
	"github.com/assessortools/covmap/session"
	"github.com/assessortools/covmap/standard"
)

// newCompleter builds the model client from the configuration.
func newCompleter(app *App, cfg *config.Config) (llm.Completer, error) {
	if llm.GetProvider(cfg.Model.Provider) == nil {
		return nil, fmt.Errorf("unknown provider %q (registered: %s)",
			cfg.Model.Provider, strings.Join(llm.ListProviders(), ", "))
	}

	client := llm.NewClient(
		llm.Endpoint{
			Provider: cfg.Model.Provider,
			URL:      cfg.Model.Endpoint,
			Model:    cfg.Model.Model,
		},
		llm.WithHTTPClient(&http.Client{Timeout: cfg.Model.Timeout}),
		llm.WithCallDelay(cfg.Model.CallDelay),
		llm.WithLogger(app.Logger()),
	)
	return client, nil
}

// newStore builds the session store: NATS-backed when a URL is
// configured, in-memory otherwise.
func newStore(ctx context.Context, cfg *config.Config, app *App) (session.Store, error) {
	if cfg.NATS.URL == "" {
		return session.NewMemoryStore(), nil
	}
	return connectNATSStore(ctx, cfg, app)
}

// runPipeline executes the full pipeline for one document: ingest,
// extract, map, analyze. The returned session is not yet stored.
func runPipeline(ctx context.Context, app *App, cfg *config.Config, set *standard.Set, docPath string, policy mapping.Policy) (*session.Session, error) {
	logger := app.Logger()

	reader := ingest.NewReader(ingest.WithLogger(logger))
	doc, err := reader.ReadFile(docPath)
	if err != nil {
		return nil, err
	}

	completer, err := newCompleter(app, cfg)
	if err != nil {
		return nil, err
	}

	planner, err := extract.NewChunkPlanner(cfg.Extraction.ChunkConfig())
	if err != nil {
		return nil, fmt.Errorf("chunk config: %w", err)
	}

	extractor := extract.NewExtractor(
		extract.WithCompleter(completer),
		extract.WithChunkPlanner(planner),
		extract.WithGenerationParams(cfg.Model.GenerationParams()),
		extract.WithLogger(logger),
	)
	questions := extractor.Extract(ctx, doc.Text)
	logger.Info("Questions extracted", "file", doc.Filename, "count", len(questions))

	engine := mapping.NewEngine(completer,
		mapping.WithPolicy(policy),
		mapping.WithGenerationParams(cfg.Model.GenerationParams()),
		mapping.WithLogger(logger),
	)
	mappings, err := engine.MapQuestions(ctx, set, questions)
	if err != nil {
		return nil, err
	}

	report, tasks, err := coverage.NewAnalyzer(coverage.WithLogger(logger)).Analyze(set, mappings)
	if err != nil {
		return nil, err
	}

	sess := session.New(set, "written", doc.Filename)
	sess.Questions = questions
	sess.Mappings = mappings
	sess.Stats = extract.ComputeStats(questions)
	sess.Report = report
	sess.Tasks = tasks
	return sess, nil
}

// expandDocuments resolves document arguments, applying doublestar
// globbing to patterns. Results are deduplicated and sorted.
func expandDocuments(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}

		base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
		matches, err := doublestar.Glob(os.DirFS(base), pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		for _, m := range matches {
			add(filepath.Join(base, m))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// writeSessionArtifacts writes the audit and remediation artifacts for
// one analyzed session into outputDir, returning the written paths.
func writeSessionArtifacts(sess *session.Session, format export.Format, outputDir string) ([]string, error) {
	report, err := export.BuildAuditReport(sess, time.Now())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	auditPath := filepath.Join(outputDir, outputName(sess, "audit", format))
	if err := writeArtifact(auditPath, func(f *os.File) error {
		return export.WriteAudit(f, format, report)
	}); err != nil {
		return nil, err
	}

	remediationPath := filepath.Join(outputDir, outputName(sess, "remediation", format))
	if err := writeArtifact(remediationPath, func(f *os.File) error {
		return export.WriteRemediation(f, format, sess.Tasks)
	}); err != nil {
		return nil, err
	}

	return []string{auditPath, remediationPath}, nil
}

func writeArtifact(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// outputName builds an export filename from the session and artifact
// kind.
func outputName(sess *session.Session, artifact string, format export.Format) string {
	info, _ := export.GetFormatInfo(format)
	base := strings.TrimSuffix(sess.Filename, filepath.Ext(sess.Filename))
	if base == "" {
		base = sess.ID
	}
	return fmt.Sprintf("%s_%s_%s%s", base, sess.StandardCode, artifact, info.Extension)
}
