// Package commands provides the covmap CLI commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/assessortools/covmap/config"
)

// App carries the CLI-wide state shared by all commands.
type App struct {
	ConfigPath string
	LogLevel   string

	logger *slog.Logger
	cfg    *config.Config
}

// Logger returns the configured logger.
func (a *App) Logger() *slog.Logger {
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a.logger
}

// Config loads the effective configuration once and caches it.
func (a *App) Config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	var cfg *config.Config
	var err error
	if a.ConfigPath != "" {
		cfg, err = config.LoadFromFile(a.ConfigPath)
		if err == nil {
			err = cfg.Validate()
		}
	} else {
		cfg, err = config.NewLoader(a.Logger()).Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a.cfg = cfg
	return cfg, nil
}

// NewRootCmd builds the covmap command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:   "covmap",
		Short: "Map assessment questions onto a competency standard",
		Long: `covmap turns an unstructured assessment document into a validated
coverage map against a competency standard.

It extracts questions from the document, maps each question onto the
standard's elements, performance criteria and evidence requirements,
and reports coverage gaps with remediation tasks.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.logger = newLogger(app.LogLevel)
			slog.SetDefault(app.logger)
		},
	}

	cmd.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newAnalyzeCmd(app),
		newExtractCmd(app),
		newMapCmd(app),
		newExportCmd(app),
		newSessionsCmd(app),
		newWatchCmd(app),
		newVersionCmd(),
	)

	return cmd
}

// newLogger builds the process logger at the requested level.
func newLogger(level string) *slog.Logger {
	l := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
