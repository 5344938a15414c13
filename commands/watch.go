package commands

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/assessortools/covmap/standard"
)

// watchedExtensions lists document types picked up in watch mode.
var watchedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
}

func newWatchCmd(app *App) *cobra.Command {
	var (
		policyName string
		formatName string
		outputDir  string
		debounce   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <standard.json> <directory>",
		Short: "Watch a directory and analyze documents as they appear",
		Long: `Watch monitors a directory for new or changed assessment documents and
runs the full analysis pipeline on each one. Changes are debounced and
deduplicated by content hash, so editors that write in multiple steps
trigger a single analysis.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}

			policy, err := resolvePolicy(policyName, cfg.Mapping.Policy)
			if err != nil {
				return err
			}
			format, err := resolveFormat(formatName, cfg.Export.Format)
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.Export.OutputDir
			}

			set, err := standard.LoadSet(args[0])
			if err != nil {
				return err
			}

			dir := args[1]
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("stat watch directory: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("not a directory: %s", dir)
			}

			ctx := cmd.Context()
			store, err := newStore(ctx, cfg, app)
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			if err := addWatchesRecursive(watcher, dir); err != nil {
				return err
			}

			logger := app.Logger()
			logger.Info("Watching for assessment documents",
				"dir", dir,
				"standard", set.Code,
				"debounce", debounce)

			pending := make(map[string]struct{})
			hashes := make(map[string]string)
			ticker := time.NewTicker(debounce)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Has(fsnotify.Create) {
						if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
							if err := addWatchesRecursive(watcher, event.Name); err != nil {
								logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
							}
							continue
						}
					}
					if !watchedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
						continue
					}
					if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
						pending[event.Name] = struct{}{}
					}

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logger.Error("Watcher error", "error", err)

				case <-ticker.C:
					for path := range pending {
						delete(pending, path)

						hash, err := contentHash(path)
						if err != nil {
							logger.Warn("Skipping unreadable document", "path", path, "error", err)
							continue
						}
						if hashes[path] == hash {
							continue
						}
						hashes[path] = hash

						sess, err := runPipeline(ctx, app, cfg, set, path, policy)
						if err != nil {
							logger.Error("Analysis failed", "path", path, "error", err)
							continue
						}
						if err := store.Put(ctx, sess); err != nil {
							logger.Error("Failed to store session", "session", sess.ID, "error", err)
						}
						written, err := writeSessionArtifacts(sess, format, outputDir)
						if err != nil {
							logger.Error("Export failed", "session", sess.ID, "error", err)
							continue
						}
						logger.Info("Document analyzed",
							"path", path,
							"session", sess.ID,
							"element_coverage", sess.Report.Elements.Percentage,
							"wrote", written)
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", "", "Mapping failure policy (degrade, fail-fast)")
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "Export format (json, csv)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for exported reports")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Wait for changes to settle before analyzing")

	return cmd
}

// addWatchesRecursive watches a directory tree, skipping hidden
// directories.
func addWatchesRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && path != root {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// contentHash fingerprints a document so rewrites with identical content
// do not retrigger analysis.
func contentHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
