package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assessortools/covmap/export"
	"github.com/assessortools/covmap/mapping"
	"github.com/assessortools/covmap/standard"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var (
		policyName string
		formatName string
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "analyze <standard.json> <document>...",
		Short: "Run the full coverage pipeline over assessment documents",
		Long: `Analyze extracts questions from each document, maps them onto the
standard, and writes the audit report and remediation task table.

Document arguments may be glob patterns, including ** for recursive
matching.`,
		Args: cobra.MinimumNArgs(2),
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

			docs, err := expandDocuments(args[1:])
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no documents match %v", args[1:])
			}

			ctx := cmd.Context()
			store, err := newStore(ctx, cfg, app)
			if err != nil {
				return err
			}

			for _, doc := range docs {
				sess, err := runPipeline(ctx, app, cfg, set, doc, policy)
				if err != nil {
					return fmt.Errorf("analyze %s: %w", doc, err)
				}

				if err := store.Put(ctx, sess); err != nil {
					return err
				}

				written, err := writeSessionArtifacts(sess, format, outputDir)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: session %s, %d questions, element coverage %.1f%%\n",
					doc, sess.ID, len(sess.Questions), sess.Report.Elements.Percentage)
				for _, path := range written {
					fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s\n", path)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", "", "Mapping failure policy (degrade, fail-fast)")
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "Export format (json, csv)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for exported reports")

	return cmd
}

// resolvePolicy applies flag-over-config precedence for the mapping
// policy.
func resolvePolicy(flagValue, configValue string) (mapping.Policy, error) {
	if flagValue != "" {
		return mapping.ParsePolicy(flagValue)
	}
	return mapping.ParsePolicy(configValue)
}

// resolveFormat applies flag-over-config precedence for the export
// format.
func resolveFormat(flagValue, configValue string) (export.Format, error) {
	if flagValue != "" {
		return export.ParseFormat(flagValue)
	}
	return export.ParseFormat(configValue)
}
