package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		formatName string
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Re-export the reports for a stored session",
		Long: `Export loads a previously analyzed session from the session store and
writes its audit report and remediation table again, without re-running
extraction or mapping. Requires a configured NATS session store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
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

			ctx := cmd.Context()
			store, err := connectNATSStore(ctx, cfg, app)
			if err != nil {
				return err
			}

			sess, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			written, err := writeSessionArtifacts(sess, format, outputDir)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "", "Export format (json, csv)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for exported reports")

	return cmd
}
