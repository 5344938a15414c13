package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/assessortools/covmap/mapping"
	"github.com/assessortools/covmap/standard"
)

func newMapCmd(app *App) *cobra.Command {
	var policyName string

	cmd := &cobra.Command{
		Use:   "map <standard.json> <document>",
		Short: "Extract and map one document, printing the raw mappings",
		Long: `Map runs the pipeline through the mapping stage and prints the
per-question mappings as JSON, without coverage analysis or export.`,
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

			set, err := standard.LoadSet(args[0])
			if err != nil {
				return err
			}

			sess, err := runPipeline(cmd.Context(), app, cfg, set, args[1], policy)
			if err != nil {
				return err
			}

			result := struct {
				StandardCode string            `json:"standard_code"`
				Mappings     []mapping.Mapping `json:"mappings"`
			}{
				StandardCode: sess.StandardCode,
				Mappings:     sess.Mappings,
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", "", "Mapping failure policy (degrade, fail-fast)")

	return cmd
}
