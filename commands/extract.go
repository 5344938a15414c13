package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assessortools/covmap/extract"
	"github.com/assessortools/covmap/ingest"
)

func newExtractCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <document>",
		Short: "Extract questions from an assessment document",
		Long: `Extract runs ingestion and question extraction only, printing the
question inventory and its statistics as JSON. Useful for checking what
the pipeline sees before running a full analysis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}

			reader := ingest.NewReader(ingest.WithLogger(app.Logger()))
			doc, err := reader.ReadFile(args[0])
			if err != nil {
				return err
			}

			completer, err := newCompleter(app, cfg)
			if err != nil {
				return err
			}

			planner, err := extract.NewChunkPlanner(cfg.Extraction.ChunkConfig())
			if err != nil {
				return fmt.Errorf("chunk config: %w", err)
			}

			extractor := extract.NewExtractor(
				extract.WithCompleter(completer),
				extract.WithChunkPlanner(planner),
				extract.WithGenerationParams(cfg.Model.GenerationParams()),
				extract.WithLogger(app.Logger()),
			)
			questions := extractor.Extract(cmd.Context(), doc.Text)

			result := struct {
				Filename  string             `json:"filename"`
				Questions []extract.Question `json:"questions"`
				Stats     extract.Stats      `json:"statistics"`
			}{
				Filename:  doc.Filename,
				Questions: questions,
				Stats:     extract.ComputeStats(questions),
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	return cmd
}
