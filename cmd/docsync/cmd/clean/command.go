// Package clean provides the clean command, which normalizes and
// deduplicates a raw batch read from a file or stdin.
package clean

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/internal/cmd/input"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/internal/cmd/table"
	"github.com/agentstation/docsync/pkg/records"
)

// Result is the printed outcome of a clean. Its JSON shape is accepted
// by the submit command.
type Result struct {
	BatchID      records.BatchID       `json:"batchId" yaml:"batchId"`
	CleanedItems []records.CleanedItem `json:"cleanedItems" yaml:"cleanedItems"`
	MissingID    int                   `json:"missingId" yaml:"missingId"`
	Duplicates   []string              `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

// NewCommand creates the clean command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clean",
		GroupID: "core",
		Short:   "Normalize and deduplicate a raw batch",
		Long: `Clean reads a raw batch, either {"batch_id": ..., "records": [...]}
or a bare array of records, maps every record onto the canonical fields
and drops records without a doc_id or with a repeated one.`,
		Example: `  docsync fetch -o json | docsync clean
  docsync clean --input batch.json -o table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("input")
			data, err := input.Read(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			batch, err := input.ParseBatch(data)
			if err != nil {
				return err
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			cleaned := client.Clean(batch.Records)
			res := Result{
				BatchID:      batch.BatchID,
				CleanedItems: cleaned.Items,
				MissingID:    cleaned.MissingID,
				Duplicates:   cleaned.Duplicates,
			}
			if res.CleanedItems == nil {
				res.CleanedItems = []records.CleanedItem{}
			}

			app.Logger().Info().
				Int("records", len(batch.Records)).
				Int("cleaned", len(cleaned.Items)).
				Int("skipped", cleaned.Skipped()).
				Msg("Cleaned batch")

			printer := output.NewPrinter(cmd.OutOrStdout(), app.OutputFormat())
			return printer.Print(res, func() table.Data {
				return table.CleanedItemsToTableData(res.CleanedItems)
			})
		},
	}

	cmd.Flags().StringP("input", "i", input.Stdin, "raw batch file, or - for stdin")

	return cmd
}
