// Package fetch provides the fetch command, which downloads one raw
// batch from the upstream API.
package fetch

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/internal/cmd/table"
)

// NewCommand creates the fetch command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fetch",
		GroupID: "core",
		Short:   "Fetch a raw batch from the upstream API",
		Long: `Fetch downloads one raw document batch from the upstream API,
retrying with exponential backoff on failure, and prints it unchanged.`,
		Example: `  docsync fetch
  docsync fetch --batch 3 -o json > batch.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			batch, _ := cmd.Flags().GetString("batch")
			if batch == "" {
				batch = app.DefaultBatch()
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			raw, err := client.Fetch(cmd.Context(), batch)
			if err != nil {
				return err
			}

			app.Logger().Info().
				Str("batch_id", raw.BatchID.String()).
				Int("records", len(raw.Records)).
				Msg("Fetched batch")

			printer := output.NewPrinter(cmd.OutOrStdout(), app.OutputFormat())
			return printer.Print(raw, func() table.Data {
				return table.RawRecordsToTableData(raw.Records)
			})
		},
	}

	cmd.Flags().StringP("batch", "b", "", "batch to fetch (default from config)")

	return cmd
}
