// Package run provides the run command, which executes the whole
// fetch, clean, validate and submit pipeline for one batch.
package run

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/internal/cmd/table"
	"github.com/agentstation/docsync/pkg/dedup"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/records"
	"github.com/agentstation/docsync/pkg/validation"
)

// NewCommand creates the run command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Fetch, clean and submit one batch",
		Long: `Run executes the full pipeline for one batch: fetch it from the upstream
API, map every record onto the canonical fields, drop records without a
doc_id or with a repeated one, validate the result and submit it.

Nothing is submitted when any cleaned record is invalid. With --dry-run
the pipeline stops after validation.`,
		Example: `  docsync run
  docsync run --batch 2 --dry-run -o table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			batch, _ := cmd.Flags().GetString("batch")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			if batch == "" {
				batch = app.DefaultBatch()
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			logger := app.Logger()
			client.OnRecordSkipped(func(index int, _ records.CanonicalRecord, reason dedup.SkipReason) {
				logger.Debug().Int("index", index).Str("reason", string(reason)).Msg("Record skipped")
			})

			res, err := client.Run(cmd.Context(), batch, docsync.WithDryRun(dryRun))
			var invalid *validation.Error
			if err != nil && !errors.As(err, &invalid) {
				return err
			}

			printer := output.NewPrinter(cmd.OutOrStdout(), app.OutputFormat())
			if err := printer.Print(res, func() table.Data {
				if len(res.Invalid) > 0 {
					return table.InvalidRecordsToTableData(res.Invalid)
				}
				return summary(res)
			}); err != nil {
				return err
			}

			if invalid != nil {
				return invalid
			}
			return nil
		},
	}

	cmd.Flags().StringP("batch", "b", "", "batch to process (default from config)")
	cmd.Flags().Bool("dry-run", false, "stop after validation without submitting")

	return cmd
}

func summary(res *docsync.RunResult) table.Data {
	return table.KeyValueToTableData([][2]string{
		{"Batch", res.BatchID.String()},
		{"Fetched", strconv.Itoa(res.Fetched)},
		{"Cleaned", strconv.Itoa(len(res.Cleaned))},
		{"Missing ID", strconv.Itoa(res.MissingID)},
		{"Duplicates", strconv.Itoa(len(res.Duplicates))},
		{"Submitted", strconv.FormatBool(res.Submitted)},
		{"Duration", res.Duration().String()},
	})
}
