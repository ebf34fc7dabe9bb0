// Package submit provides the submit command, which validates cleaned
// items and sends them to the upstream API.
package submit

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/internal/cmd/input"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/internal/cmd/table"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/records"
	"github.com/agentstation/docsync/pkg/upstream"
	"github.com/agentstation/docsync/pkg/validation"
)

// NewCommand creates the submit command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "submit",
		GroupID: "core",
		Short:   "Validate and submit cleaned items",
		Long: `Submit reads cleaned items, either the output of "docsync clean -o json"
or a bare array of items, validates every item and submits the batch.
Nothing is sent when any item is invalid; the invalid items are printed
instead.`,
		Example: `  docsync fetch -o json | docsync clean -o json | docsync submit
  docsync submit --input cleaned.json --batch-id 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("input")
			batchFlag, _ := cmd.Flags().GetString("batch-id")

			data, err := input.Read(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			batchID, items, err := input.ParseCleaned(data)
			if err != nil {
				return err
			}
			if batchFlag != "" {
				batchID = records.ParseBatchID(batchFlag)
			}
			if batchID.IsZero() {
				return errors.NewValidationError("batch_id", batchID.String(), "batch id is required")
			}
			if len(items) == 0 {
				return errors.NewValidationError("cleaned_items", nil, "no cleaned items to submit")
			}

			printer := output.NewPrinter(cmd.OutOrStdout(), app.OutputFormat())

			if invalid := validation.New().Maps(items); len(invalid) > 0 {
				if err := printer.Print(map[string]any{"invalid_records": invalid}, func() table.Data {
					return table.InvalidRecordsToTableData(invalid)
				}); err != nil {
					return err
				}
				return &validation.Error{Invalid: invalid}
			}

			recs := make([]records.CanonicalRecord, len(items))
			for i, item := range items {
				recs[i] = records.CanonicalFromMap(item)
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			resp, err := client.Submit(cmd.Context(), batchID, recs)
			if err != nil {
				return err
			}
			if resp == nil {
				resp = upstream.SubmitResponse{}
			}

			return printer.Print(resp, func() table.Data {
				return table.MapToTableData(resp)
			})
		},
	}

	cmd.Flags().StringP("input", "i", input.Stdin, "cleaned items file, or - for stdin")
	cmd.Flags().String("batch-id", "", "batch id (overrides the id in the input)")

	return cmd
}
