// Package aliases provides the aliases command, which prints the field
// alias table in effect.
package aliases

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/internal/cmd/table"
	"github.com/agentstation/docsync/pkg/aliases"
)

// NewCommand creates the aliases command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "aliases",
		GroupID: "management",
		Short:   "Show the field alias table",
		Long: `Aliases prints, for every canonical field, the source keys tried in
order when resolving a raw record. Dotted keys descend into nested
objects.

With --file the given YAML alias file is loaded and checked instead of
the configured table.`,
		Example: `  docsync aliases
  docsync aliases --file aliases.yaml -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")

			var t *aliases.Table
			if file != "" {
				loaded, err := aliases.LoadFile(file)
				if err != nil {
					return err
				}
				t = loaded
			} else {
				client, err := app.Client()
				if err != nil {
					return err
				}
				t = client.AliasTable()
			}

			printer := output.NewPrinter(cmd.OutOrStdout(), app.OutputFormat())
			return printer.Print(t, func() table.Data {
				return table.AliasesToTableData(t)
			})
		},
	}

	cmd.Flags().StringP("file", "f", "", "alias YAML file to load and check")

	return cmd
}
