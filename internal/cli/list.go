package cli

import (
	"fmt"

	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/registry"
	"github.com/rileyhilliard/hublink/internal/ui"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved connections",
		Long: `List the connections saved in the registry, most recently changed first.

Credentials are never printed; each one is identified by a short fingerprint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.list(cmd)
		},
	}
}

func (a *app) list(cmd *cobra.Command) error {
	reg, err := a.openRegistry()
	if err != nil {
		return a.fail(cmd, err)
	}
	defer reg.Close()

	records, err := reg.List(cmd.Context())
	if err != nil {
		return a.fail(cmd, errors.WrapWithCode(err, errors.ErrPersistence,
			"Could not read saved connections",
			"Check the registry settings in your config file"))
	}

	out := cmd.OutOrStdout()
	if a.jsonOut {
		items := make([]connectionJSON, 0, len(records))
		for _, rec := range records {
			items = append(items, recordJSON(rec, ""))
		}
		return WriteJSONSuccess(out, items)
	}

	fmt.Fprint(out, ui.RenderConnectionsTable(connectionRows(records)))
	if len(records) > 0 {
		enabled := registry.CountEnabled(records)
		fmt.Fprintln(out, ui.MutedStyle().Render(
			fmt.Sprintf("%d of %d connection slots in use", enabled, reg.MaxRecords())))
	}
	return nil
}

func connectionRows(records []registry.Record) []ui.ConnectionRow {
	rows := make([]ui.ConnectionRow, 0, len(records))
	for _, rec := range records {
		row := ui.ConnectionRow{
			TargetID:    rec.TargetID,
			Fingerprint: rec.Fingerprint(),
			Enabled:     rec.Enabled,
			Connected:   rec.CreatedAt,
		}
		if rec.UpdatedAt != nil {
			row.Updated = *rec.UpdatedAt
		}
		rows = append(rows, row)
	}
	return rows
}
