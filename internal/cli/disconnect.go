package cli

import (
	"fmt"

	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/registry"
	"github.com/rileyhilliard/hublink/internal/ui"
	"github.com/spf13/cobra"
)

func newDisconnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "disconnect <community-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a saved connection",
		Long: `Remove a community's connection from the registry, freeing its slot.

The platform side is left untouched; run 'hublink connect' again to reconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTargetID(args[0])
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.editRecord(cmd, id, "disconnected", func(reg *registry.Registry) (bool, error) {
				return reg.Remove(cmd.Context(), id)
			})
		},
	}
}

// newEnableCmd builds "enable" or "disable". A disabled connection stays
// saved but does not count toward the connection limit.
func newEnableCmd(a *app, enabled bool) *cobra.Command {
	use, short, done := "disable", "Pause a saved connection", "disabled"
	if enabled {
		use, short, done = "enable", "Resume a paused connection", "enabled"
	}

	return &cobra.Command{
		Use:   use + " <community-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTargetID(args[0])
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.editRecord(cmd, id, done, func(reg *registry.Registry) (bool, error) {
				if enabled {
					if err := checkSlot(cmd, reg, id); err != nil {
						return false, err
					}
				}
				return reg.SetEnabled(cmd.Context(), id, enabled)
			})
		},
	}
}

// checkSlot fails with ErrLimit when enabling id would exceed the limit.
func checkSlot(cmd *cobra.Command, reg *registry.Registry, id int64) error {
	records, err := reg.List(cmd.Context())
	if err != nil {
		return err
	}
	if rec, ok := registry.Find(records, id); ok && rec.Enabled {
		return nil
	}
	if n := registry.CountEnabled(records); n >= reg.MaxRecords() {
		return errors.New(errors.ErrLimit,
			fmt.Sprintf("Connection limit reached (%d of %d)", n, reg.MaxRecords()),
			"Disable or disconnect another community first")
	}
	return nil
}

// editRecord opens the registry, applies edit and reports the result.
func (a *app) editRecord(cmd *cobra.Command, id int64, done string, edit func(*registry.Registry) (bool, error)) error {
	reg, err := a.openRegistry()
	if err != nil {
		return a.fail(cmd, err)
	}
	defer reg.Close()

	found, err := edit(reg)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrUnknown {
			err = errors.WrapWithCode(err, errors.ErrPersistence,
				"Could not update saved connections",
				"Check the registry settings in your config file")
		}
		return a.fail(cmd, err)
	}
	if !found {
		return a.fail(cmd, errors.New(errors.ErrConfig,
			fmt.Sprintf("Community %d is not connected", id),
			"Run 'hublink list' to see saved connections"))
	}

	out := cmd.OutOrStdout()
	if a.jsonOut {
		return WriteJSONSuccess(out, map[string]interface{}{"target_id": id, "result": done})
	}
	fmt.Fprintf(out, "%s Community %d %s\n", ui.SuccessStyle().Render(ui.SymbolComplete), id, done)
	return nil
}
