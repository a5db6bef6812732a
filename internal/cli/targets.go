package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hublink/internal/ui"
)

// targetJSON is the machine form of an administered community.
type targetJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

func newTargetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the communities you administer",
		Long: `List the communities you administer on the platform and mark the ones
already connected. Use the ids with 'hublink connect <id>'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.targets(cmd)
		},
	}
}

func (a *app) targets(cmd *cobra.Command) error {
	client, err := a.client()
	if err != nil {
		return a.fail(cmd, err)
	}
	reg, err := a.openRegistry()
	if err != nil {
		return a.fail(cmd, err)
	}
	defer reg.Close()

	infos, err := a.fetchTargets(cmd, client, reg)
	if err != nil {
		return a.fail(cmd, err)
	}

	out := cmd.OutOrStdout()
	if a.jsonOut {
		items := make([]targetJSON, 0, len(infos))
		for _, info := range infos {
			items = append(items, targetJSON{ID: info.Target.ID, Name: info.Target.Name, Connected: info.Connected})
		}
		return WriteJSONSuccess(out, items)
	}

	fmt.Fprint(out, ui.RenderTargetsTable(infos))
	return nil
}
