package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/remote"
	"github.com/rileyhilliard/hublink/internal/remote/mockapi"
	"github.com/rileyhilliard/hublink/internal/ui"
	"github.com/spf13/cobra"
)

const defaultMockTargets = "218375:Coffee Lovers,218376:Tea Club,218377:Board Games"

// mockServerOptions holds the mock-server flags.
type mockServerOptions struct {
	addr          string
	targets       string
	unprovisioned []int64
	denied        []int64
	failMethods   []string
	latency       time.Duration
}

func newMockServerCmd(a *app) *cobra.Command {
	var opts mockServerOptions

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run a local stand-in for the platform API",
		Long: `Run a local HTTP server that answers the platform calls hublink makes.

Point api.base_url at it to try connections without a real account. Flags
script denials, missing installs, failing methods and latency.`,
		Example: `  hublink mock-server --addr 127.0.0.1:8765
  hublink mock-server --unprovisioned 218376 --latency 300ms`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := parseMockTargets(opts.targets)
			if err != nil {
				return a.fail(cmd, err)
			}

			srv := mockapi.New(mockapi.Options{
				Targets:       targets,
				Unprovisioned: opts.unprovisioned,
				Denied:        opts.denied,
				FailMethods:   opts.failMethods,
				Latency:       opts.latency,
				Logger:        a.logger("mock"),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err = srv.ListenAndServe(ctx, opts.addr, func(addr string) {
				fmt.Fprintf(out, "%s Mock API listening on http://%s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), addr)
				for _, t := range targets {
					fmt.Fprintf(out, "  %s %d  %s\n", ui.MutedStyle().Render(ui.SymbolPending), t.ID, t.DisplayName())
				}
				fmt.Fprintln(out, ui.MutedStyle().Render("Press Ctrl+C to stop"))
			})
			if err != nil {
				return a.fail(cmd, errors.WrapWithCode(err, errors.ErrConfig,
					"Mock API stopped",
					"Pick a free address with --addr"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:8765", "listen address")
	cmd.Flags().StringVar(&opts.targets, "targets", defaultMockTargets, "administered communities as id:name pairs, comma separated")
	cmd.Flags().Int64SliceVar(&opts.unprovisioned, "unprovisioned", nil, "communities without the app installed")
	cmd.Flags().Int64SliceVar(&opts.denied, "denied", nil, "communities that refuse credentials")
	cmd.Flags().StringSliceVar(&opts.failMethods, "fail", nil, "API methods that always fail, e.g. groups.setSettings")
	cmd.Flags().DurationVar(&opts.latency, "latency", 0, "delay added to every response")
	return cmd
}

// parseMockTargets parses "id:name,id:name". The name is optional.
func parseMockTargets(list string) ([]remote.Target, error) {
	var targets []remote.Target
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		idPart, name, _ := strings.Cut(item, ":")
		id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid mock target %q", item),
				"Use id:name pairs, e.g. --targets 1:Coffee,2:Tea")
		}
		targets = append(targets, remote.Target{ID: id, Name: strings.TrimSpace(name)})
	}
	return targets, nil
}
