package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rileyhilliard/hublink/internal/connect"
	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/lock"
	"github.com/rileyhilliard/hublink/internal/logger"
	"github.com/rileyhilliard/hublink/internal/registry"
	"github.com/rileyhilliard/hublink/internal/remote"
	"github.com/rileyhilliard/hublink/internal/remote/httpapi"
	"github.com/rileyhilliard/hublink/internal/ui"
	"github.com/rileyhilliard/hublink/internal/workflow"
	"github.com/spf13/cobra"
)

func newConnectCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "connect [community-id]",
		Short: "Connect a community to the bot hub",
		Long: `Connect a community you administer.

Without an id, hublink lists your communities and lets you pick one.
The run requests a scoped credential (installing the app first when the
community does not have it yet), enables messages and callback events,
and saves the credential in the connection registry.`,
		Example: `  hublink connect            # pick from your communities
  hublink connect 218375     # connect a community by id
  hublink connect 218375 -y  # skip the consent prompt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.connect(cmd, args, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the consent prompt")
	return cmd
}

func (a *app) connect(cmd *cobra.Command, args []string, yes bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	client, err := a.client()
	if err != nil {
		return a.fail(cmd, err)
	}
	reg, err := a.openRegistry()
	if err != nil {
		return a.fail(cmd, err)
	}
	defer reg.Close()

	target, err := a.resolveTarget(cmd, client, reg, args)
	if err != nil {
		return a.fail(cmd, err)
	}
	if target == nil {
		fmt.Fprintln(out, ui.MutedStyle().Render("No community selected"))
		return nil
	}

	var auth remote.AuthProvider = client
	if a.cfg.Consent.Prompt && !yes && a.interactive(out) {
		auth = remote.WithConsent(client, ui.ConsentPrompt(target.DisplayName(), a.in, out))
	}

	log := a.logger("connect")
	wfOpts := a.cfg.WorkflowOptions()
	wfOpts.Guard = lock.NewGuard()
	wfOpts.Logger = a.logger("workflow")
	wfOpts.Observer = loggingObserver(log)
	wf := workflow.New(auth, client, reg, wfOpts)

	opts := connect.Options{
		Animation: a.cfg.AnimationOptions(),
		Logger:    log,
	}
	if !a.jsonOut {
		view := ui.NewProgressView(out, ui.IsTerminal(out))
		view.SetBarWidth(ui.BarWidthFor(out))
		opts.View = view
		opts.Notifier = ui.NewNotifier(out)
	}

	// Once started, a run finishes even if the command's context is
	// cancelled; each call inside it carries its own timeout.
	outcome := connect.New(wf, reg, opts).Connect(context.WithoutCancel(ctx), *target)

	if a.jsonOut {
		if err := writeOutcomeJSON(out, outcome); err != nil {
			return err
		}
	}
	return exitFor(outcome)
}

// exitFor maps an outcome to the process exit status. Declined consent and
// a rejected concurrent call are not failures.
func exitFor(o connect.Outcome) error {
	switch o.Code() {
	case "", errors.ErrPermissionDenied, errors.ErrAlreadyRunning:
		return nil
	default:
		return &exitError{code: 1}
	}
}

// resolveTarget turns the argument into a target, or asks the user to pick
// one. It returns nil, nil when the picker is cancelled.
func (a *app) resolveTarget(cmd *cobra.Command, client *httpapi.Client, reg *registry.Registry, args []string) (*remote.Target, error) {
	ctx := cmd.Context()

	if len(args) == 1 {
		id, err := parseTargetID(args[0])
		if err != nil {
			return nil, err
		}
		target := remote.Target{ID: id}
		if targets, err := client.ListTargets(ctx); err == nil {
			for _, t := range targets {
				if t.ID == id {
					target = t
					break
				}
			}
		} else {
			a.logger("connect").Debug("could not look up the name of %d: %v", id, err)
		}
		return &target, nil
	}

	if !a.interactive(cmd.OutOrStdout()) {
		return nil, errors.New(errors.ErrConfig, "Community id required",
			"Pass the id of the community to connect: hublink connect <id>")
	}

	infos, err := a.fetchTargets(cmd, client, reg)
	if err != nil {
		return nil, err
	}
	picked, err := ui.PickTargetWithIO(infos, cmd.OutOrStdout(), a.in)
	if err != nil || picked == nil {
		return nil, err
	}
	return &picked.Target, nil
}

// fetchTargets lists administered communities, marking the connected ones.
func (a *app) fetchTargets(cmd *cobra.Command, client *httpapi.Client, reg *registry.Registry) ([]ui.TargetInfo, error) {
	out := cmd.OutOrStdout()
	var spinner *ui.Spinner
	if !a.jsonOut {
		spinner = ui.NewSpinner(out, "Fetching your communities", ui.IsTerminal(out))
		spinner.Start()
	}

	targets, err := client.ListTargets(cmd.Context())
	if err != nil {
		if spinner != nil {
			spinner.Fail()
		}
		return nil, errors.WrapWithCode(err, errors.ErrRemote,
			"Could not list your communities",
			"Check api.base_url and your network connection")
	}
	if spinner != nil {
		spinner.Success()
	}

	records, err := reg.List(cmd.Context())
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrPersistence,
			"Could not read saved connections",
			"Check the registry settings in your config file")
	}

	infos := make([]ui.TargetInfo, 0, len(targets))
	for _, t := range targets {
		rec, ok := registry.Find(records, t.ID)
		infos = append(infos, ui.TargetInfo{Target: t, Connected: ok && rec.Enabled})
	}
	return infos, nil
}

func parseTargetID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid community id %q", arg),
			"Community ids are positive numbers, see 'hublink targets'")
	}
	return id, nil
}

// loggingObserver writes workflow transitions to the debug log.
func loggingObserver(log logger.Logger) workflow.Observer {
	return workflow.ObserverFunc(func(e workflow.Event) {
		switch e.Type {
		case workflow.EventTransition:
			log.Debug("target %d: %s -> %s", e.TargetID, e.From, e.To)
		case workflow.EventWarning:
			log.Debug("target %d: %s step skipped: %v", e.TargetID, e.Step, e.Err)
		}
	})
}
