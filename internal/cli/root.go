// Package cli implements the hublink command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/hublink/internal/config"
	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/logger"
	"github.com/rileyhilliard/hublink/internal/registry"
	"github.com/rileyhilliard/hublink/internal/remote/httpapi"
	"github.com/rileyhilliard/hublink/internal/ui"
	"github.com/spf13/cobra"
)

// skipConfigAnnotation marks commands that run without loading a config.
const skipConfigAnnotation = "hublink/skip-config"

// app holds the global flags and the state loaded before a command runs.
type app struct {
	configPath string
	noColor    bool
	debug      bool
	jsonOut    bool

	cfg     *config.Config
	cfgPath string
	in      io.Reader
}

// exitError ends the process with code after the command already reported
// the failure itself.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "hublink",
		Short: "Connect communities to the bot hub",
		Long: `hublink connects communities you administer to the bot hub.

A connection asks the platform for a scoped credential, installs the app
when needed, turns on messages and the bot's callback events, and saves the
credential in the local connection registry.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.prepare(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: .hublink.yaml, then ~/.config/hublink/config.yaml)")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "print debug logs to stderr")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print machine-readable JSON")

	root.AddCommand(
		newConnectCmd(a),
		newListCmd(a),
		newDisconnectCmd(a),
		newEnableCmd(a, true),
		newEnableCmd(a, false),
		newTargetsCmd(a),
		newMockServerCmd(a),
		newInitCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
		newCompletionCmd(),
	)
	return root, a
}

// prepare applies the global flags and loads the config.
func (a *app) prepare(cmd *cobra.Command) error {
	if a.debug {
		logger.SetDebug(true)
	}
	a.in = cmd.InOrStdin()

	color := ui.ColorAuto
	if !skipsConfig(cmd) {
		cfg, path, err := config.LoadOrDefault(a.configPath)
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		a.cfg, a.cfgPath = cfg, path
		color = cfg.Output.Color
	}
	if a.noColor || a.jsonOut {
		color = ui.ColorNever
	}
	ui.ConfigureColors(color, cmd.OutOrStdout())

	logger.Default().Debug("config loaded from %q", a.cfgPath)
	return nil
}

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipConfigAnnotation]; ok {
			return true
		}
	}
	return false
}

// logger returns a stderr logger for one component.
func (a *app) logger(component string) logger.Logger {
	return logger.NewEnvLogger("[" + component + "]")
}

// openRegistry opens the configured store and wraps it in a Registry.
func (a *app) openRegistry() (*registry.Registry, error) {
	store, err := registry.Open(a.cfg.StoreOptions())
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Could not open the connection registry",
			"Check the 'registry' section of your config file")
	}
	reg := registry.New(store, a.cfg.Registry.Key, a.cfg.Registry.MaxRecords)
	reg.SetLogger(a.logger("registry"))
	return reg, nil
}

// client builds the platform API client.
func (a *app) client() (*httpapi.Client, error) {
	opts := a.cfg.ClientOptions()
	opts.Logger = a.logger("api")
	c, err := httpapi.New(opts)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid API settings",
			"Set api.base_url to an http(s) URL with 'hublink config set api.base_url <url>'")
	}
	return c, nil
}

// interactive reports whether prompts and animation may be shown.
func (a *app) interactive(out io.Writer) bool {
	return !a.jsonOut && ui.IsTerminal(out) && ui.IsTerminal(a.in)
}

// fail reports err in the active output mode and returns a silent exit error.
func (a *app) fail(cmd *cobra.Command, err error) error {
	if a.jsonOut {
		_ = WriteJSONFromError(cmd.OutOrStdout(), err)
	} else {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ErrorStyle().Render(strings.TrimRight(err.Error(), "\n"))+"\n")
	}
	return &exitError{code: 1}
}

// Execute runs the root command and exits on failure.
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes args and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root, a := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			err = errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown command %q", name),
				"Run 'hublink --help' to see the available commands")
		} else {
			err = errors.WrapWithCode(err, errors.ErrConfig, "Invalid arguments",
				"Run 'hublink --help' to see the available flags")
		}
	}
	if a.jsonOut {
		_ = WriteJSONFromError(stdout, err)
	} else {
		fmt.Fprint(stderr, strings.TrimRight(err.Error(), "\n")+"\n")
	}
	return 1
}

// isUnknownCommandError checks if the error is cobra's "unknown command" or
// "unknown flag" error.
func isUnknownCommandError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command ") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand extracts the command name from cobra's error message.
// Error format: `unknown command "foo" for "hublink"`
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
