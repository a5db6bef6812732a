package cli

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/hublink/internal/config"
	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/registry"
	"github.com/rileyhilliard/hublink/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func registryBackends() []string {
	return registry.Backends
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				if a.jsonOut {
					return WriteJSONSuccess(out, map[string]interface{}{"path": a.cfgPath, "config": a.cfg})
				}
				data, err := yaml.Marshal(a.cfg)
				if err != nil {
					return a.fail(cmd, errors.WrapWithCode(err, errors.ErrConfig, "Could not encode the config", ""))
				}
				source := a.cfgPath
				if source == "" {
					source = "defaults and environment"
				}
				fmt.Fprintln(out, ui.MutedStyle().Render("# "+source))
				fmt.Fprint(out, string(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the path of the config file in use",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if a.jsonOut {
					return WriteJSONSuccess(cmd.OutOrStdout(), map[string]string{"path": a.cfgPath})
				}
				if a.cfgPath == "" {
					fmt.Fprintln(cmd.OutOrStdout(), ui.MutedStyle().Render("No config file found, using defaults"))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.cfgPath)
				return nil
			},
		},
		&cobra.Command{
			Use:         "keys",
			Short:       "List the settable keys",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{skipConfigAnnotation: "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				if a.jsonOut {
					return WriteJSONSuccess(cmd.OutOrStdout(), config.Keys())
				}
				for _, k := range config.Keys() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a value in the config file",
			Long: `Set a value in the config file, keeping its comments and layout.
Without a config file, the value is written to a new .hublink.yaml in the
current directory.`,
			Example:     `  hublink config set registry.backend sqlite`,
			Args:        cobra.ExactArgs(2),
			Annotations: map[string]string{skipConfigAnnotation: "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.Find(a.configPath)
				if err != nil {
					return a.fail(cmd, err)
				}
				if path == "" {
					path = config.DefaultPath()
					if err := os.WriteFile(path, nil, 0o644); err != nil {
						return a.fail(cmd, errors.WrapWithCode(err, errors.ErrConfig,
							"Could not create the config file", "Check that the directory is writable"))
					}
				}
				previous, err := os.ReadFile(path)
				if err != nil {
					return a.fail(cmd, errors.WrapWithCode(err, errors.ErrConfig,
						"Could not read the config file", "Check file permissions"))
				}
				if err := config.SetValue(path, args[0], args[1]); err != nil {
					return a.fail(cmd, errors.WrapWithCode(err, errors.ErrConfig,
						fmt.Sprintf("Could not set %s", args[0]),
						"Run 'hublink config keys' to list valid keys"))
				}
				cfg, err := config.Load(path)
				if err == nil {
					err = config.Validate(cfg)
				}
				if err != nil {
					_ = os.WriteFile(path, previous, 0o644)
					return a.fail(cmd, err)
				}
				if a.jsonOut {
					return WriteJSONSuccess(cmd.OutOrStdout(), map[string]string{"path": path, "key": args[0], "value": args[1]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), args[0], args[1])
				return nil
			},
		},
	)
	return cmd
}
