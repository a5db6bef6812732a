package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/hublink/internal/config"
	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/ui"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Where to write; defaults to ./.hublink.yaml
	BaseURL        string // Pre-specified API base URL
	AppID          int64  // Pre-specified application id
	Backend        string // Registry backend
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use flags and defaults
}

func newInitCmd(a *app) *cobra.Command {
	var opts InitOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a hublink config file",
		Long: `Create a .hublink.yaml config file in the current directory.

Run interactively it asks for the API endpoint and application id; with
--non-interactive (or when stdin is not a terminal) it uses the flags and
defaults instead.`,
		Example: `  hublink init
  hublink init --base-url http://127.0.0.1:8765 --app-id 54433980 --non-interactive`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Path == "" {
				opts.Path = a.configPath
			}
			if !opts.NonInteractive && !a.interactive(cmd.OutOrStdout()) {
				opts.NonInteractive = true
			}
			if err := Init(opts, a.in, cmd.OutOrStdout()); err != nil {
				return a.fail(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "platform API base URL")
	cmd.Flags().Int64Var(&opts.AppID, "app-id", 0, "platform application id")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "registry backend: "+strings.Join(registryBackends(), ", "))
	cmd.Flags().BoolVarP(&opts.Overwrite, "force", "f", false, "overwrite an existing config file")
	cmd.Flags().BoolVar(&opts.NonInteractive, "non-interactive", false, "do not prompt")
	return cmd
}

// Init writes a new config file.
func Init(opts InitOptions, in io.Reader, out io.Writer) error {
	path := opts.Path
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		).WithInput(in).WithOutput(out)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.BaseURL != "" {
		cfg.API.BaseURL = opts.BaseURL
	}
	if opts.AppID != 0 {
		cfg.API.AppID = opts.AppID
	}
	if opts.Backend != "" {
		cfg.Registry.Backend = strings.ToLower(opts.Backend)
	}

	if !opts.NonInteractive {
		if err := promptAPI(cfg, in, out); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Write(path, cfg, true); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Could not write the config file",
			"Check that the directory is writable")
	}

	fmt.Fprintf(out, "%s Wrote %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)
	fmt.Fprintln(out, ui.MutedStyle().Render("Next: run 'hublink targets' to see your communities"))
	return nil
}

// promptAPI asks for the API endpoint and application id.
func promptAPI(cfg *config.Config, in io.Reader, out io.Writer) error {
	baseURL := cfg.API.BaseURL
	appID := ""
	if cfg.API.AppID != 0 {
		appID = strconv.FormatInt(cfg.API.AppID, 10)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Where the platform API (or 'hublink mock-server') listens").
				Placeholder(baseURL).
				Value(&baseURL).
				Validate(func(s string) error {
					u, err := url.Parse(strings.TrimSpace(s))
					if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
						return fmt.Errorf("enter an http(s) URL")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Application id").
				Description("The id of the bot's platform application (optional)").
				Placeholder("54433980").
				Value(&appID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
						return fmt.Errorf("application id must be a number")
					}
					return nil
				}),
		),
	).WithInput(in).WithOutput(out)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Run with --non-interactive and pass --base-url and --app-id")
	}

	cfg.API.BaseURL = strings.TrimSpace(baseURL)
	if s := strings.TrimSpace(appID); s != "" {
		id, _ := strconv.ParseInt(s, 10, 64)
		cfg.API.AppID = id
	}
	return nil
}
