// Command vegaskema validates choropleth Vega specs.
//
// Subcommands:
//
//	parse   parse a spec file (or stdin) and print the resulting map
//	styles  list the supported color gradient names
//	schema  print the JSON Schema of an accepted spec
//	serve   HTTP endpoint POST /v1/choropleth with /metrics and /healthz
//
// Configuration is read from VEGASKEMA_* environment variables, optionally
// overlaid on a dotenv file given with --env-file.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	vegaskema "github.com/reoring/vegaskema"
	"github.com/reoring/vegaskema/choropleth"
	"github.com/reoring/vegaskema/i18n"
)

// Exit codes of the parse command.
const (
	exitError      = 1
	exitIncomplete = 3
)

// exitCodeError carries a process exit code through cobra. The command has
// already reported the problem on stdout.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitCodeError) Unwrap() error { return e.err }

// app is shared by the subcommands. environ overrides the process
// environment when non-nil.
type app struct {
	environ map[string]string
	envFile string
	cfg     *Config
	logger  *slog.Logger
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		var ec *exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		slog.Error("command failed", "error", err)
		os.Exit(exitError)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "vegaskema",
		Short: "Validate choropleth Vega specs",
		// Silence default error printing; we print it ourselves with slog.
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file with VEGASKEMA_* defaults")
	root.AddCommand(
		parseCmd(a),
		stylesCmd(),
		schemaCmd(),
		serveCmd(a),
	)
	return root
}

// setup loads configuration and applies the process-wide settings.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	var (
		cfg *Config
		err error
	)
	switch {
	case a.environ != nil:
		cfg, err = LoadFrom(a.environ)
	case a.envFile != "":
		cfg, err = LoadFile(a.envFile)
	default:
		cfg, err = Load()
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cfg)
	slog.SetDefault(a.logger)

	d, _ := vegaskema.DriverByName(cfg.JSONDriver)
	vegaskema.SetJSONDriver(d)
	i18n.SetLanguage(cfg.Lang)
	return nil
}

// ── styles ────────────────────────────────────────────────────────────────────

func stylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List the supported color gradient names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range choropleth.ColorStyles.Names() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// ── schema ────────────────────────────────────────────────────────────────────

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of an accepted spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), choropleth.JSONSchema())
		},
	}
}
