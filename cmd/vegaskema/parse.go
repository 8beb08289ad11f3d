package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	vegaskema "github.com/reoring/vegaskema"
	"github.com/reoring/vegaskema/choropleth"
	"github.com/reoring/vegaskema/source/native"
)

// ── parse ─────────────────────────────────────────────────────────────────────

func parseCmd(a *app) *cobra.Command {
	var (
		format string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse a choropleth spec and print the resulting map",
		Long: `Parse reads a spec from a file (or stdin when the argument is "-" or
missing) and prints the map as JSON.

Exit status is 0 for a complete spec, 3 for a structurally incomplete one and
1 for malformed input or an unsupported color gradient.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return a.runParse(cmd, path, format, strict)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", `input format: json, yaml or toml (default: from the file extension, else json)`)
	cmd.Flags().BoolVar(&strict, "strict", false, "report incomplete specs and duplicate keys as errors")
	return cmd
}

func (a *app) runParse(cmd *cobra.Command, path, format string, strict bool) error {
	format, err := resolveFormat(path, format)
	if err != nil {
		return err
	}
	data, err := readInput(cmd.InOrStdin(), path, a.cfg.MaxBytes)
	if err != nil {
		return err
	}

	opt := a.cfg.ParseOpt()
	if strict {
		opt.RequireComplete = true
		opt.Strictness.OnDuplicateKey = vegaskema.Error
	}
	res, err := parseInput(cmd.Context(), data, format, opt)
	out := cmd.OutOrStdout()
	if err != nil {
		a.logger.Debug("parse failed", "path", path, "error", err)
		if iss, ok := vegaskema.AsIssues(err); ok {
			if werr := writeJSON(out, map[string]any{"issues": iss}); werr != nil {
				return werr
			}
			return &exitCodeError{code: exitError, err: err}
		}
		return err
	}
	if !res.Valid() {
		a.logger.Debug("spec incomplete", "path", path, "gate", res.FailedGate.String())
		if werr := writeJSON(out, res); werr != nil {
			return werr
		}
		return &exitCodeError{code: exitIncomplete}
	}
	return writeJSON(out, res.Map)
}

func parseInput(ctx context.Context, data []byte, format string, opt vegaskema.ParseOpt) (choropleth.Result, error) {
	var decode func(context.Context, []byte, ...vegaskema.ParseOpt) (any, error)
	switch format {
	case "yaml":
		decode = native.DecodeYAML
	case "toml":
		decode = native.DecodeTOML
	default:
		return choropleth.Parse(ctx, data, opt)
	}
	doc, err := decode(ctx, data, opt)
	if err != nil {
		return choropleth.Result{FailedGate: choropleth.GateSyntax}, err
	}
	return choropleth.ParseDocument(ctx, doc, opt)
}

func resolveFormat(path, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json", "yaml", "toml":
		return strings.ToLower(format), nil
	case "yml":
		return "yaml", nil
	case "":
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	}
	return "json", nil
}

// readInput reads at most max+1 bytes so oversized input is reported by the
// parser as truncated.
func readInput(stdin io.Reader, path string, max int64) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	if max > 0 {
		r = io.LimitReader(r, max+1)
	}
	return io.ReadAll(r)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
