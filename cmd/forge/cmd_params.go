// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/forgecad/forge/internal/issue"
	"github.com/forgecad/forge/pkg/params"
)

type paramsReport struct {
	Path        string              `json:"path" yaml:"path"`
	Definitions []params.Definition `json:"definitions" yaml:"definitions"`
	Values      params.Values       `json:"values" yaml:"values"`
}

func newParamsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var format string

	paramsCmd := &cobra.Command{
		Use:   "params [script]",
		Short: "List the parameters a script declares and their current values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			return app.reportError(listParams(cmd.Context(), app, flags, activeFile(args), format), flags.verbose)
		},
	}

	paramsCmd.Flags().StringVarP(&format, "format", "o", formatText, "output format: text, json or yaml")
	return paramsCmd
}

func newSetCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value> [script]",
		Short: "Save an override for one parameter",
		Long: `Save an override for one parameter.

The value is stored as typed and converted to the parameter's type on the next
run, so 'forge set teeth 24' and 'forge set hollow true' both work.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.reportError(setParam(cmd.Context(), app, flags, args[0], args[1], activeFile(args[2:])), flags.verbose)
		},
	}
}

func newResetCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [script]",
		Short: "Drop every saved override for a script",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.reportError(resetParams(cmd.Context(), app, flags, activeFile(args)), flags.verbose)
		},
	}
}

func listParams(ctx context.Context, app *App, flags *rootFlagValues, active, format string) error {
	s, err := app.open(ctx, flags)
	if err != nil {
		return err
	}
	defer closeSession(s)

	ep, err := s.entrypoint(active)
	if err != nil {
		return err
	}

	defs, values := s.engine.Inspect(ctx, ep.Path)
	report := paramsReport{Path: ep.Path, Definitions: defs, Values: values}
	if report.Definitions == nil {
		report.Definitions = []params.Definition{}
	}

	switch format {
	case formatJSON:
		return encodeJSON(app.stdout, report)
	case formatYAML:
		return encodeYAML(app.stdout, report)
	}

	if len(defs) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render(ep.Path+" declares no parameters"))
		return nil
	}
	fmt.Fprintln(app.stdout, CmdStyle.Render(ep.Path))
	renderParameters(app.stdout, defs, values)
	return nil
}

func setParam(ctx context.Context, app *App, flags *rootFlagValues, name, raw, active string) error {
	s, err := app.open(ctx, flags)
	if err != nil {
		return err
	}
	defer closeSession(s)

	ep, err := s.entrypoint(active)
	if err != nil {
		return err
	}

	defs, _ := s.engine.Inspect(ctx, ep.Path)
	idx := slices.IndexFunc(defs, func(d params.Definition) bool {
		return d.Name == name && d.Kind != params.KindGroup
	})
	if idx < 0 {
		return issue.NewErrorContext().
			WithOperation("set parameter "+name).
			WithResource(ep.Path).
			WithSuggestion("Run 'forge params' to list the declared parameters").
			WithGuide(issue.ParameterNotFoundId).
			Wrap(fmt.Errorf("%q is not declared by the script", name)).
			BuildError()
	}

	if err := s.engine.SetParameter(ctx, ep.Path, name, raw); err != nil {
		return storeError("save parameter "+name, ep.Path, err)
	}

	_, values := s.engine.Inspect(ctx, ep.Path)
	fmt.Fprintf(app.stdout, "%s %s = %v\n", SuccessStyle.Render("✓"), CmdStyle.Render(name), values[name])
	return nil
}

func resetParams(ctx context.Context, app *App, flags *rootFlagValues, active string) error {
	s, err := app.open(ctx, flags)
	if err != nil {
		return err
	}
	defer closeSession(s)

	ep, err := s.entrypoint(active)
	if err != nil {
		return err
	}

	if err := s.engine.ResetParameters(ctx, ep.Path); err != nil {
		return storeError("reset parameters", ep.Path, err)
	}
	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓"), SubtitleStyle.Render("parameters reset to defaults for "+ep.Path))
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
