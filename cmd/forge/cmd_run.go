// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// errRunFailed is returned when the script ran but produced no geometry. The
// failure itself has already been printed.
var errRunFailed = errors.New("script failed")

func newRunCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var format string

	runCmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Run the model once and print its geometry",
		Long: `Run the model once and print its geometry.

Without a script argument the project's entrypoint is used. Parameter values
are the script's defaults merged with any overrides saved by 'forge set'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			return app.reportError(runOnce(cmd, app, flags, activeFile(args), format), flags.verbose)
		},
	}

	runCmd.Flags().StringVarP(&format, "format", "o", formatText, "output format: text, json or yaml")
	return runCmd
}

func runOnce(cmd *cobra.Command, app *App, flags *rootFlagValues, active, format string) error {
	ctx := cmd.Context()
	s, err := app.open(ctx, flags)
	if err != nil {
		return err
	}
	defer closeSession(s)

	ep, err := s.entrypoint(active)
	if err != nil {
		return err
	}

	res := s.engine.Run(ctx, ep.Path)
	if format == formatText {
		renderResult(app.stdout, app.stderr, res, s.verbose)
	} else if err := encodeResult(app.stdout, res, format); err != nil {
		return err
	}

	if !res.OK() {
		return &ExitError{Code: 1, Err: errRunFailed}
	}
	return nil
}

func activeFile(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func closeSession(s *session) {
	if err := s.Close(); err != nil {
		s.logger.Warn("failed to close parameter store", "err", err)
	}
}
