// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/forgecad/forge/internal/engine"
	"github.com/forgecad/forge/internal/issue"
	"github.com/forgecad/forge/internal/sandbox"
	"github.com/forgecad/forge/pkg/geometry"
	"github.com/forgecad/forge/pkg/params"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"

	guideStyle = "dark"
)

var failureGuides = map[sandbox.Kind]issue.Id{
	sandbox.KindLoad:          issue.ScriptLoadFailedId,
	sandbox.KindRuntime:       issue.ScriptRuntimeFailedId,
	sandbox.KindConfiguration: issue.EntryFunctionMissingId,
}

func validFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}
}

// encodeResult writes res in a machine-readable format.
func encodeResult(w io.Writer, res *engine.Result, format string) error {
	switch format {
	case formatJSON:
		return encodeJSON(w, res)
	case formatYAML:
		return encodeYAML(w, res)
	default:
		return validFormat(format)
	}
}

// renderResult prints a human summary of res. Failures go to stderr together
// with the matching guide.
func renderResult(stdout, stderr io.Writer, res *engine.Result, verbose bool) {
	if res.OK() {
		renderSuccess(stdout, res)
		return
	}
	renderFailure(stderr, res, verbose)
}

func renderSuccess(w io.Writer, res *engine.Result) {
	s := res.Success
	header := fmt.Sprintf("%d %s", len(s.Geometries), plural(len(s.Geometries), "geometry", "geometries"))
	fmt.Fprintf(w, "%s %s %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(filepath.Base(res.Path)), SubtitleStyle.Render(header))

	for i := range s.Geometries {
		fmt.Fprintf(w, "  • %s\n", describeGeometry(&s.Geometries[i]))
	}
	if s.Repairs > 0 {
		fmt.Fprintf(w, "  %s\n", WarningStyle.Render(fmt.Sprintf("%d %s repaired (see log)", s.Repairs, plural(s.Repairs, "buffer", "buffers"))))
	}
	if len(s.Definitions) > 0 {
		fmt.Fprintln(w)
		renderParameters(w, s.Definitions, s.Parameters)
	}
}

func describeGeometry(d *geometry.Descriptor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-7s", d.Kind)
	if d.Name != "" {
		sb.WriteString(" " + CmdStyle.Render(d.Name))
	}
	sb.WriteString(renderValueStyle.Render(fmt.Sprintf(" %d vertices", d.VertexCount())))
	switch d.Kind {
	case geometry.KindSolid:
		sb.WriteString(renderValueStyle.Render(fmt.Sprintf(", %d triangles", d.TriangleCount())))
	case geometry.KindOutline:
		sb.WriteString(renderValueStyle.Render(fmt.Sprintf(", %d segments", d.SegmentCount())))
	}
	if d.Transform != nil {
		sb.WriteString(renderValueStyle.Render(", transformed"))
	}
	return sb.String()
}

// renderParameters lists definitions in declaration order with their values.
func renderParameters(w io.Writer, defs []params.Definition, values params.Values) {
	fmt.Fprintln(w, renderLabelStyle.Render("Parameters:"))
	for _, def := range defs {
		if def.Kind == params.KindGroup {
			fmt.Fprintf(w, "  %s\n", TitleStyle.Render(caption(def)))
			continue
		}
		line := fmt.Sprintf("  %s = %v", CmdStyle.Render(def.Name), values[def.Name])
		if def.Caption != "" {
			line += SubtitleStyle.Render("  " + def.Caption)
		}
		fmt.Fprintln(w, line+renderValueStyle.Render(fmt.Sprintf("  (%s)", def.Type)))
	}
}

func renderFailure(w io.Writer, res *engine.Result, verbose bool) {
	f := res.Failure
	where := res.Path
	if f.Location != nil {
		where = fmt.Sprintf("%s:%d", where, f.Location.Line)
		if f.Location.Column > 0 {
			where = fmt.Sprintf("%s:%d", where, f.Location.Column)
		}
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("✗ "+string(f.Kind)+" error"), CmdStyle.Render(where))
	fmt.Fprintf(w, "  %s\n", f.Message)
	if verbose && f.Trace != "" {
		fmt.Fprintln(w, VerboseStyle.Render(f.Trace))
	}
	if id, ok := failureGuides[f.Kind]; ok {
		renderGuide(w, issue.Get(id))
	}
}

// renderGuide writes a markdown guide, falling back to the raw markdown when
// glamour cannot render it.
func renderGuide(w io.Writer, guide *issue.Issue) {
	if guide == nil {
		return
	}
	rendered, err := guide.Render(guideStyle)
	if err != nil {
		rendered = string(guide.MarkdownMsg()) + "\n"
	}
	fmt.Fprint(w, rendered)
}

// reportError prints the guide attached to err, and the cause chain when
// verbose, then hands err back for Cobra to print.
func (a *App) reportError(err error, verbose bool) error {
	if err == nil {
		return nil
	}
	if verbose {
		fmt.Fprintln(a.stderr, VerboseStyle.Render(formatErrorForDisplay(err, true)))
	}
	renderGuide(a.stderr, issue.GuideFor(err))
	return err
}

func caption(def params.Definition) string {
	if def.Caption != "" {
		return def.Caption
	}
	return def.Name
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
