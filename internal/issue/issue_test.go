// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func allIds() []Id {
	return []Id{
		EntrypointNotFoundId,
		ScriptLoadFailedId,
		ScriptRuntimeFailedId,
		EntryFunctionMissingId,
		ConfigLoadFailedId,
		ParamStoreUnavailableId,
		ParameterNotFoundId,
		WatchFailedId,
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id       Id
		contains string
	}{
		{EntrypointNotFoundId, "No script to run"},
		{ScriptLoadFailedId, "could not be loaded"},
		{ScriptRuntimeFailedId, "raised an error"},
		{EntryFunctionMissingId, "no entry function"},
		{ConfigLoadFailedId, "Failed to load configuration"},
		{ParamStoreUnavailableId, "parameter store is unavailable"},
		{ParameterNotFoundId, "Unknown parameter"},
		{WatchFailedId, "Watching stopped"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			t.Parallel()
			issue := Get(tt.id)
			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}

	if Get(Id(9999)) != nil {
		t.Error("Get(unknown) should return nil")
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	issues := Values()
	ids := allIds()
	if len(issues) != len(ids) {
		t.Fatalf("Values() returned %d issues, want %d", len(issues), len(ids))
	}
	for i, issue := range issues {
		if issue.Id() != ids[i] {
			t.Errorf("Values()[%d].Id() = %d, want %d (ordered by id)", i, issue.Id(), ids[i])
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("issue %d has empty MarkdownMsg", issue.Id())
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	t.Parallel()

	issue := Get(ConfigLoadFailedId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("expected external links on the config guide")
	}
	links[0] = "modified"
	if issue.ExtLinks()[0] == "modified" {
		t.Error("ExtLinks() should return a clone")
	}
}

// The render hook is package state, so these tests do not run in parallel.

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()
	render = func(in string, _ string) (string, error) { return in, nil }

	withLinks, err := Get(ScriptLoadFailedId).Render("")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(withLinks, "## See also") || !strings.Contains(withLinks, "lua.org") {
		t.Errorf("Render() should list links:\n%s", withLinks)
	}

	noLinks, _ := Get(WatchFailedId).Render("")
	if strings.Contains(noLinks, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	for _, issue := range Values() {
		rendered, err := issue.Render("notty")
		if err != nil {
			t.Errorf("issue %d failed to render: %v", issue.Id(), err)
		}
		if strings.TrimSpace(rendered) == "" {
			t.Errorf("issue %d rendered to empty string", issue.Id())
		}
	}
}
