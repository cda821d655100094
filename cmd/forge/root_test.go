// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forgecad/forge/internal/engine"
	"github.com/forgecad/forge/internal/entrypoint"
	"github.com/forgecad/forge/internal/issue"
	"github.com/forgecad/forge/internal/logging"
	"github.com/forgecad/forge/internal/testutil"
	"github.com/forgecad/forge/pkg/geometry"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v0.3.0"
		Commit = "abc1234"
		BuildDate = "2026-10-01T10:00:00Z"

		want := "v0.3.0 (commit: abc1234, built: 2026-10-01T10:00:00Z)"
		if got := getVersionString(); got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("fallback to dev when no build info", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		// Test binaries report Main.Version == "(devel)".
		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	plain := errors.New("plain failure")
	if got := formatErrorForDisplay(plain, true); got != "plain failure" {
		t.Errorf("plain error = %q", got)
	}

	ae := issue.NewErrorContext().
		WithOperation("open parameter store").
		WithResource("redis").
		WithSuggestion("Start Redis").
		Wrap(errors.New("connection refused")).
		BuildError()

	got := formatErrorForDisplay(ae, false)
	if !strings.Contains(got, "• Start Redis") {
		t.Errorf("suggestions missing: %q", got)
	}
	if strings.Contains(got, "Error chain:") {
		t.Errorf("non-verbose output has the chain: %q", got)
	}
	if !strings.Contains(formatErrorForDisplay(ae, true), "Error chain:") {
		t.Error("verbose output should include the chain")
	}
}

func TestChainHooks(t *testing.T) {
	t.Parallel()

	var calls []string
	record := func(name string) engine.LifecycleHooks {
		return engine.LifecycleHooks{
			OnRunStart:  func(context.Context, *engine.RunEvent) { calls = append(calls, name+":start") },
			OnRunFinish: func(context.Context, *engine.RunEvent) { calls = append(calls, name+":finish") },
		}
	}

	h := chainHooks(record("a"), engine.LifecycleHooks{}, record("b"))
	h.OnRunStart(context.Background(), &engine.RunEvent{})
	h.OnRunFinish(context.Background(), &engine.RunEvent{})

	want := "a:start b:start a:finish b:finish"
	if got := strings.Join(calls, " "); got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestLastResult(t *testing.T) {
	t.Parallel()

	latest := &lastResult{}

	rec := httptest.NewRecorder()
	latest.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("before first run: status %d", rec.Code)
	}

	latest.set(&engine.Result{Path: "/p/main.lua", Success: &engine.Success{}})
	rec = httptest.NewRecorder()
	latest.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"path": "/p/main.lua"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestRerunTarget(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteTree(t, map[string]string{
		"main.lua":  "function main() end",
		"other.lua": "function main() end",
	})
	s := &session{
		root:     dir,
		logger:   logging.Nop(),
		resolver: entrypoint.New(),
	}

	current, ok := s.resolver.Resolve(dir, "")
	if !ok {
		t.Fatal("expected main.lua to resolve")
	}

	// The manifest now points elsewhere.
	testutil.MustWriteFile(t, filepath.Join(dir, "forge.cue"), `main: "other.lua"`)
	next := rerunTarget(s, current, "")
	if next.Path != filepath.Join(dir, "other.lua") || next.Origin != entrypoint.OriginManifest {
		t.Errorf("after manifest edit: %+v", next)
	}

	// Nothing resolves any more: keep the last known script.
	for _, name := range []string{"forge.cue", "main.lua", "other.lua"} {
		testutil.MustRemove(t, filepath.Join(dir, name))
	}
	if kept := rerunTarget(s, next, ""); kept != next {
		t.Errorf("expected the previous entrypoint to be kept, got %+v", kept)
	}
}

func TestDescribeGeometry(t *testing.T) {
	t.Parallel()

	solid := &geometry.Descriptor{
		Name:      "body",
		Kind:      geometry.KindSolid,
		Positions: make([]float32, 9),
		Indices:   []uint32{0, 1, 2},
		Transform: &geometry.Matrix{},
	}
	got := describeGeometry(solid)
	for _, want := range []string{"solid", "body", "3 vertices", "1 triangles", "transformed"} {
		if !strings.Contains(got, want) {
			t.Errorf("describeGeometry(solid) = %q, missing %q", got, want)
		}
	}

	outline := &geometry.Descriptor{Kind: geometry.KindOutline, Positions: make([]float32, 12)}
	if got := describeGeometry(outline); !strings.Contains(got, "2 segments") {
		t.Errorf("describeGeometry(outline) = %q", got)
	}
}
