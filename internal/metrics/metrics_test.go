// SPDX-License-Identifier: MPL-2.0

package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/forgecad/forge/internal/engine"
	"github.com/forgecad/forge/internal/sandbox"
	"github.com/forgecad/forge/pkg/geometry"
)

func successResult() *engine.Result {
	return &engine.Result{
		Path: "/w/main.lua",
		Success: &engine.Success{
			Geometries: []geometry.Descriptor{
				{Kind: geometry.KindSolid},
				{Kind: geometry.KindSolid},
				{Kind: geometry.KindOutline},
			},
			Repairs: 2,
		},
	}
}

func failureResult(kind sandbox.Kind) *engine.Result {
	return &engine.Result{Path: "/w/main.lua", Failure: &engine.Failure{Kind: kind, Message: "boom"}}
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		res  *engine.Result
		want string
	}{
		{successResult(), OutcomeSuccess},
		{failureResult(sandbox.KindRuntime), "runtime"},
		{failureResult(sandbox.KindLoad), "load"},
		{failureResult(sandbox.KindConfiguration), "configuration"},
		{nil, "unknown"},
		{&engine.Result{}, "unknown"},
	}
	for _, tt := range tests {
		if got := Outcome(tt.res); got != tt.want {
			t.Errorf("Outcome(%+v) = %q, want %q", tt.res, got, tt.want)
		}
	}
}

func TestHooks_RecordRuns(t *testing.T) {
	t.Parallel()

	m := New()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnRunStart(ctx, &engine.RunEvent{Path: "/w/main.lua"})
	if got := testutil.ToFloat64(m.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	hooks.OnRunFinish(ctx, &engine.RunEvent{Path: "/w/main.lua", Result: successResult(), Duration: 20 * time.Millisecond})
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Errorf("in flight after finish = %v, want 0", got)
	}

	hooks.OnRunStart(ctx, &engine.RunEvent{})
	hooks.OnRunFinish(ctx, &engine.RunEvent{Result: failureResult(sandbox.KindRuntime), Duration: time.Millisecond})

	if got := testutil.ToFloat64(m.runs.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("success runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("runtime")); got != 1 {
		t.Errorf("runtime failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.geometries.WithLabelValues("solid")); got != 2 {
		t.Errorf("solid geometries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.geometries.WithLabelValues("outline")); got != 1 {
		t.Errorf("outline geometries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.repairs); got != 2 {
		t.Errorf("repairs = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 2 {
		t.Errorf("duration series = %d, want 2 (success and runtime)", n)
	}
}

func TestHooks_WithEngine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := dir + "/main.lua"
	if err := os.WriteFile(script, []byte("function main() return nil end"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := New()
	eng := engine.New(engine.WithLifecycleHooks(m.Hooks()))
	if res := eng.Run(context.Background(), script); !res.OK() {
		t.Fatalf("Run() failed: %+v", res.Failure)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("success runs = %v, want 1", got)
	}
}

func TestRouter(t *testing.T) {
	t.Parallel()

	m := New()
	m.Observe(&engine.RunEvent{Result: successResult(), Duration: time.Millisecond})

	srv := httptest.NewServer(m.Router())
	defer srv.Close()

	body := get(t, srv.URL+"/metrics", http.StatusOK)
	for _, want := range []string{
		`forge_runs_total{outcome="success"} 1`,
		`forge_geometries_total{kind="solid"} 2`,
		"forge_run_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %q", want)
		}
	}

	if body := get(t, srv.URL+"/healthz", http.StatusOK); strings.TrimSpace(body) != "ok" {
		t.Errorf("/healthz = %q", body)
	}
	get(t, srv.URL+"/nope", http.StatusNotFound)
}

func get(t *testing.T, url string, wantStatus int) string {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test server
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Errorf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}
