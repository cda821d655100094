// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/spf13/cobra"

	"github.com/forgecad/forge/internal/engine"
	"github.com/forgecad/forge/internal/entrypoint"
	"github.com/forgecad/forge/internal/issue"
	"github.com/forgecad/forge/internal/metrics"
	"github.com/forgecad/forge/internal/watch"
)

// lastResult keeps the most recent run for the /result endpoint.
type lastResult struct {
	mu  sync.RWMutex
	res *engine.Result
}

func (l *lastResult) set(res *engine.Result) {
	l.mu.Lock()
	l.res = res
	l.mu.Unlock()
}

func (l *lastResult) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	l.mu.RLock()
	res := l.res
	l.mu.RUnlock()

	if res == nil {
		http.Error(w, "no run has finished yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := encodeJSON(w, res); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var metricsAddr string

	watchCmd := &cobra.Command{
		Use:   "watch [script]",
		Short: "Run the model, then run it again on every save",
		Long: `Run the model, then run it again whenever a script, manifest or
library module changes. Saves that arrive while a run is in progress are
batched into the next run.

With --metrics-addr the run counters are served at /metrics and the latest
result at /result.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.reportError(runWatch(cmd.Context(), app, flags, activeFile(args), metricsAddr), flags.verbose)
		},
	}

	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /result on this address, e.g. :2112")
	return watchCmd
}

func runWatch(ctx context.Context, app *App, flags *rootFlagValues, active, metricsAddr string) error {
	m := metrics.New()
	s, err := app.open(ctx, flags, m.Hooks())
	if err != nil {
		return err
	}
	defer closeSession(s)

	ep, err := s.entrypoint(active)
	if err != nil {
		return err
	}

	debounce, err := s.cfg.Watch.DebounceDuration()
	if err != nil {
		return err
	}

	latest := &lastResult{}
	if metricsAddr != "" {
		router := m.Router()
		router.Method(http.MethodGet, "/result", latest)
		srv := metrics.NewServer(metricsAddr, router, s.logger)
		if err := srv.Start(ctx); err != nil {
			return watchError(metricsAddr, err)
		}
		defer func() {
			if err := srv.Stop(ctx); err != nil {
				s.logger.Warn("metrics server shutdown", "err", err)
			}
		}()
	}

	var extra []string
	if s.cfg.LibraryPath != "" {
		extra = append(extra, s.cfg.LibraryPath)
	}

	w, err := watch.New(watch.Config{
		Root:        s.root,
		Extra:       extra,
		Ignore:      s.cfg.Watch.Ignore,
		Debounce:    debounce,
		ClearScreen: s.cfg.Watch.ClearScreen,
		RunOnStart:  true,
		Stdout:      app.stdout,
		Logger:      s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			if len(changed) > 0 {
				fmt.Fprintf(app.stdout, "%s %d %s changed\n",
					VerboseHighlightStyle.Render("→"), len(changed), plural(len(changed), "file", "files"))
			}
			ep = rerunTarget(s, ep, active)
			res := s.engine.Run(ctx, ep.Path)
			latest.set(res)
			renderResult(app.stdout, app.stderr, res, s.verbose)
			fmt.Fprintf(app.stdout, "\n%s Watching %s for changes (Ctrl+C to stop)...\n\n",
				VerboseHighlightStyle.Render("→"), s.root)
			return nil
		},
	})
	if err != nil {
		return watchError(s.root, err)
	}

	if err := w.Run(ctx); err != nil {
		return watchError(s.root, err)
	}
	return nil
}

// rerunTarget resolves again so that an edited manifest main field or a newly
// created default script takes effect. The previous entrypoint is kept when
// nothing resolves.
func rerunTarget(s *session, current *entrypoint.Entrypoint, active string) *entrypoint.Entrypoint {
	if next, ok := s.resolver.Resolve(s.root, active); ok {
		if next.Path != current.Path {
			s.logger.Info("entrypoint changed", "path", next.Path, "origin", next.Origin)
		}
		return next
	}
	if !s.resolver.Revalidate(current) {
		s.logger.Warn("entrypoint no longer exists", "path", current.Path)
	}
	return current
}

func watchError(resource string, err error) error {
	return issue.NewErrorContext().
		WithOperation("watch for changes").
		WithResource(resource).
		WithGuide(issue.WatchFailedId).
		Wrap(err).
		BuildError()
}
