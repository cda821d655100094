// SPDX-License-Identifier: MPL-2.0

// Package engine runs the script pipeline: parameter discovery, override resolution,
// execution and geometry normalization.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/forgecad/forge/internal/logging"
	"github.com/forgecad/forge/internal/sandbox"
	"github.com/forgecad/forge/internal/store"
	"github.com/forgecad/forge/pkg/geometry"
	"github.com/forgecad/forge/pkg/params"
)

type (
	// Runner is the script executor the engine drives. *sandbox.Executor implements it.
	Runner interface {
		Introspect(ctx context.Context, path string) []params.Definition
		Execute(ctx context.Context, path string, values params.Values) (sandbox.Output, error)
	}

	// RunEvent describes a run to lifecycle hooks. Result and Duration are only set
	// when the run has finished.
	RunEvent struct {
		Path     string
		Result   *Result
		Duration time.Duration
	}

	// LifecycleHooks observe runs. Nil hooks are skipped.
	LifecycleHooks struct {
		OnRunStart  func(context.Context, *RunEvent)
		OnRunFinish func(context.Context, *RunEvent)
	}

	// Engine holds only injected collaborators, so one Engine may serve any number
	// of sequential or concurrent runs.
	Engine struct {
		runner Runner
		store  store.Store
		logger *log.Logger
		hooks  LifecycleHooks
	}

	// Option configures an Engine.
	Option func(*Engine)
)

// WithRunner replaces the default sandbox executor.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithStore sets where parameter overrides are kept. The default is in memory.
func WithStore(s store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLifecycleHooks attaches run observers.
func WithLifecycleHooks(h LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: logging.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.runner == nil {
		e.runner = sandbox.New(sandbox.WithLogger(e.logger))
	}
	if e.store == nil {
		e.store = store.NewMemory()
	}
	return e
}

// Run executes the script at path once. Script problems are reported in the
// returned Result, never as a Go error.
func (e *Engine) Run(ctx context.Context, path string) *Result {
	path = absolute(path)
	start := time.Now()
	if e.hooks.OnRunStart != nil {
		e.hooks.OnRunStart(ctx, &RunEvent{Path: path})
	}

	res := e.run(ctx, path)

	if e.hooks.OnRunFinish != nil {
		e.hooks.OnRunFinish(ctx, &RunEvent{Path: path, Result: res, Duration: time.Since(start)})
	}
	return res
}

func (e *Engine) run(ctx context.Context, path string) *Result {
	defs, values := e.Inspect(ctx, path)

	out, err := e.runner.Execute(ctx, path, values)
	if err != nil {
		var serr *sandbox.Error
		if !errors.As(err, &serr) {
			serr = &sandbox.Error{Kind: sandbox.KindRuntime, Path: path, Message: err.Error(), Err: err}
		}
		e.logger.Debug("script failed", "path", path, "kind", serr.Kind, "err", serr.Message)
		return failure(path, serr)
	}

	geoms, rep := geometry.Normalize(out.Value)
	for _, w := range rep.Warnings {
		e.logger.Warn("repaired geometry", "path", path, "warning", w.String())
	}
	return &Result{
		Path: path,
		Success: &Success{
			Geometries:  geoms,
			Parameters:  values,
			Definitions: defs,
			Repairs:     len(rep.Warnings),
		},
	}
}

// Inspect discovers the script's parameters and resolves their current values
// without running the entry function.
func (e *Engine) Inspect(ctx context.Context, path string) ([]params.Definition, params.Values) {
	path = absolute(path)
	defs := e.runner.Introspect(ctx, path)

	persisted, err := e.store.Get(ctx, path)
	if err != nil {
		e.logger.Warn("ignoring stored parameters", "path", path, "err", err)
		persisted = nil
	}
	return defs, params.Resolve(defs, persisted)
}

// SetParameter records a user override for one parameter. The raw value is
// stored as given and coerced on the next run.
func (e *Engine) SetParameter(ctx context.Context, path, name string, raw any) error {
	path = absolute(path)
	current, err := e.store.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read parameters for %s: %w", path, err)
	}
	next := current.Clone()
	if next == nil {
		next = params.Values{}
	}
	next[name] = raw
	if err := e.store.Set(ctx, path, next); err != nil {
		return fmt.Errorf("failed to save parameters for %s: %w", path, err)
	}
	return nil
}

// ResetParameters drops every override for the script, restoring its defaults.
func (e *Engine) ResetParameters(ctx context.Context, path string) error {
	path = absolute(path)
	if err := e.store.Clear(ctx, path); err != nil {
		return fmt.Errorf("failed to reset parameters for %s: %w", path, err)
	}
	return nil
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
