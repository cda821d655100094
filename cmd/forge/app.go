// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/forgecad/forge/internal/config"
	"github.com/forgecad/forge/internal/engine"
	"github.com/forgecad/forge/internal/entrypoint"
	"github.com/forgecad/forge/internal/issue"
	"github.com/forgecad/forge/internal/logging"
	"github.com/forgecad/forge/internal/metrics"
	"github.com/forgecad/forge/internal/sandbox"
	"github.com/forgecad/forge/internal/store"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra handler receives an App and opens a session
	// through it.
	App struct {
		Config    ConfigProvider
		OpenStore StoreOpener
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		OpenStore StoreOpener
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		LoadWithPath(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// StoreOpener builds the parameter store selected by the configuration.
	StoreOpener func(store.Settings) (store.Store, error)

	// session holds everything one command invocation works with.
	session struct {
		cfg      *config.Config
		cfgPath  string
		root     string
		verbose  bool
		logger   *log.Logger
		store    store.Store
		resolver *entrypoint.Resolver
		engine   *engine.Engine
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.OpenStore == nil {
		deps.OpenStore = store.Open
	}

	return &App{
		Config:    deps.Config,
		OpenStore: deps.OpenStore,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}, nil
}

// open loads configuration and builds the engine for one invocation. extra
// hooks run after the session's own logging hook.
func (a *App) open(ctx context.Context, flags *rootFlagValues, extra ...engine.LifecycleHooks) (*session, error) {
	cfg, cfgPath, err := a.Config.LoadWithPath(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	verbose := flags.verbose || cfg.UI.Verbose
	level := cfg.Log.Level.String()
	if verbose {
		level = config.LogLevelDebug.String()
	}
	logger, err := logging.New(a.stderr, level)
	if err != nil {
		return nil, err
	}

	root, err := projectRoot(flags.root)
	if err != nil {
		return nil, err
	}

	st, err := a.OpenStore(cfg.StoreSettings())
	if err != nil {
		return nil, storeError("open parameter store", cfg.Params.Backend.String(), err)
	}

	s := &session{
		cfg:     cfg,
		cfgPath: cfgPath,
		root:    root,
		verbose: verbose,
		logger:  logger,
		store:   st,
		resolver: entrypoint.New(
			entrypoint.WithManifestName(cfg.ManifestName.String()),
			entrypoint.WithDefaultScript(cfg.DefaultScript.String()),
			entrypoint.WithLogger(logger),
		),
	}

	runner := sandbox.New(
		sandbox.WithEntryFunction(cfg.EntryFunction.String()),
		sandbox.WithParameterFunction(cfg.ParameterFunction.String()),
		sandbox.WithLibraryPath(cfg.LibraryPath),
		sandbox.WithLogger(logger),
	)
	s.engine = engine.New(
		engine.WithRunner(runner),
		engine.WithStore(st),
		engine.WithLogger(logger),
		engine.WithLifecycleHooks(chainHooks(append([]engine.LifecycleHooks{s.logHooks()}, extra...)...)),
	)

	logger.Debug("session opened", "config", cfgPath, "root", root, "backend", cfg.Params.Backend)
	return s, nil
}

// Close releases the parameter store when it holds a connection.
func (s *session) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// entrypoint resolves the script to work on. activeFile is the optional
// script argument.
func (s *session) entrypoint(activeFile string) (*entrypoint.Entrypoint, error) {
	ep, ok := s.resolver.Resolve(s.root, activeFile)
	if !ok {
		return nil, issue.NewErrorContext().
			WithOperation("find a script to run").
			WithResource(s.root).
			WithSuggestion("Pass the script path as an argument").
			WithSuggestion(fmt.Sprintf("Create %s or add a main field to %s", s.cfg.DefaultScript, s.cfg.ManifestName)).
			WithGuide(issue.EntrypointNotFoundId).
			BuildError()
	}
	s.logger.Debug("resolved entrypoint", "path", ep.Path, "origin", ep.Origin)
	return ep, nil
}

func (s *session) logHooks() engine.LifecycleHooks {
	return engine.LifecycleHooks{
		OnRunStart: func(_ context.Context, ev *engine.RunEvent) {
			s.logger.Debug("run started", "path", ev.Path)
		},
		OnRunFinish: func(_ context.Context, ev *engine.RunEvent) {
			s.logger.Info("run finished", "path", ev.Path, "outcome", metrics.Outcome(ev.Result), "duration", ev.Duration)
		},
	}
}

// chainHooks calls every hook in order.
func chainHooks(hooks ...engine.LifecycleHooks) engine.LifecycleHooks {
	return engine.LifecycleHooks{
		OnRunStart: func(ctx context.Context, ev *engine.RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, ev)
				}
			}
		},
		OnRunFinish: func(ctx context.Context, ev *engine.RunEvent) {
			for _, h := range hooks {
				if h.OnRunFinish != nil {
					h.OnRunFinish(ctx, ev)
				}
			}
		},
	}
}

func projectRoot(flag string) (string, error) {
	root := flag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", issue.WrapWithContext(err, "open project root", abs)
	}
	if !info.IsDir() {
		return "", issue.WrapWithContext(errors.New("not a directory"), "open project root", abs)
	}
	return abs, nil
}

func storeError(op, resource string, err error) error {
	return issue.NewErrorContext().
		WithOperation(op).
		WithResource(resource).
		WithSuggestion("Set FORGE_PARAMS_BACKEND=memory to run without saved overrides").
		WithGuide(issue.ParamStoreUnavailableId).
		Wrap(err).
		BuildError()
}
