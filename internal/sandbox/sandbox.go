// SPDX-License-Identifier: MPL-2.0

package sandbox

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/forgecad/forge/internal/luaconv"
	"github.com/forgecad/forge/internal/modeling"
	"github.com/forgecad/forge/pkg/params"
)

const (
	// DefaultEntryFunction is the export every script must provide.
	DefaultEntryFunction = "main"
	// DefaultParameterFunction is the optional export that declares parameters.
	DefaultParameterFunction = "getParameterDefinitions"
)

type (
	// Executor runs scripts. It holds configuration only; every call gets its own
	// interpreter, so an Executor is safe for concurrent use.
	Executor struct {
		entryFunction     string
		parameterFunction string
		libraryPath       string
		natives           map[string]lua.LGFunction
		logger            *log.Logger
	}

	// Option configures an Executor.
	Option func(*Executor)

	// Output is the raw value returned by a script's entry function, converted to
	// plain Go values.
	Output struct {
		Value any
	}
)

// WithEntryFunction overrides the name of the required entry export.
func WithEntryFunction(name string) Option {
	return func(e *Executor) {
		if name != "" {
			e.entryFunction = name
		}
	}
}

// WithParameterFunction overrides the name of the optional parameter export.
func WithParameterFunction(name string) Option {
	return func(e *Executor) {
		if name != "" {
			e.parameterFunction = name
		}
	}
}

// WithLibraryPath adds a directory of bundled Lua modules searched after the
// script's own directory.
func WithLibraryPath(dir string) Option {
	return func(e *Executor) { e.libraryPath = dir }
}

// WithNativeModule registers an additional Go-native module served by the bundled tier.
func WithNativeModule(name string, loader lua.LGFunction) Option {
	return func(e *Executor) { e.natives[name] = loader }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Executor serving the modeling library as a bundled module.
func New(opts ...Option) *Executor {
	e := &Executor{
		entryFunction:     DefaultEntryFunction,
		parameterFunction: DefaultParameterFunction,
		natives:           map[string]lua.LGFunction{modeling.ModuleName: modeling.Loader},
		logger:            log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute loads the script at path into a fresh interpreter and calls its entry
// function with values as a single table argument. The returned error is always an
// *Error.
func (e *Executor) Execute(ctx context.Context, path string, values params.Values) (out Output, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Output{}, &Error{Kind: KindLoad, Path: path, Message: err.Error(), Err: err}
	}

	L := e.newState(ctx, abs)
	defer L.Close()
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("internal error while running %s: %v", abs, r)
			out, err = Output{}, &Error{Kind: KindRuntime, Path: abs, Message: msg, Err: fmt.Errorf("%s", msg)}
		}
	}()

	exp, loadErr := e.load(L, abs)
	if loadErr != nil {
		return Output{}, loadErr
	}
	if exp.main == nil {
		msg := fmt.Sprintf("%s does not define a %q function", abs, e.entryFunction)
		return Output{}, &Error{Kind: KindConfiguration, Path: abs, Message: msg, Err: ErrConfiguration}
	}

	arg := luaconv.ToLua(L, map[string]any(values))
	if callErr := L.CallByParam(lua.P{Fn: exp.main, NRet: 1, Protect: true}, arg); callErr != nil {
		return Output{}, classify(KindRuntime, abs, callErr)
	}
	ret := L.Get(-1)
	L.Pop(1)

	return Output{Value: luaconv.FromLua(ret)}, nil
}

// newState allocates the per-call interpreter with module resolution configured
// for the script at abs.
func (e *Executor) newState(ctx context.Context, abs string) *lua.LState {
	L := lua.NewState()
	if ctx != nil && ctx.Done() != nil {
		L.SetContext(ctx)
	}
	e.configureModules(L, filepath.Dir(abs))
	return L
}

// load runs the script body under its absolute path as chunk name, with
// __filename and __dirname set, and collects its exports.
func (e *Executor) load(L *lua.LState, abs string) (exports, error) {
	fn, err := L.LoadFile(abs)
	if err != nil {
		return exports{}, classify(KindLoad, abs, err)
	}

	L.SetGlobal("__filename", lua.LString(abs))
	L.SetGlobal("__dirname", lua.LString(filepath.Dir(abs)))

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return exports{}, classify(KindLoad, abs, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	return e.resolveExports(L, ret), nil
}
