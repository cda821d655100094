// SPDX-License-Identifier: MPL-2.0

package sandbox

import (
	"context"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"

	"github.com/forgecad/forge/internal/luaconv"
	"github.com/forgecad/forge/pkg/params"
)

// Introspect asks the script at path for its parameter definitions. It never fails:
// a missing export, a script that cannot load, a raised error or an unusable result
// all yield an empty list, and malformed entries are dropped from the list.
func (e *Executor) Introspect(ctx context.Context, path string) (defs []params.Definition) {
	defs = []params.Definition{}

	abs, err := filepath.Abs(path)
	if err != nil {
		e.logger.Debug("parameter introspection skipped", "path", path, "err", err)
		return defs
	}

	L := e.newState(ctx, abs)
	defer L.Close()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("parameter introspection panicked", "path", abs, "err", r)
			defs = []params.Definition{}
		}
	}()

	exp, err := e.load(L, abs)
	if err != nil {
		e.logger.Debug("parameter introspection could not load script", "path", abs, "err", err)
		return defs
	}
	if exp.parameters == nil {
		return defs
	}

	if err := L.CallByParam(lua.P{Fn: exp.parameters, NRet: 1, Protect: true}); err != nil {
		e.logger.Debug("parameter function raised", "path", abs, "err", err)
		return defs
	}
	ret := L.Get(-1)
	L.Pop(1)

	decoded, problems := params.Decode(luaconv.FromLua(ret))
	for _, p := range problems {
		e.logger.Debug("dropping parameter definition", "path", abs, "err", p)
	}
	if decoded != nil {
		defs = decoded
	}
	return defs
}
