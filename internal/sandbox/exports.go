// SPDX-License-Identifier: MPL-2.0

package sandbox

import lua "github.com/yuin/gopher-lua"

// exports is the capability contract a loaded script satisfies. main is required
// for execution; parameters is optional.
type exports struct {
	main       *lua.LFunction
	parameters *lua.LFunction
}

// resolveExports looks each export up first in the table the chunk returned, then
// among the globals the chunk defined.
func (e *Executor) resolveExports(L *lua.LState, ret lua.LValue) exports {
	module, _ := ret.(*lua.LTable)
	lookup := func(name string) *lua.LFunction {
		if module != nil {
			if fn, ok := module.RawGetString(name).(*lua.LFunction); ok {
				return fn
			}
		}
		fn, _ := L.GetGlobal(name).(*lua.LFunction)
		return fn
	}
	return exports{
		main:       lookup(e.entryFunction),
		parameters: lookup(e.parameterFunction),
	}
}
