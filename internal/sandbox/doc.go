// SPDX-License-Identifier: MPL-2.0

// Package sandbox executes model scripts in a fresh Lua interpreter per call.
//
// Each Execute or Introspect call allocates a new *lua.LState, loads the script under
// its absolute path, runs it and closes the state, so no globals, module caches or
// upvalues survive between runs. Modules are resolved in two tiers: the script's own
// directory and the ambient LUA_PATH first, then the host-bundled modeling library.
package sandbox
