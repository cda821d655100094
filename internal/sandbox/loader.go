// SPDX-License-Identifier: MPL-2.0

package sandbox

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/forgecad/forge/internal/modeling"
)

// configureModules sets up the two resolution tiers. Tier one is Lua's own
// package.path, prefixed with the script directory so a project-local module shadows
// anything bundled. Tier two is a searcher appended to package.loaders that serves
// host-bundled modules.
func (e *Executor) configureModules(L *lua.LState, dir string) {
	pkg, ok := L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return
	}

	local := filepath.Join(dir, "?.lua") + ";" + filepath.Join(dir, "?", "init.lua")
	ambient := lua.LVAsString(L.GetField(pkg, "path"))
	if ambient != "" {
		local += ";" + ambient
	}
	L.SetField(pkg, "path", lua.LString(local))

	if loaders, ok := L.GetField(pkg, "loaders").(*lua.LTable); ok {
		loaders.Append(L.NewFunction(e.bundledSearcher))
	}
}

// bundledSearcher follows the package.loaders protocol: it returns a loader
// function when it can serve the module, or a string describing where it looked.
func (e *Executor) bundledSearcher(L *lua.LState) int {
	name := L.CheckString(1)

	if loader, ok := e.natives[name]; ok {
		L.Push(L.NewFunction(loader))
		return 1
	}

	if src, ok := modeling.Source(name); ok {
		fn, err := L.Load(bytes.NewReader(src), "[bundled]/"+name)
		if err != nil {
			L.RaiseError("error loading bundled module '%s':\n\t%s", name, err.Error())
		}
		L.Push(fn)
		return 1
	}

	if e.libraryPath != "" {
		file := filepath.Join(e.libraryPath, strings.ReplaceAll(name, ".", string(filepath.Separator))+".lua")
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			fn, err := L.LoadFile(file)
			if err != nil {
				L.RaiseError("error loading module '%s' from file '%s':\n\t%s", name, file, err.Error())
			}
			L.Push(fn)
			return 1
		}
		L.Push(lua.LString(fmt.Sprintf("\n\tno bundled module '%s'\n\tno file '%s'", name, file)))
		return 1
	}

	L.Push(lua.LString(fmt.Sprintf("\n\tno bundled module '%s'", name)))
	return 1
}
