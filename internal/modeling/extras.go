// SPDX-License-Identifier: MPL-2.0

package modeling

import (
	"embed"
	"strings"
)

//go:embed lua/*.lua
var luaFS embed.FS

// Source returns the embedded Lua source of a bundled helper module such as
// "modeling.extras". ok is false for names that are not bundled.
func Source(name string) (src []byte, ok bool) {
	if !strings.HasPrefix(name, ModuleName+".") {
		return nil, false
	}
	file := "lua/" + strings.TrimPrefix(name, ModuleName+".") + ".lua"
	data, err := luaFS.ReadFile(file)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Bundled lists the embedded helper module names.
func Bundled() []string {
	entries, err := luaFS.ReadDir("lua")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, ModuleName+"."+strings.TrimSuffix(e.Name(), ".lua"))
	}
	return names
}
