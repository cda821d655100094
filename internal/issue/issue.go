// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a guide.
type Id int

const (
	EntrypointNotFoundId Id = iota + 1
	ScriptLoadFailedId
	ScriptRuntimeFailedId
	EntryFunctionMissingId
	ConfigLoadFailedId
	ParamStoreUnavailableId
	ParameterNotFoundId
	WatchFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

// Issue is a markdown guide shown under a failure.
type Issue struct {
	id       Id
	mdMsg    MarkdownMsg
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guide with glamour. stylePath is a glamour style name
// ("dark", "light", "notty") or a path to a JSON style.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	entrypointNotFoundIssue = &Issue{
		id: EntrypointNotFoundId,
		mdMsg: `
# No script to run

forge looked for a script in this order and found none:

1. the ` + "`main`" + ` field of ` + "`forge.cue`" + ` in the project root
2. ` + "`main.lua`" + ` in the project root
3. the file you passed on the command line, if it ends in ` + "`.lua`" + `

## Things you can try
- Pass the script explicitly:
~~~
$ forge run model.lua
~~~
- Or point the manifest at it:
~~~cue
main: "src/model.lua"
~~~`,
	}

	scriptLoadFailedIssue = &Issue{
		id: ScriptLoadFailedId,
		mdMsg: `
# The script could not be loaded

The file failed to compile, or its top-level code raised an error before
` + "`main`" + ` was called. The location above points at the offending line.

## Things you can try
- Look for a missing ` + "`end`" + `, an unbalanced bracket or a stray character.
- Move work out of the top level and into ` + "`main(params)`" + `.
- Check that every ` + "`require`" + ` names a module next to the script, a bundled
  module (` + "`modeling`" + `, ` + "`modeling.extras`" + `) or one under ` + "`library_path`" + `.`,
		extLinks: []HttpLink{"https://www.lua.org/manual/5.1/manual.html"},
	}

	scriptRuntimeFailedIssue = &Issue{
		id: ScriptRuntimeFailedId,
		mdMsg: `
# The script raised an error

` + "`main`" + ` was called and stopped with an error. Parameters are passed as a
table keyed by name, already converted to their declared types.

## Things you can try
- Run ` + "`forge params`" + ` to see the values the script received.
- Run ` + "`forge reset`" + ` if a stored override no longer makes sense.
- Re-run with ` + "`--verbose`" + ` for the full Lua stack trace.`,
	}

	entryFunctionMissingIssue = &Issue{
		id: EntryFunctionMissingId,
		mdMsg: `
# The script has no entry function

The script loaded but did not define ` + "`main`" + ` (or the function named by
` + "`entry_function`" + ` in your configuration).

## Example script
~~~lua
local m = require("modeling")

function getParameterDefinitions()
  return {
    { name = "size", type = "float", initial = 10, caption = "Size" },
  }
end

function main(params)
  return m.cube({ size = params.size })
end
~~~

A script may also ` + "`return { main = main, getParameterDefinitions = ... }`" + `.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The configuration file is not valid CUE or does not match the schema.

## Things you can try
- Print the defaults and compare:
~~~
$ forge config show
~~~
- Check ` + "`FORGE_*`" + ` environment variables; they override the file.
- Remove unknown fields. The schema is closed, so a typo is an error.`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	paramStoreUnavailableIssue = &Issue{
		id: ParamStoreUnavailableId,
		mdMsg: `
# The parameter store is unavailable

Saved parameter overrides could not be read or written.

## Things you can try
- For the ` + "`redis`" + ` backend, check that the server at ` + "`params.redis.addr`" + ` is up.
- For the ` + "`file`" + ` backend, check that ` + "`params.file`" + ` is writable.
- Switch to the in-memory backend for this run:
~~~
$ FORGE_PARAMS_BACKEND=memory forge run
~~~`,
	}

	parameterNotFoundIssue = &Issue{
		id: ParameterNotFoundId,
		mdMsg: `
# Unknown parameter

The script does not declare a parameter with that name, so the value would
never be used.

## Things you can try
- List the declared parameters:
~~~
$ forge params
~~~`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Watching stopped

The file watcher could not start or hit an unrecoverable error.

## Things you can try
- On Linux, raise the inotify limit:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~
- Add large directories to ` + "`watch.ignore`" + ` in your configuration.`,
	}

	issues = map[Id]*Issue{
		entrypointNotFoundIssue.Id():    entrypointNotFoundIssue,
		scriptLoadFailedIssue.Id():      scriptLoadFailedIssue,
		scriptRuntimeFailedIssue.Id():   scriptRuntimeFailedIssue,
		entryFunctionMissingIssue.Id():  entryFunctionMissingIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		paramStoreUnavailableIssue.Id(): paramStoreUnavailableIssue,
		parameterNotFoundIssue.Id():     parameterNotFoundIssue,
		watchFailedIssue.Id():           watchFailedIssue,
	}
)

// Values returns every guide ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
