// SPDX-License-Identifier: MPL-2.0

package sandbox

import (
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Kind classifies a script failure.
type Kind string

const (
	// KindConfiguration means the script loaded but does not satisfy the export contract.
	KindConfiguration Kind = "configuration"
	// KindLoad means the script failed to parse or raised while its body ran.
	KindLoad Kind = "load"
	// KindRuntime means the entry function raised.
	KindRuntime Kind = "runtime"
)

var (
	// ErrConfiguration is matched by errors.Is for KindConfiguration failures.
	ErrConfiguration = errors.New("script configuration error")
	// ErrLoad is matched by errors.Is for KindLoad failures.
	ErrLoad = errors.New("script load error")
	// ErrRuntime is matched by errors.Is for KindRuntime failures.
	ErrRuntime = errors.New("script runtime error")
)

var (
	syntaxPosition  = regexp.MustCompile(`line:(\d+)\(column:(\d+)\)`)
	compilePosition = regexp.MustCompile(`compile error near line\((\d+)\)`)
)

type (
	// Location is a 1-based source position. Column is 0 when unknown.
	Location struct {
		Line   int `json:"line"`
		Column int `json:"column,omitempty"`
	}

	// Error is a classified script failure. Message and Trace are the interpreter's
	// own text, unmodified.
	Error struct {
		Kind     Kind
		Path     string
		Message  string
		Trace    string
		Location *Location
		Err      error
	}
)

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying interpreter error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindConfiguration:
		return target == ErrConfiguration
	case KindLoad:
		return target == ErrLoad
	case KindRuntime:
		return target == ErrRuntime
	}
	return false
}

// classify turns an interpreter error into an *Error. Syntax errors are always
// load failures regardless of the phase that reported them.
func classify(kind Kind, path string, err error) *Error {
	msg := err.Error()
	trace := ""
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		if apiErr.Object != nil {
			msg = apiErr.Object.String()
		}
		trace = apiErr.StackTrace
		if apiErr.Type == lua.ApiErrorSyntax {
			kind = KindLoad
		}
	}
	msg = strings.TrimSpace(msg)
	return &Error{
		Kind:     kind,
		Path:     path,
		Message:  msg,
		Trace:    trace,
		Location: locate(path, msg, trace),
		Err:      err,
	}
}

// locate finds the failure position: a parser position when present, otherwise the
// first "<path>:<line>:" frame in the message and then in the traceback. The file's
// base name is tried last for messages that carry a shortened chunk name.
func locate(path, msg, trace string) *Location {
	if m := syntaxPosition.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		return &Location{Line: line, Column: col}
	}
	if m := compilePosition.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &Location{Line: line}
	}
	if path == "" {
		return nil
	}

	patterns := []*regexp.Regexp{
		regexp.MustCompile(regexp.QuoteMeta(path) + `:(\d+):`),
		regexp.MustCompile(`(?:^|[\s/\\])` + regexp.QuoteMeta(filepath.Base(path)) + `:(\d+):`),
	}
	for _, re := range patterns {
		for _, text := range []string{msg, trace} {
			if m := re.FindStringSubmatch(text); m != nil {
				line, _ := strconv.Atoi(m[1])
				return &Location{Line: line}
			}
		}
	}
	return nil
}
