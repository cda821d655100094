// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrFileTooLarge is wrapped by FileTooLargeError.
var ErrFileTooLarge = errors.New("document too large")

type (
	// FieldError is one schema violation.
	FieldError struct {
		// Path is the offending field in JSON-path notation, e.g. "watch.ignore[0]".
		// Empty for document-level errors such as syntax errors.
		Path    string
		Message string
	}

	// SchemaError collects every violation CUE reported for one document.
	SchemaError struct {
		File   string
		Fields []FieldError
	}

	// FileTooLargeError is returned before parsing when a document exceeds the
	// configured limit.
	FileTooLargeError struct {
		File    string
		Size    int64
		MaxSize int64
	}
)

func (f FieldError) String() string {
	if f.Path == "" {
		return f.Message
	}
	return f.Path + ": " + f.Message
}

// Error prints a single violation inline and several as an indented list.
func (e *SchemaError) Error() string {
	switch len(e.Fields) {
	case 0:
		return e.File + ": invalid document"
	case 1:
		return e.File + ": " + e.Fields[0].String()
	}
	lines := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		lines[i] = f.String()
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.File, strings.Join(lines, "\n  "))
}

// Paths returns the field paths in report order, skipping document-level errors.
func (e *SchemaError) Paths() []string {
	var paths []string
	for _, f := range e.Fields {
		if f.Path != "" {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.File, e.Size, e.MaxSize)
}

func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// FormatError turns a CUE error into a *SchemaError naming the file and the
// path of every offending field:
//
//	forge.cue: main: conflicting values 3 and string (mismatched types int and string)
//
// Errors that did not come from CUE are wrapped with the file name.
func FormatError(err error, file string) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", file, err)
	}

	se := &SchemaError{File: file, Fields: make([]FieldError, 0, len(list))}
	for _, e := range list {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()
		// CUE sometimes repeats the path inside the message.
		if path != "" {
			if rest, ok := strings.CutPrefix(msg, path); ok {
				msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			}
		}
		se.Fields = append(se.Fields, FieldError{Path: path, Message: msg})
	}
	return se
}

// formatPath renders a CUE error path such as ["watch", "ignore", "0"] as
// "watch.ignore[0]".
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		switch {
		case i > 0 && isIndex(part):
			sb.WriteString("[" + part + "]")
		case i > 0:
			sb.WriteString("." + part)
		default:
			sb.WriteString(part)
		}
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns a *FileTooLargeError when data is larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, file string) error {
	if size := int64(len(data)); size > maxSize {
		return &FileTooLargeError{File: file, Size: size, MaxSize: maxSize}
	}
	return nil
}
