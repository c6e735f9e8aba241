// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	stderrors "errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// FormatError rewrites a CUE error as "<file>: <field path>: <message>".
// Multiple CUE errors are listed one per line under a single header.
// Non-CUE errors are returned wrapped with the file name.
func FormatError(err error, filename string) error {
	if err == nil {
		return nil
	}

	var cueErr errors.Error
	if !stderrors.As(err, &cueErr) {
		return fmt.Errorf("%s: %w", filename, err)
	}

	all := errors.Errors(err)

	lines := make([]string, 0, len(all))
	for _, e := range all {
		field := formatPath(errors.Path(e))
		msg := e.Error()
		if field == "" {
			lines = append(lines, msg)
			continue
		}
		// CUE often repeats the path at the start of the message.
		msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, field), ":"))
		lines = append(lines, field+": "+msg)
	}

	if len(lines) == 1 {
		return &Error{msg: filename + ": " + lines[0], cause: err}
	}
	return &Error{msg: filename + ": validation failed:\n  " + strings.Join(lines, "\n  "), cause: err}
}

// Error is a CUE error rewritten for display. It unwraps to the original.
type Error struct {
	msg   string
	cause error
}

// Error returns the rewritten message.
func (e *Error) Error() string { return e.msg }

// Unwrap returns the original CUE error.
func (e *Error) Unwrap() error { return e.cause }

// formatPath joins CUE path elements using JSON-path notation, so
// ["signals", "forward", "1"] becomes "signals.forward[1]".
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		switch {
		case i > 0 && isIndex(part):
			b.WriteString("[" + part + "]")
		case i > 0:
			b.WriteString("." + part)
		default:
			b.WriteString(part)
		}
	}
	return b.String()
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

// CheckFileSize returns an error when data is larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
