// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	cueerrors "cuelang.org/go/cue/errors"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "test.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with file name", func(t *testing.T) {
		t.Parallel()

		original := errors.New("some error")
		err := FormatError(original, "test.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.HasPrefix(err.Error(), "test.cue: ") {
			t.Errorf("error should start with the file name, got: %v", err)
		}
		if !errors.Is(err, original) {
			t.Errorf("error should wrap the original error, got: %v", err)
		}
	})
}

func TestFormatError_CUEErrorKeepsCause(t *testing.T) {
	t.Parallel()

	schema := []byte(`#Config: { name?: string }`)
	_, err := DecodeMap(schema, []byte(`name: 3`), "#Config", "bad.cue")
	if err == nil {
		t.Fatal("DecodeMap() succeeded, want a type error")
	}
	if !strings.HasPrefix(err.Error(), "bad.cue: ") || !strings.Contains(err.Error(), "name") {
		t.Errorf("error = %q, want it to name the file and field", err)
	}
	var cueErr cueerrors.Error
	if !errors.As(err, &cueErr) {
		t.Errorf("error %v does not unwrap to a CUE error", err)
	}
	var formatted *Error
	if !errors.As(err, &formatted) {
		t.Errorf("error %T is not a *cueutil.Error", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []string
		want string
	}{
		{name: "empty path", path: nil, want: ""},
		{name: "single element", path: []string{"dependencies"}, want: "dependencies"},
		{name: "nested", path: []string{"target", "executable"}, want: "target.executable"},
		{name: "list index", path: []string{"signals", "forward", "1"}, want: "signals.forward[1]"},
		{name: "leading digits are not an index", path: []string{"0"}, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "a.cue"); err != nil {
		t.Errorf("CheckFileSize at limit returned error: %v", err)
	}
	if err := CheckFileSize(make([]byte, 11), 10, "a.cue"); err == nil {
		t.Error("CheckFileSize over limit returned nil")
	}
}

const testSchema = `
#Doc: {
	name?:  string
	count?: int & >=0
}
`

func TestDecodeMap(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		got, err := DecodeMap([]byte(testSchema), []byte(`name: "x"`), "#Doc", "doc.cue")
		if err != nil {
			t.Fatalf("DecodeMap() error = %v", err)
		}
		if got["name"] != "x" {
			t.Errorf("name = %v, want x", got["name"])
		}
		if _, ok := got["count"]; ok {
			t.Error("absent optional field should not be decoded")
		}
	})

	t.Run("schema violation names the field", func(t *testing.T) {
		t.Parallel()

		_, err := DecodeMap([]byte(testSchema), []byte(`count: -1`), "#Doc", "doc.cue")
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(err.Error(), "count") {
			t.Errorf("error should mention the field, got: %v", err)
		}
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := DecodeMap([]byte(testSchema), []byte(`other: 1`), "#Doc", "doc.cue"); err == nil {
			t.Fatal("expected closed definition to reject unknown field")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		if _, err := DecodeMap([]byte(testSchema), []byte(`name: `), "#Doc", "doc.cue"); err == nil {
			t.Fatal("expected syntax error")
		}
	})
}
