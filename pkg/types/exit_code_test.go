// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestExitCodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: 0, wantValid: true},
		{name: "one is valid", value: 1, wantValid: true},
		{name: "125 is valid", value: 125, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if tt.wantValid {
				if err != nil {
					t.Errorf("ExitCode(%d).Validate() returned error for valid value: %v", tt.value, err)
				}
				return
			}
			if err == nil {
				t.Fatal("ExitCode.Validate() returned nil for invalid value")
			}
			if !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("error does not wrap ErrInvalidExitCode: %v", err)
			}
		})
	}
}

func TestExitCodeIsRunnerFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code ExitCode
		want bool
	}{
		{0, false},
		{1, false},
		{2, false},
		{124, false},
		{125, true},
		{126, true},
		{127, true},
		{128, false},
	}

	for _, tt := range tests {
		if got := tt.code.IsRunnerFailure(); got != tt.want {
			t.Errorf("ExitCode(%d).IsRunnerFailure() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestFromSignal(t *testing.T) {
	t.Parallel()

	if got := FromSignal(15); got != 143 {
		t.Errorf("FromSignal(15) = %d, want 143", got)
	}
	if got := FromSignal(9); !(got > ExitSignalBase) || got.Validate() != nil {
		t.Errorf("FromSignal(9) = %d, want a valid code above %d", got, ExitSignalBase)
	}
}

func TestExitCodeString(t *testing.T) {
	t.Parallel()

	if got := ExitCode(42).String(); got != "42" {
		t.Errorf("ExitCode(42).String() = %q, want %q", got, "42")
	}
}
