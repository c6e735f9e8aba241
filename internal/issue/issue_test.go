// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestIds(t *testing.T) {
	t.Parallel()

	ids := Ids()
	if len(ids) != len(issues) {
		t.Fatalf("Ids() returned %d ids, want %d", len(ids), len(issues))
	}
	for i, id := range ids {
		if id != Id(i+1) {
			t.Errorf("Ids()[%d] = %d, want %d", i, id, i+1)
		}
		if Get(id) == nil {
			t.Errorf("Get(%d) returned nil", id)
		}
		if Get(id).Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, Get(id).Id())
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	t.Parallel()

	if Get(0) != nil {
		t.Error("Get(0) should return nil")
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	t.Parallel()

	msg := Get(DependenciesNotSatisfiedId).MarkdownMsg()
	if !strings.Contains(string(msg), "Dependencies not satisfied") {
		t.Errorf("unexpected markdown: %s", msg)
	}
}

// Render swaps the package-level renderer, so these subtests run serially.
func TestIssue_Render(t *testing.T) {
	original := render
	t.Cleanup(func() { render = original })

	var gotStyle string
	render = func(in, style string) (string, error) {
		gotStyle = style
		return "rendered:" + in, nil
	}

	out, err := Get(TargetNotFoundId).Render("dark")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if gotStyle != "dark" {
		t.Errorf("style = %q, want dark", gotStyle)
	}
	if !strings.HasPrefix(out, "rendered:# Target executable not found!") {
		t.Errorf("Render() = %q", out)
	}

	render = func(string, string) (string, error) { return "", errors.New("boom") }
	if _, err := Get(TargetNotFoundId).Render("dark"); err == nil {
		t.Error("Render() should surface renderer errors")
	}
}

func TestIssue_RenderWithGlamour(t *testing.T) {
	t.Parallel()

	out, err := Get(PermissionDeniedId).Render("notty")
	if err != nil {
		t.Fatalf("Render(notty) error = %v", err)
	}
	if !strings.Contains(out, "chmod +x") {
		t.Errorf("rendered output should keep the code block, got:\n%s", out)
	}
}
