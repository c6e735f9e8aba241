// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/enggenv/envrun/internal/testutil"
)

// countingResolver resolves the names in found and counts Resolve calls.
type countingResolver struct {
	kind  Kind
	found map[string]string
	stale map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func newCountingResolver(kind Kind, found map[string]string) *countingResolver {
	return &countingResolver{kind: kind, found: found, stale: map[string]bool{}, calls: map[string]int{}}
}

func (r *countingResolver) Kind() Kind          { return r.kind }
func (r *countingResolver) Fingerprint() string { return "counting" }

func (r *countingResolver) Resolve(_ context.Context, dep Dependency, _ Scope) (string, error) {
	r.mu.Lock()
	r.calls[dep.Name]++
	r.mu.Unlock()
	if loc, ok := r.found[dep.Name]; ok {
		return loc, nil
	}
	return "", errors.New("not found")
}

func (r *countingResolver) Valid(location string) bool { return !r.stale[location] }

func (r *countingResolver) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	testutil.SkipOnWindows(t)
}

func writeTool(t *testing.T, dir, name string) string {
	t.Helper()
	return testutil.WriteExecutable(t, dir, name, "exit 0")
}

func TestPrepareIsIdempotent(t *testing.T) {
	t.Parallel()

	tools := newCountingResolver(KindTool, map[string]string{"python3": "/usr/bin/python3"})
	mods := newCountingResolver(KindPython, map[string]string{"requests": "/site/requests/__init__.py"})
	p := NewPathProvisioner(Options{Environ: []string{"PATH=/usr/bin"}, Resolvers: []Resolver{tools, mods}})
	deps := NewDependencySet("python3", "python:requests")

	first, err := p.Prepare(t.Context(), deps)
	if err != nil {
		t.Fatalf("first Prepare() error: %v", err)
	}
	second, err := p.Prepare(t.Context(), NewDependencySet("python3", "python:requests"))
	if err != nil {
		t.Fatalf("second Prepare() error: %v", err)
	}

	if !first.Equal(second) {
		t.Error("second Prepare() returned a different environment")
	}
	if first.Key() != second.Key() {
		t.Errorf("keys differ: %s vs %s", first.Key(), second.Key())
	}
	if tools.total() != 1 || mods.total() != 1 {
		t.Errorf("resolver calls = %d tool, %d python; want 1 each", tools.total(), mods.total())
	}
}

func TestPrepareResolvesDuplicatesOnce(t *testing.T) {
	t.Parallel()

	tools := newCountingResolver(KindTool, map[string]string{"git": "/usr/bin/git"})
	p := NewPathProvisioner(Options{Environ: []string{}, Resolvers: []Resolver{tools}})

	env, err := p.Prepare(t.Context(), NewDependencySet("git", "tool:git", "git"))
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if got := len(env.Resolutions()); got != 1 {
		t.Errorf("len(Resolutions()) = %d, want 1", got)
	}
	if tools.calls["git"] != 1 {
		t.Errorf("git resolved %d times, want 1", tools.calls["git"])
	}
}

func TestPrepareCollectsAllMissing(t *testing.T) {
	t.Parallel()

	tools := newCountingResolver(KindTool, map[string]string{"sh": "/bin/sh"})
	mods := newCountingResolver(KindPython, nil)
	p := NewPathProvisioner(Options{Environ: []string{}, Resolvers: []Resolver{tools, mods}})

	env, err := p.Prepare(t.Context(), NewDependencySet("no-such-tool", "sh", "bad name", "python:nope", "rust:serde"))
	if env != nil {
		t.Errorf("Prepare() returned a partial environment: %+v", env)
	}
	if !errors.Is(err, ErrDependencyResolution) {
		t.Fatalf("error does not wrap ErrDependencyResolution: %v", err)
	}
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("error is not a *ResolutionError: %T", err)
	}

	var ids []string
	for _, m := range resErr.Missing {
		ids = append(ids, m.ID)
	}
	want := "no-such-tool,bad name,python:nope,rust:serde"
	if got := strings.Join(ids, ","); got != want {
		t.Errorf("missing = %s, want %s", got, want)
	}
	if !errors.Is(resErr.Missing[1].Err, ErrInvalidDependency) {
		t.Errorf("invalid name reason = %v", resErr.Missing[1].Err)
	}
	if !errors.Is(resErr.Missing[3].Err, ErrUnknownKind) {
		t.Errorf("unknown kind reason = %v", resErr.Missing[3].Err)
	}
	if !strings.Contains(resErr.Details(), "python:nope") {
		t.Errorf("Details() = %q", resErr.Details())
	}
}

func TestPrepareFailureIsNotMemoized(t *testing.T) {
	t.Parallel()

	tools := newCountingResolver(KindTool, map[string]string{})
	p := NewPathProvisioner(Options{Environ: []string{}, Resolvers: []Resolver{tools}})

	for range 2 {
		if _, err := p.Prepare(t.Context(), NewDependencySet("late")); err == nil {
			t.Fatal("Prepare() succeeded for a missing tool")
		}
	}
	if tools.calls["late"] != 2 {
		t.Errorf("failed resolution was cached: %d calls", tools.calls["late"])
	}
}

func TestPrepareCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	p := NewPathProvisioner(Options{Environ: []string{}})
	_, err := p.Prepare(ctx, NewDependencySet("sh"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Prepare() error = %v, want context.Canceled", err)
	}
}

func TestPrepareToolsOnSearchPath(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := t.TempDir()
	extra := filepath.Join(root, "extra")
	inherited := filepath.Join(root, "inherited")
	want := writeTool(t, extra, "mytool")
	writeTool(t, inherited, "mytool")

	p := NewPathProvisioner(Options{
		SearchPaths: []string{"extra"},
		Environ:     []string{"PATH=" + inherited},
		WorkDir:     root,
	})
	env, err := p.Prepare(t.Context(), NewDependencySet("mytool"))
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	r, ok := env.Lookup("mytool")
	if !ok || r.Location != want {
		t.Errorf("mytool resolved to %+v, want %s", r, want)
	}
	if got, wantPath := env.PATH(), joinPath(extra, inherited); got != wantPath {
		t.Errorf("PATH() = %q, want %q", got, wantPath)
	}
}

func TestPreparePathDependencyJoinsPath(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := t.TempDir()
	bin := filepath.Join(root, "vendor", "bin")
	writeTool(t, bin, "helper")

	p := NewPathProvisioner(Options{Environ: []string{"PATH=/usr/bin"}, WorkDir: root})
	env, err := p.Prepare(t.Context(), NewDependencySet("./vendor/bin/helper"))
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if got, want := env.PATH(), joinPath(bin, "/usr/bin"); got != want {
		t.Errorf("PATH() = %q, want %q", got, want)
	}
	if _, err := env.LookPath("helper"); err != nil {
		t.Errorf("helper not on the prepared PATH: %v", err)
	}
}

func TestPreparePathDependencyFollowsSearchPaths(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := t.TempDir()
	extra := filepath.Join(root, "extra")
	bin := filepath.Join(root, "vendor", "bin")
	writeTool(t, bin, "helper")
	want := writeTool(t, extra, "shared")
	writeTool(t, bin, "shared")

	p := NewPathProvisioner(Options{
		SearchPaths: []string{"extra"},
		Environ:     []string{"PATH=/usr/bin"},
		WorkDir:     root,
	})
	env, err := p.Prepare(t.Context(), NewDependencySet("./vendor/bin/helper", "shared"))
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if got, wantPath := env.PATH(), joinPath(extra, bin, "/usr/bin"); got != wantPath {
		t.Errorf("PATH() = %q, want %q", got, wantPath)
	}
	if r, _ := env.Lookup("shared"); r.Location != want {
		t.Errorf("shared resolved to %q, want the search path copy %q", r.Location, want)
	}
}

func TestPrepareMissingTool(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	p := NewPathProvisioner(Options{Environ: []string{"PATH=" + t.TempDir()}})
	_, err := p.Prepare(t.Context(), NewDependencySet("definitely-not-installed-tool"))
	if !errors.Is(err, ErrDependencyResolution) {
		t.Errorf("Prepare() error = %v, want ErrDependencyResolution", err)
	}
}

func TestPreparePythonModules(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	bin := t.TempDir()
	interp := testutil.WriteFakePython(t, bin, "fakepy", "requests", "paho.mqtt.client")

	p := NewPathProvisioner(Options{Environ: []string{"PATH=" + bin}, PythonInterpreter: "fakepy"})
	env, err := p.Prepare(t.Context(), NewDependencySet("python:requests", "python:paho.mqtt.client"))
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if r, _ := env.Lookup("python:paho.mqtt.client"); r.Location != "/modules/paho.mqtt.client.py" {
		t.Errorf("module origin = %q", r.Location)
	}

	_, err = p.Prepare(t.Context(), NewDependencySet("python:requests", "python:yaml"))
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || len(resErr.Missing) != 1 {
		t.Fatalf("Prepare() error = %v, want one missing module", err)
	}
	if !errors.Is(resErr.Missing[0].Err, ErrModuleNotFound) {
		t.Errorf("reason = %v, want ErrModuleNotFound", resErr.Missing[0].Err)
	}
	if n := testutil.Invocations(t, interp); n != 4 {
		t.Errorf("interpreter ran %d times, want 4", n)
	}
}

func TestPreparePythonWithoutInterpreter(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	p := NewPathProvisioner(Options{Environ: []string{"PATH=" + t.TempDir()}, PythonInterpreter: "nopython"})
	_, err := p.Prepare(t.Context(), NewDependencySet("python:requests"))
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("Prepare() error = %v, want *ResolutionError", err)
	}
	if !strings.Contains(resErr.Missing[0].Err.Error(), "nopython") {
		t.Errorf("reason = %v", resErr.Missing[0].Err)
	}
}

func TestPrepareUsesCacheAcrossProvisioners(t *testing.T) {
	t.Parallel()

	cache := NewCache(t.TempDir())
	opts := func(r Resolver) Options {
		return Options{Environ: []string{"PATH=/usr/bin"}, Resolvers: []Resolver{r}, Cache: cache}
	}
	deps := NewDependencySet("curl", "jq")

	first := newCountingResolver(KindTool, map[string]string{"curl": "/usr/bin/curl", "jq": "/usr/bin/jq"})
	env1, err := NewPathProvisioner(opts(first)).Prepare(t.Context(), deps)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	second := newCountingResolver(KindTool, map[string]string{"curl": "/usr/bin/curl", "jq": "/usr/bin/jq"})
	env2, err := NewPathProvisioner(opts(second)).Prepare(t.Context(), deps)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if second.total() != 0 {
		t.Errorf("cached resolutions were resolved again (%d calls)", second.total())
	}
	if !env1.Equal(env2) {
		t.Error("cached environment differs from the original")
	}
	for _, r := range env2.Resolutions() {
		if !r.Cached {
			t.Errorf("%s not marked as cached", r.ID)
		}
	}

	third := newCountingResolver(KindTool, map[string]string{"curl": "/opt/curl", "jq": "/usr/bin/jq"})
	third.stale["/usr/bin/curl"] = true
	env3, err := NewPathProvisioner(opts(third)).Prepare(t.Context(), deps)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if third.calls["curl"] != 1 || third.calls["jq"] != 0 {
		t.Errorf("revalidation calls = %v, want only curl", third.calls)
	}
	if r, _ := env3.Lookup("curl"); r.Location != "/opt/curl" || r.Cached {
		t.Errorf("stale entry not refreshed: %+v", r)
	}
}

func TestPrepareKeyDependsOnInputs(t *testing.T) {
	t.Parallel()

	resolver := newCountingResolver(KindTool, map[string]string{"a": "/a", "b": "/b"})
	p1 := NewPathProvisioner(Options{Environ: []string{"PATH=/one"}, Resolvers: []Resolver{resolver}})
	p2 := NewPathProvisioner(Options{Environ: []string{"PATH=/two"}, Resolvers: []Resolver{resolver}})

	envA, _ := p1.Prepare(t.Context(), NewDependencySet("a"))
	envAB, _ := p1.Prepare(t.Context(), NewDependencySet("a", "b"))
	envA2, _ := p2.Prepare(t.Context(), NewDependencySet("a"))

	if envA.Key() == envAB.Key() {
		t.Error("different dependency sets share a key")
	}
	if envA.Key() == envA2.Key() {
		t.Error("different base PATHs share a key")
	}
}
