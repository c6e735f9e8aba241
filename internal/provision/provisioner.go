// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

type (
	// Provisioner prepares execution environments.
	Provisioner interface {
		// Prepare resolves every dependency in deps and returns an environment
		// in which all of them are available. When any dependency cannot be
		// resolved it returns a *ResolutionError naming all of them and no
		// environment. Calling Prepare again with the same set returns an
		// equal environment.
		Prepare(ctx context.Context, deps DependencySet) (*Environment, error)
	}

	// Options configures a PathProvisioner.
	Options struct {
		// SearchPaths are directories placed ahead of the inherited PATH.
		SearchPaths []string
		// Environ is the base environment. Nil means os.Environ().
		Environ []string
		// WorkDir anchors relative dependency paths. Empty means the
		// current working directory.
		WorkDir string
		// Resolvers replaces DefaultResolvers(PythonInterpreter).
		Resolvers []Resolver
		// PythonInterpreter is the interpreter used for python dependencies.
		PythonInterpreter string
		// Cache, when set, persists resolutions across processes.
		Cache *Cache
		// Logger receives resolution details. Nil discards them.
		Logger *log.Logger
	}

	// PathProvisioner resolves dependencies against a search path derived
	// from the inherited environment.
	PathProvisioner struct {
		base      Scope
		resolvers map[Kind]Resolver
		cache     *Cache
		logger    *log.Logger

		mu   sync.Mutex
		memo map[string]*Environment
	}
)

// NewPathProvisioner returns a provisioner for opts.
func NewPathProvisioner(opts Options) *PathProvisioner {
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	resolvers := opts.Resolvers
	if resolvers == nil {
		resolvers = DefaultResolvers(opts.PythonInterpreter)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	p := &PathProvisioner{
		base:      newScope(workDir, environ, anchor(workDir, opts.SearchPaths)),
		resolvers: make(map[Kind]Resolver, len(resolvers)),
		cache:     opts.Cache,
		logger:    logger,
		memo:      make(map[string]*Environment),
	}
	for _, r := range resolvers {
		p.resolvers[r.Kind()] = r
	}
	return p
}

// Prepare implements Provisioner.
func (p *PathProvisioner) Prepare(ctx context.Context, deps DependencySet) (*Environment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("prepare environment: %w", err)
	}

	type pending struct {
		id  string
		dep Dependency
	}
	var (
		todo    []pending
		missing []MissingDependency
		toolDir []string
	)
	for _, id := range deps.Unique() {
		dep, err := ParseDependency(id)
		if err != nil {
			missing = append(missing, MissingDependency{ID: id, Err: err})
			continue
		}
		if _, ok := p.resolvers[dep.Kind]; !ok {
			missing = append(missing, MissingDependency{ID: id, Err: fmt.Errorf("%w %q", ErrUnknownKind, dep.Kind)})
			continue
		}
		if dep.Kind == KindTool && strings.ContainsRune(dep.Name, '/') {
			toolDir = append(toolDir, filepath.Dir(anchorPath(p.base.Dir(), dep.Name)))
		}
		todo = append(todo, pending{id: id, dep: dep})
	}

	scope := p.base.withToolDirs(toolDir)
	key := p.key(scope, deps)

	p.mu.Lock()
	if env, ok := p.memo[key]; ok {
		p.mu.Unlock()
		p.logger.Debug("environment reused", "key", shortKey(key))
		return env, nil
	}
	p.mu.Unlock()

	cached := p.loadCache(key)
	resolutions := make([]Resolution, 0, len(todo))
	for _, t := range todo {
		r := p.resolvers[t.dep.Kind]
		canon := t.dep.String()
		if loc, ok := cached[canon]; ok && r.Valid(loc) {
			p.logger.Debug("dependency resolved from cache", "dependency", canon, "location", loc)
			resolutions = append(resolutions, Resolution{Dependency: t.dep, ID: t.id, Location: loc, Cached: true})
			continue
		}
		loc, err := r.Resolve(ctx, t.dep, scope)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("prepare environment: %w", ctxErr)
		}
		if err != nil {
			p.logger.Debug("dependency unresolved", "dependency", canon, "error", err)
			missing = append(missing, MissingDependency{ID: t.id, Err: err})
			continue
		}
		p.logger.Debug("dependency resolved", "dependency", canon, "location", loc)
		resolutions = append(resolutions, Resolution{Dependency: t.dep, ID: t.id, Location: loc})
	}

	if len(missing) > 0 {
		return nil, &ResolutionError{Missing: sortMissing(deps, missing)}
	}

	env := &Environment{Scope: scope, key: key, resolutions: resolutions}
	p.storeCache(key, resolutions)

	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.memo[key]; ok {
		return prev, nil
	}
	p.memo[key] = env
	return env, nil
}

// key hashes everything the resolutions depend on: the search path, the
// dependency set and each resolver's configuration.
func (p *PathProvisioner) key(scope Scope, deps DependencySet) string {
	h := sha256.New()
	h.Write([]byte("dir:" + scope.Dir() + "\n"))
	h.Write([]byte("path:" + scope.PATH() + "\n"))
	for _, id := range deps.Unique() {
		canon := id
		if dep, err := ParseDependency(id); err == nil {
			canon = dep.String()
		}
		h.Write([]byte("dep:" + canon + "\n"))
	}
	kinds := make([]string, 0, len(p.resolvers))
	for k := range p.resolvers {
		kinds = append(kinds, string(k))
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		h.Write([]byte("resolver:" + k + "=" + p.resolvers[Kind(k)].Fingerprint() + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (p *PathProvisioner) loadCache(key string) map[string]string {
	if p.cache == nil {
		return nil
	}
	entries, ok, err := p.cache.Load(key)
	if err != nil {
		p.logger.Warn("resolution cache unreadable", "path", p.cache.Path(), "error", err)
		return nil
	}
	if ok {
		p.logger.Debug("resolution cache hit", "key", shortKey(key))
	}
	return entries
}

func (p *PathProvisioner) storeCache(key string, resolutions []Resolution) {
	if p.cache == nil {
		return
	}
	entries := make(map[string]string, len(resolutions))
	for _, r := range resolutions {
		entries[r.Dependency.String()] = r.Location
	}
	if err := p.cache.Store(key, entries); err != nil {
		p.logger.Warn("resolution cache not updated", "path", p.cache.Path(), "error", err)
	}
}

// sortMissing orders missing dependencies by declaration.
func sortMissing(deps DependencySet, missing []MissingDependency) []MissingDependency {
	order := make(map[string]int, deps.Len())
	for i, id := range deps.Unique() {
		order[id] = i
	}
	slices.SortStableFunc(missing, func(a, b MissingDependency) int {
		return order[a.ID] - order[b.ID]
	})
	return missing
}

func anchor(dir string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, anchorPath(dir, p))
	}
	return out
}

func anchorPath(dir, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
