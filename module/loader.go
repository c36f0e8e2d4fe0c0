// Package module implements SQALE's module loader: path resolution
// against a fixed search order plus SQALE_PATH, an import cache keyed by
// resolved path, and per-module arena retention so a loaded module's data
// outlives the call to `import` that brought it in.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/sqale-lang/sqale/arena"
	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/env"
	"github.com/sqale-lang/sqale/parser"
)

// Pipeline runs the full expand, check, eval sequence (package vm's
// responsibility) over a freshly parsed module's top-level forms in the
// global environment, with the module's own arena kept alive for as long
// as the module's data is.
type Pipeline func(top *ast.Node, globalEnv *env.Env, a *arena.Arena) error

// defaultSearchDirs is the fixed search order, before SQALE_PATH.
var defaultSearchDirs = []string{"./", "packages/", "std/", "sqale/packages/", "sqale/std/"}

// Loader resolves and imports SQALE source files.
type Loader struct {
	searchDirs []string
	imported   map[string]bool
	arenas     []*arena.Arena
	globalEnv  *env.Env
	pipeline   Pipeline
}

// NewLoader builds a Loader whose search path is defaultSearchDirs plus
// every colon-separated entry of SQALE_PATH.
func NewLoader(globalEnv *env.Env, pipeline Pipeline) *Loader {
	dirs := append([]string{}, defaultSearchDirs...)

	if extra := os.Getenv("SQALE_PATH"); extra != "" {
		for _, d := range strings.Split(extra, ":") {
			if d != "" {
				dirs = append(dirs, d)
			}
		}
	}

	return &Loader{
		searchDirs: dirs,
		imported:   make(map[string]bool),
		globalEnv:  globalEnv,
		pipeline:   pipeline,
	}
}

// splitVersion separates an optional `@version` suffix (e.g.
// `collections@v1.2.0`) from a dotted module name, using
// golang.org/x/mod/semver to validate the suffix the same way it
// validates Go module version strings.
func splitVersion(spec string) (name, version string) {
	if idx := strings.LastIndex(spec, "@"); idx >= 0 && semver.IsValid(spec[idx+1:]) {
		return spec[:idx], spec[idx+1:]
	}

	return spec, ""
}

// Resolve turns an import spec into an absolute file path: a literal
// path when it contains '/' or ends in .sq, otherwise a dotted module
// name looked up across the search directories.
func (l *Loader) Resolve(spec string) (string, error) {
	name, version := splitVersion(spec)

	if strings.Contains(name, "/") || strings.HasSuffix(name, ".sq") {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("module path %q not found", name)
		}

		return filepath.Abs(name)
	}

	rel := strings.ReplaceAll(name, ".", "/") + ".sq"

	for _, dir := range l.searchDirs {
		candidate := filepath.Join(dir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}

	if version != "" {
		return "", fmt.Errorf("module %q (version %s) not found in search path", name, version)
	}

	return "", fmt.Errorf("module %q not found in search path", name)
}

// Import resolves, reads, parses and runs spec through the pipeline, once
// per resolved path.
func (l *Loader) Import(spec string) error {
	path, err := l.Resolve(spec)
	if err != nil {
		return err
	}

	if l.imported[path] {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Each module gets its own arena holding its raw source bytes for the
	// module's lifetime. Only the []byte copy is arena-backed: converting
	// to string for the parser copies again (Go strings are immutable and
	// never alias the arena), so the parsed tree and its string payloads
	// are owned by Go's GC, not by Reset.
	a := arena.New(0)
	l.arenas = append(l.arenas, a)

	src := a.Bytes(data)

	top, err := parser.New(path, string(src)).ParseTopLevel()
	if err != nil {
		return err
	}

	// Mark imported before running the pipeline so a module that (directly
	// or transitively) imports itself does not recurse forever.
	l.imported[path] = true

	return l.pipeline(top, l.globalEnv, a)
}

// Arenas returns every arena retained by a module imported so far.
func (l *Loader) Arenas() []*arena.Arena { return l.arenas }
