package bayan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/msto63/bayan/foundation/bayan/compiler"
	"github.com/msto63/bayan/foundation/bayan/runtime"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
)

// SourceExtension is appended to import paths without an extension
const SourceExtension = ".bayan"

// moduleLoader resolves, compiles and instantiates imported modules.
// Compiled units live in the engine's module cache; instantiated
// exports live for the session so each module runs once.
type moduleLoader struct {
	engine  *Engine
	loaded  map[string]map[string]runtime.Value
	loading map[string]bool
}

func newModuleLoader(e *Engine) *moduleLoader {
	m := &moduleLoader{engine: e}
	m.reset()
	return m
}

func (m *moduleLoader) reset() {
	m.loaded = make(map[string]map[string]runtime.Value)
	m.loading = make(map[string]bool)
}

// load implements runtime.Importer
func (m *moduleLoader) load(ctx context.Context, from, path string) (map[string]runtime.Value, error) {
	abs, err := m.resolve(from, path)
	if err != nil {
		return nil, err
	}
	if exports, ok := m.loaded[abs]; ok {
		return exports, nil
	}
	if m.loading[abs] {
		return nil, mdwerror.Newf("import cycle: %s imports %s while it is still loading", displayName(from), path).
			WithCode(mdwerror.CodeImport).
			WithDetail("path", abs)
	}
	m.loading[abs] = true
	defer delete(m.loading, abs)

	unit, err := m.compiled(abs)
	if err != nil {
		return nil, err
	}

	e := m.engine
	timer := e.logger.StartTimer("module").WithField("path", abs)
	env := runtime.NewEnv(e.interp.Builtins)
	if _, err := unit.Run(e.interp, env); err != nil {
		timer.Stop()
		return nil, mdwerror.Wrap(surfaceThrow(err), fmt.Sprintf("module %s failed", path)).
			WithDetail("module", abs)
	}
	timer.Stop()

	exports := make(map[string]runtime.Value, len(unit.Exports))
	for _, name := range unit.Exports {
		if v, ok := env.Get(name); ok {
			exports[name] = v
		}
	}
	m.loaded[abs] = exports
	return exports, nil
}

// compiled returns the unit for abs, compiling it on a cache miss. The
// cache key carries the modification time so edited files recompile.
func (m *moduleLoader) compiled(abs string) (*compiler.Unit, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return nil, mdwerror.Wrap(err, "cannot stat module").WithCode(mdwerror.CodeImport)
	}
	key := fmt.Sprintf("%s@%d", abs, info.ModTime().UnixNano())

	e := m.engine
	v, err := e.options.ModuleCache.GetOrSet(key, func() (interface{}, error) {
		src, err := os.ReadFile(abs)
		if err != nil {
			return nil, mdwerror.Wrap(err, "cannot read module").WithCode(mdwerror.CodeImport)
		}
		prog, err := e.parser.Parse(string(src))
		if err != nil {
			return nil, mdwerror.Wrap(err, "module "+abs+" has errors").WithDetail("module", abs)
		}
		prog.Name = abs
		if stale := e.options.ModuleCache.DeletePrefix(abs + "@"); stale > 0 {
			e.logger.Debug("dropped stale module versions", mdwlog.Fields{"path": abs, "count": stale})
		}
		e.logger.Debug("compiling module", mdwlog.Fields{"path": abs})
		return e.Compile(prog)
	})
	if err != nil {
		return nil, err
	}
	return v.(*compiler.Unit), nil
}

// resolve maps an import path to an existing file. Relative paths are
// tried next to the importing file first, then in each module path.
func (m *moduleLoader) resolve(from, path string) (string, error) {
	if filepath.Ext(path) == "" {
		path += SourceExtension
	}

	var candidates []string
	if filepath.IsAbs(path) {
		candidates = append(candidates, path)
	} else {
		if from != "" && filepath.IsAbs(from) {
			candidates = append(candidates, filepath.Join(filepath.Dir(from), path))
		} else if wd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(wd, path))
		}
		for _, dir := range m.engine.options.ModulePaths {
			candidates = append(candidates, filepath.Join(dir, path))
		}
	}

	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return abs, nil
		}
	}
	return "", mdwerror.Newf("module %q not found", path).
		WithCode(mdwerror.CodeImport).
		WithDetail("searched", strings.Join(candidates, string(os.PathListSeparator)))
}

func displayName(name string) string {
	if name == "" {
		return "<main>"
	}
	return filepath.Base(name)
}
