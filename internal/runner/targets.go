package runner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/LISSConsulting/LISSTech.Watchman/internal/watch"
)

// targets resolves the package patterns for one run. An empty slice
// means nothing matched and the run completes without spawning.
func (g *GoTest) targets(cfg watch.RunConfig) ([]string, error) {
	if cfg.TestPathPattern != "" {
		return g.pathPatternTargets(cfg)
	}
	if cfg.OnlyChanged && !cfg.WatchAll {
		return g.changedTargets(cfg)
	}
	return []string{"./..."}, nil
}

// pathPatternTargets walks the root directory for packages whose test
// files match the configured path pattern.
func (g *GoTest) pathPatternTargets(cfg watch.RunConfig) ([]string, error) {
	re, err := regexp.Compile(cfg.TestPathPattern)
	if err != nil {
		return nil, fmt.Errorf("runner: path pattern %q: %w", cfg.TestPathPattern, err)
	}

	root := cfg.RootDir
	if root == "" {
		root = "."
	}

	dirs := make(map[string]bool)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && skipDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, "_test.go") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if re.MatchString(rel) {
			dirs[filepath.ToSlash(filepath.Dir(rel))] = true
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("runner: scan %s: %w", root, walkErr)
	}

	return packagePatterns(dirs), nil
}

// changedTargets maps files touched since the last commit to their
// enclosing packages. With no change detector the full suite runs.
func (g *GoTest) changedTargets(cfg watch.RunConfig) ([]string, error) {
	if g.Git == nil {
		return []string{"./..."}, nil
	}

	changed, err := g.Git.ChangedFiles()
	if err != nil {
		return nil, fmt.Errorf("runner: detect changes: %w", err)
	}
	if len(changed) == 0 {
		// Clean tree: scope to whatever the last commit touched.
		changed, err = g.Git.LastCommitFiles()
		if err != nil {
			return nil, fmt.Errorf("runner: detect changes: %w", err)
		}
	}

	dirs := make(map[string]bool)
	for _, file := range changed {
		if !strings.HasSuffix(file, ".go") {
			continue
		}
		dirs[filepath.ToSlash(filepath.Dir(file))] = true
	}

	return packagePatterns(dirs), nil
}

// packagePatterns converts relative directories into sorted go package
// patterns.
func packagePatterns(dirs map[string]bool) []string {
	if len(dirs) == 0 {
		return nil
	}
	pkgs := make([]string, 0, len(dirs))
	for dir := range dirs {
		if dir == "." {
			pkgs = append(pkgs, ".")
			continue
		}
		pkgs = append(pkgs, "./"+dir)
	}
	sort.Strings(pkgs)
	return pkgs
}

// skipDir filters directories the toolchain would not build anyway.
func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
