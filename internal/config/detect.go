package config

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DetectProjectName tries to infer the project name from the go.mod in
// dir, falling back to the directory base name. Errors from the
// manifest are silently ignored.
func DetectProjectName(dir string) string {
	if name := detectFromGoMod(dir); name != "" {
		return name
	}
	return filepath.Base(dir)
}

// detectFromGoMod returns the last element of the module path declared
// in dir/go.mod.
func detectFromGoMod(dir string) string {
	f, err := os.Open(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		modulePath := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		modulePath = strings.Trim(modulePath, `"`)
		if modulePath == "" {
			return ""
		}
		return path.Base(modulePath)
	}
	return ""
}
