package converter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Matches: use <file.scad>, include <file.scad>, use <./file.scad>, etc.
var scadImport = regexp.MustCompile(`^\s*(?:use|include)\s*<([^>]+)>`)

// resolveScadDependencies walks use and include statements from scadFile.
// Files already visited are skipped, so circular imports terminate.
func resolveScadDependencies(workDir, scadFile string) ([]string, error) {
	visited := make(map[string]bool)
	var deps []string

	var walk func(string) error
	walk = func(file string) error {
		if visited[file] {
			return nil
		}
		visited[file] = true
		deps = append(deps, file)

		imports, err := parseScadImports(workDir, file)
		if err != nil {
			return err
		}
		for _, dep := range imports {
			if err := walk(dep); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(scadFile); err != nil {
		return nil, err
	}
	return deps, nil
}

func parseScadImports(workDir, scadFile string) ([]string, error) {
	file, err := os.Open(scadFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", scadFile, err)
	}
	defer file.Close()

	var deps []string
	scanner := bufio.NewScanner(file)
	scadDir := filepath.Dir(scadFile)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		if matches := scadImport.FindStringSubmatch(line); len(matches) > 1 {
			deps = append(deps, resolveScadPath(workDir, matches[1], scadDir))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", scadFile, err)
	}
	return deps, nil
}

// resolveScadPath resolves an import against the importing file's
// directory, falling back to the work directory.
func resolveScadPath(workDir, depPath, currentDir string) string {
	if strings.HasPrefix(depPath, "./") || strings.HasPrefix(depPath, "../") {
		return filepath.Clean(filepath.Join(currentDir, depPath))
	}

	absPath := filepath.Join(currentDir, depPath)
	if _, err := os.Stat(absPath); err == nil {
		return filepath.Clean(absPath)
	}
	return filepath.Clean(filepath.Join(workDir, depPath))
}
