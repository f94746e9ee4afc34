// Package manifest reads per-directory dependency manifests.
// Each non-blank line that does not start with '#' names one installable
// package, optionally with a version constraint (e.g. "rich==13.7.1").
package manifest

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Parse filters the manifest text down to the effective package specifiers,
// preserving their order. Blank lines and comment lines are dropped, leading
// and trailing whitespace is trimmed.
func Parse(reader io.Reader) (specifiers []string, err error) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specifiers = append(specifiers, line)
	}
	err = scanner.Err()
	return
}

// Load reads and parses the manifest file at the given path.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}
