package wrapper

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker identifies generated wrappers. Clear and uninstall only ever touch
// executables carrying this comment.
const Marker = "# managed by pydock"

// FallbackInterpreter launches the target when no isolated environment is
// found on the upward walk.
const FallbackInterpreter = "python3"

// Content renders the launcher for the given target script. The result is a
// pure function of the target path, so regenerating a wrapper is
// byte-identical as long as the script has not moved.
//
// The emitted script performs the runtime interpreter resolution: starting at
// the target's directory it walks upward until an environment interpreter is
// found, stopping at the filesystem root, a repo-root marker, or the step
// bound, and finally execs the chosen interpreter with all arguments
// forwarded.
func Content(scriptAbsolutePath string) string {
	return strings.Join([]string{
		"#!/usr/bin/env bash",
		"set -euo pipefail",
		Marker,
		"SCRIPT_PATH=" + ShellQuote(scriptAbsolutePath),
		`dir="$(dirname "$SCRIPT_PATH")"`,
		`py=` + FallbackInterpreter,
		"steps=0",
		"while :; do",
		`  if [ -x "$dir/.venv/bin/python" ]; then`,
		`    py="$dir/.venv/bin/python"`,
		"    break",
		"  fi",
		fmt.Sprintf(`  if [ "$dir" = "/" ] || [ -e "$dir/%s" ] || [ "$steps" -ge %d ]; then`, RootMarkerName, MaxSearchSteps),
		"    break",
		"  fi",
		`  dir="$(dirname "$dir")"`,
		"  steps=$((steps+1))",
		"done",
		`exec "$py" "$SCRIPT_PATH" "$@"`,
		"",
	}, "\n")
}

// IsGenerated reports whether the given wrapper content carries the marker.
func IsGenerated(content string) bool {
	return strings.Contains(content, Marker)
}

var shellSafe = regexp.MustCompile(`^[a-zA-Z0-9_./-]+$`)

// ShellQuote wraps a string so that paths containing spaces or shell
// metacharacters survive bash parsing unchanged.
func ShellQuote(value string) string {
	if value == "" {
		return "''"
	}
	if shellSafe.MatchString(value) {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
