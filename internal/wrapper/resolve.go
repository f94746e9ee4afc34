package wrapper

import (
	"os"
	"path/filepath"

	"pydock/internal/pyenv"
)

// RootMarkerName is the zero-byte sentinel that bounds the upward environment
// search (and keeps destructive operations inside the managed tree).
const RootMarkerName = ".pydock-root"

// MaxSearchSteps bounds the upward walk for pathologically deep trees.
const MaxSearchSteps = 64

// Resolve determines the interpreter a wrapper would pick for a script living
// in startDir. The walk checks each directory for an environment interpreter
// first; only then do the termination conditions apply (filesystem root,
// repo-root marker, step bound), so a marked directory still gets its own
// environment considered. The filesystem is only touched through the two
// predicates, which keeps the algorithm exhaustively testable.
func Resolve(startDir string, isStop func(dir string) bool, hasInterpreter func(dir string) bool, fallback string, maxSteps int) string {
	dir := startDir
	for steps := 0; ; steps++ {
		if hasInterpreter(dir) {
			return pyenv.InterpreterPath(filepath.Join(dir, pyenv.EnvDirName))
		}
		parent := filepath.Dir(dir)
		if parent == dir || isStop(dir) || (maxSteps > 0 && steps >= maxSteps) {
			return fallback
		}
		dir = parent
	}
}

// ResolveOnDisk runs the resolution algorithm against the real filesystem,
// mirroring exactly what the generated bash wrapper does at invocation time.
func ResolveOnDisk(scriptPath string, fallback string) string {
	if fallback == "" {
		fallback = FallbackInterpreter
	}
	isStop := func(dir string) bool {
		_, err := os.Stat(filepath.Join(dir, RootMarkerName))
		return err == nil
	}
	hasInterpreter := func(dir string) bool {
		info, err := os.Stat(pyenv.InterpreterPath(filepath.Join(dir, pyenv.EnvDirName)))
		return err == nil && !info.IsDir() && info.Mode()&0o111 != 0
	}
	return Resolve(filepath.Dir(scriptPath), isStop, hasInterpreter, fallback, MaxSearchSteps)
}
