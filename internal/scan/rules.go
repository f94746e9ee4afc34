package scan

import (
	"os"
	"path/filepath"
	"strings"
)

// Rules decides which filesystem entries take part in a deployment.
// A pruned directory is never descended into, so nothing beneath it is
// considered either.
type Rules struct {
	PruneDirs    map[string]bool //directory names that are always pruned
	Marker       string          //substring in a file or directory name that opts the entry out
	Sentinel     string          //name of a per-directory opt-out file
	ScriptSuffix string
	ManifestName string
}

// DefaultRules matches the managed tree layout: version control metadata,
// bytecode caches, and existing environments are pruned, ".name" acts as both
// the name marker and the per-directory sentinel.
func DefaultRules() Rules {
	return Rules{
		PruneDirs: map[string]bool{
			".git":        true,
			"__pycache__": true,
			"venv":        true,
			".venv":       true,
			".archive":    true,
		},
		Marker:       ".name",
		Sentinel:     ".name",
		ScriptSuffix: ".py",
		ManifestName: "venv.txt",
	}
}

func (r Rules) PruneDir(absolutePath string) bool {
	name := filepath.Base(absolutePath)
	if r.PruneDirs[name] || strings.Contains(name, r.Marker) {
		return true
	}
	_, err := os.Stat(filepath.Join(absolutePath, r.Sentinel))
	return err == nil
}

func (r Rules) SkipFile(name string) bool {
	return strings.Contains(name, r.Marker)
}

func (r Rules) IsScript(name string) bool {
	return !r.SkipFile(name) && strings.HasSuffix(name, r.ScriptSuffix)
}

func (r Rules) IsManifest(name string) bool {
	return !r.SkipFile(name) && name == r.ManifestName
}
