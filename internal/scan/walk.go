package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
)

// Walk visits every file below root that survives rule filtering.
// Pruning is evaluated before descending so that excluded subtrees are never
// entered. A visitor error aborts the walk, walk errors on single entries are
// passed to the visitor's discretion via filepath.WalkDir semantics.
func Walk(root string, rules Rules, visit func(absolutePath string, name string) error) error {
	if rules.PruneDir(root) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if path != root && rules.PruneDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if rules.SkipFile(entry.Name()) {
			return nil
		}
		return visit(path, entry.Name())
	})
}

// Scripts collects all script files below root in deterministic order.
func Scripts(root string, rules Rules) (paths []string, err error) {
	err = Walk(root, rules, func(absolutePath string, name string) error {
		if rules.IsScript(name) {
			paths = append(paths, absolutePath)
		}
		return nil
	})
	sort.Strings(paths)
	return
}

// Manifests collects all dependency manifests below root in deterministic order.
func Manifests(root string, rules Rules) (paths []string, err error) {
	err = Walk(root, rules, func(absolutePath string, name string) error {
		if rules.IsManifest(name) {
			paths = append(paths, absolutePath)
		}
		return nil
	})
	sort.Strings(paths)
	return
}

// Dirs collects root and all non-pruned directories below it.
func Dirs(root string, rules Rules) (dirs []string, err error) {
	if rules.PruneDir(root) {
		return nil, nil
	}
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && rules.PruneDir(path) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return
}
