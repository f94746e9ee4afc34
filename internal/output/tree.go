package output

import (
	"path/filepath"

	"github.com/disiqueira/gotree/v3"
)

// PlanTree renders the planned (or actual) destination tree of a deployment.
type PlanTree struct {
	tree gotree.Tree
	dirs map[string]gotree.Tree
}

func NewPlanTree(rootLabel string) PlanTree {
	return PlanTree{tree: gotree.New(rootLabel), dirs: make(map[string]gotree.Tree)}
}

func (t PlanTree) getDir(dirPath string) (dir gotree.Tree) {
	if dirPath == "." {
		return t.tree
	}
	dir = t.dirs[dirPath]
	if dir == nil {
		parent := t.getDir(filepath.Dir(dirPath))
		dir = parent.Add(filepath.Base(dirPath))
		t.dirs[dirPath] = dir
	}
	return
}

// InsertFile adds a file by its path relative to the tree root, with an
// optional annotation appended (e.g. the wrapper name it will receive).
func (t PlanTree) InsertFile(relativePath string, annotation string) {
	dir := t.getDir(filepath.Dir(relativePath))
	label := filepath.Base(relativePath)
	if annotation != "" {
		label += " " + annotation
	}
	dir.Add(label)
}

// AnnotateDir attaches a child node to a directory, used to mark planned
// environments.
func (t PlanTree) AnnotateDir(relativeDirPath string, label string) {
	t.getDir(relativeDirPath).Add(label)
}

func (t PlanTree) Render() string {
	return t.tree.Print()
}
