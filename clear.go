package pydock

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"pydock/internal/output"
	"pydock/internal/wrapper"
)

// maxWrapperProbeSize bounds how much of a binary-directory entry is read
// when probing for the marker comment.
const maxWrapperProbeSize = 64 * 1024

// Clear performs a cleaned reinstallation: previously mirrored subtrees under
// the destination base and previously generated wrappers are removed, each
// batch confirmed through the callback. Paths resolving to a protected root
// are refused unconditionally.
func (d *deployer) Clear(choice RequestChoice) error {
	d.printer.Out(output.Normal, "Starting cleaned reinstallation (clear).\n")

	var removals []string
	entries, readErr := os.ReadDir(d.destBase)
	if readErr != nil && !os.IsNotExist(readErr) {
		return newCommandError("destination base inaccessible", readErr)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			removals = append(removals, filepath.Join(d.destBase, entry.Name()))
		}
	}
	sort.Strings(removals)

	if len(removals) == 0 {
		d.printer.Out(output.Normal, "Nothing mirrored under %s, no subtrees to remove.\n", d.destBase)
	} else {
		d.printer.Out(output.Normal, "Marked for removal under %s:\n", d.destBase)
		for _, path := range removals {
			d.printer.Out(output.Required, "  %s\n", path)
		}
		switch choice(fmt.Sprintf("Remove %d mirrored %s?", len(removals), output.Plural(len(removals), "subtree", "subtrees")), []string{"Yes", "No"}, false) {
		case "Yes":
			for _, path := range removals {
				d.safeRemoveTree(path)
			}
		case ChoiceAborted:
			return newCommandError("clear aborted", nil)
		default:
			d.printer.Out(output.Warning, "Removal of mirrored subtrees skipped.\n")
		}
	}

	return d.clearWrappers(choice)
}

func (d *deployer) clearWrappers(choice RequestChoice) error {
	entries, err := os.ReadDir(d.binDir)
	if err != nil {
		if os.IsNotExist(err) {
			d.printer.Out(output.Normal, "Binary directory does not exist yet, no wrappers to remove.\n")
			return nil
		}
		return newCommandError("binary directory inaccessible", err)
	}

	d.printer.Out(output.Normal, "Checking wrappers in %s (only marked ones are removed)...\n", d.binDir)
	for _, entry := range entries {
		path := filepath.Join(d.binDir, entry.Name())
		if !d.isGeneratedWrapper(path, entry) {
			continue
		}
		switch choice(fmt.Sprintf("Remove wrapper %s?", path), []string{"Yes", "No"}, false) {
		case "Yes":
			d.safeRemoveFile(path)
		case ChoiceAborted:
			return newCommandError("clear aborted", nil)
		default:
			d.printer.Out(output.Warning, "Kept: %s\n", path)
		}
	}
	return nil
}

func (d *deployer) isGeneratedWrapper(path string, entry os.DirEntry) bool {
	info, err := entry.Info()
	if err != nil || !info.Mode().IsRegular() || info.Mode()&0o111 == 0 {
		return false
	}
	file, err := os.Open(path)
	if err != nil {
		d.printer.Out(output.Warning, "Cannot probe wrapper candidate (%s): %s\n", path, err)
		return false
	}
	defer file.Close()
	probe := make([]byte, maxWrapperProbeSize)
	n, _ := file.Read(probe)
	return wrapper.IsGenerated(string(probe[:n]))
}

// isProtectedRoot guards against catastrophic removals. This check is a hard
// safety invariant and cannot be bypassed by flags.
func isProtectedRoot(path string) bool {
	clean := filepath.Clean(path)
	if clean == string(filepath.Separator) || clean == "/root" {
		return true
	}
	if home, err := os.UserHomeDir(); err == nil && clean == filepath.Clean(home) {
		return true
	}
	return false
}

func (d *deployer) safeRemoveTree(path string) {
	if path == "" || isProtectedRoot(path) {
		d.printer.Out(output.Error, "Refused: guard prevents removal of %q.\n", path)
		return
	}
	if d.dryRun {
		d.printer.Out(output.Normal, "[dry-run] rm -rf -- %s\n", path)
		return
	}
	if err := os.RemoveAll(path); err != nil {
		d.printer.Out(output.Warning, "Removal failed (%s): %s\n", path, err)
		return
	}
	d.printer.Out(output.Normal, "Removed: %s\n", path)
}

func (d *deployer) safeRemoveFile(path string) {
	if path == "" || isProtectedRoot(path) {
		d.printer.Out(output.Error, "Refused: guard prevents removal of %q.\n", path)
		return
	}
	if d.dryRun {
		d.printer.Out(output.Normal, "[dry-run] rm -f -- %s\n", path)
		return
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			d.printer.Out(output.Verbose, "Already gone: %s\n", path)
			return
		}
		d.printer.Out(output.Warning, "Removal failed (%s): %s\n", path, err)
		return
	}
	d.printer.Out(output.Normal, "Removed: %s\n", path)
}
