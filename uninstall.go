package pydock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pydock/internal/output"
)

// Uninstall removes the wrappers recorded in the install log of the last
// deployment and then the destination base itself. Everything is gated by the
// confirmation callback and the protected-root guard.
func (d *deployer) Uninstall(choice RequestChoice) error {
	logPath := filepath.Join(d.destBase, InstallLogName)
	names, err := readInstallLog(logPath)
	if err != nil {
		d.printer.Out(output.Warning, "Install log unusable (%s): %s\n", logPath, err)
	}
	if len(names) == 0 {
		d.printer.Out(output.Normal, "No wrapper entries on record, only the destination tree will be removed.\n")
	} else {
		switch choice(fmt.Sprintf("Remove %d %s from %s?", len(names), output.Plural(len(names), "wrapper", "wrappers"), d.binDir), []string{"Yes", "No"}, false) {
		case "Yes":
			for _, name := range names {
				d.safeRemoveFile(filepath.Join(d.binDir, name))
			}
		case ChoiceAborted:
			return newCommandError("uninstall aborted", nil)
		default:
			d.printer.Out(output.Warning, "Wrapper removal skipped.\n")
		}
	}

	switch choice(fmt.Sprintf("Remove destination tree %s?", d.destBase), []string{"Yes", "No"}, false) {
	case "Yes":
		d.safeRemoveTree(d.destBase)
	case ChoiceAborted:
		return newCommandError("uninstall aborted", nil)
	default:
		d.printer.Out(output.Warning, "Destination tree kept.\n")
	}
	return nil
}

// readInstallLog extracts the wrapper names from "name -> target" lines.
// Lines without the arrow (header, noise) are ignored.
func readInstallLog(path string) (names []string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	for _, line := range strings.Split(string(raw), "\n") {
		name, _, found := strings.Cut(line, "->")
		if !found {
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
