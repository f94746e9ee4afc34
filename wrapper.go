package pydock

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"pydock/internal/output"
	"pydock/internal/scan"
	"pydock/internal/wrapper"
)

// InstallLogName is written into the destination base on every run and read
// back by Uninstall.
const InstallLogName = "install.log"

// SynthesizeAll walks the destination tree (so only files that survived the
// mirror get a launcher) and installs one wrapper per script. Wrappers are
// overwritten unconditionally; a script that moved since the last run leaves
// its old wrapper behind, which is a documented property of the additive
// mirroring model.
func (d *deployer) SynthesizeAll() (installed int, err error) {
	root := d.destBase
	if d.dryRun && !dirExists(root) {
		root = d.sourceRoot //plan against the source when nothing is mirrored yet
	}
	scripts, err := scan.Scripts(root, d.rules)
	if err != nil {
		return 0, newCommandError("destination tree scan failed", err)
	}

	names := wrapper.NewNameSet()
	d.logEntries = nil
	for _, script := range scripts {
		name, nameErr := names.Claim(script, root, d.prefix, d.rules.ScriptSuffix)
		if nameErr != nil {
			d.printer.Out(output.Warning, "Wrapper skipped (%s): %s\n", script, nameErr)
			d.sum.WrappersSkipped++
			continue
		}
		wrapperPath := filepath.Join(d.binDir, name)
		content := wrapper.Content(script)
		if d.dryRun {
			d.printer.Out(output.Normal, "[dry-run] install -m 0755 <wrapper %s> %s\n", name, wrapperPath)
			installed++
			continue
		}
		if installErr := d.installWrapper(wrapperPath, content); installErr != nil {
			d.printer.Out(output.Warning, "Wrapper %s not installed: %s\n", name, installErr)
			d.sum.WrappersSkipped++
			continue
		}
		d.printer.Out(output.Verbose, "Wrapper installed: %s\n", wrapperPath)
		d.logEntries = append(d.logEntries, fmt.Sprintf("%s -> %s", name, script))
		installed++
	}

	d.sum.WrappersInstalled = installed
	d.printer.Out(output.Normal, "Wrappers installed: %d\n", installed)

	if !d.dryRun {
		if logErr := d.writeInstallLog(); logErr != nil {
			d.printer.Out(output.Warning, "Install log not written: %s\n", logErr)
		}
	}
	return installed, nil
}

// installWrapper stages the content in a temporary file and moves it into
// place with the executable bits set. Writable binary directories get an
// atomic in-directory rename; otherwise (or always, under ElevateAlways) the
// move goes through elevated install.
func (d *deployer) installWrapper(wrapperPath string, content string) error {
	binDir := filepath.Dir(wrapperPath)

	if d.elevation != ElevateAlways {
		if err := os.MkdirAll(binDir, 0o755); err != nil && !os.IsPermission(err) {
			return err
		}
		staged, err := os.CreateTemp(binDir, ".pydock-stage-*")
		if err == nil {
			defer os.Remove(staged.Name()) //no-op after successful rename
			if _, err := staged.WriteString(content); err != nil {
				staged.Close()
				return err
			}
			if err := staged.Chmod(0o755); err != nil {
				staged.Close()
				return err
			}
			if err := staged.Close(); err != nil {
				return err
			}
			return os.Rename(staged.Name(), wrapperPath)
		}
		//binary directory not writable, try elevation below
	}

	staged, err := os.CreateTemp("", "pydock-stage-*")
	if err != nil {
		return err
	}
	defer os.Remove(staged.Name())
	if _, err := staged.WriteString(content); err != nil {
		staged.Close()
		return err
	}
	if err := staged.Close(); err != nil {
		return err
	}
	elevate := exec.Command("sudo", "install", "-m", "0755", staged.Name(), wrapperPath)
	elevate.Stdin = os.Stdin
	elevate.Stderr = os.Stderr
	if err := elevate.Run(); err != nil {
		return fmt.Errorf("no write access to %s and elevation unavailable: %w", binDir, err)
	}
	return nil
}

func (d *deployer) writeInstallLog() error {
	entries := append([]string(nil), d.logEntries...)
	sort.Strings(entries)
	var log strings.Builder
	fmt.Fprintf(&log, "%s (run %s)\n", wrapper.Marker, d.runId)
	for _, entry := range entries {
		fmt.Fprintf(&log, "%s\n", entry)
	}
	return os.WriteFile(filepath.Join(d.destBase, InstallLogName), []byte(log.String()), 0o644)
}
