package pydock

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pydock/internal/output"
	"pydock/internal/scan"
)

func (d *deployer) Mirror() (copied int, err error) {
	scripts, err := scan.Scripts(d.sourceRoot, d.rules)
	if err != nil {
		return 0, newCommandError("source tree scan failed", err)
	}
	if len(scripts) == 0 {
		d.printer.Out(output.Warning, "No scripts found after exclusions.\n")
	}

	for _, source := range scripts {
		relative, relErr := filepath.Rel(d.sourceRoot, source)
		if relErr != nil || strings.HasPrefix(relative, "..") {
			d.printer.Out(output.Warning, "Skipping file outside source tree: %s\n", source)
			continue
		}
		destination := filepath.Join(d.destBase, relative)
		if d.dryRun {
			d.printer.Out(output.Verbose, "[dry-run] mkdir -p -- %s\n", filepath.Dir(destination))
			d.printer.Out(output.Normal, "[dry-run] cp -f -- %s %s\n", source, destination)
			copied++
			continue
		}
		if copyErr := copyFile(source, destination); copyErr != nil {
			d.printer.Out(output.Warning, "Copy failed (%s): %s\n", relative, copyErr)
			d.sum.CopyFailures++
			continue
		}
		d.printer.Out(output.Verbose, "Copied %s\n", relative)
		copied++
	}

	d.sum.FilesCopied = copied
	d.printer.Out(output.Normal, "Copied %d %s to %s\n", copied, output.Plural(copied, "script", "scripts"), d.destBase)
	return copied, nil
}

// copyFile overwrites the destination unconditionally (last-writer-wins, no
// diffing) and carries the source's permission bits over.
func copyFile(source string, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write incomplete: %w", err)
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
