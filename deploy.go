package pydock

import (
	"os"
	"path/filepath"
	"strings"

	"pydock/internal/output"
	"pydock/internal/pyenv"
	"pydock/internal/scan"
	"pydock/internal/wrapper"
)

// Deploy runs the full pipeline: mirror, provision, synthesize. The required
// external tooling is checked up front so a missing interpreter aborts before
// any mutation. Everything downstream follows best-effort semantics, the
// summary is printed regardless of partial failures.
func (d *deployer) Deploy() (Summary, error) {
	if d.needsTool && !d.dryRun {
		if err := pyenv.CheckAvailable(""); err != nil {
			return d.sum, newCommandError("precondition failed", err)
		}
	}

	d.printer.Out(output.Normal, "Source tree:      %s\n", d.sourceRoot)
	d.printer.Out(output.Normal, "Destination base: %s\n", d.destBase)
	d.printer.Out(output.Normal, "Binary directory: %s\n", d.binDir)
	if d.dryRun {
		d.printer.Out(output.Normal, "Mode: dry run (no changes)\n")
	}

	if !d.dryRun {
		if err := os.MkdirAll(d.destBase, 0o755); err != nil {
			return d.sum, newCommandError("cannot create destination base", err)
		}
	}

	if _, err := d.Mirror(); err != nil {
		return d.sum, err
	}
	if _, err := d.ProvisionAll(); err != nil {
		return d.sum, err
	}
	if _, err := d.SynthesizeAll(); err != nil {
		return d.sum, err
	}

	d.printSummary()
	return d.sum, nil
}

func (d *deployer) printSummary() {
	mode := "executed"
	if d.dryRun {
		mode = "dry run (no changes)"
	}
	d.printer.Out(output.Summary, "Overview:\n")
	d.printer.Out(output.Summary, "  Mode:               %s\n", mode)
	d.printer.Out(output.Summary, "  Scripts copied:     %d (%d failed)\n", d.sum.FilesCopied, d.sum.CopyFailures)
	d.printer.Out(output.Summary, "  New environments:   %d (%d reused, %d failed)\n", d.sum.EnvsCreated, d.sum.EnvsReused, d.sum.EnvFailures)
	d.printer.Out(output.Summary, "  Wrappers installed: %d (%d skipped)\n", d.sum.WrappersInstalled, d.sum.WrappersSkipped)
}

// Plan renders what a deployment would put into the destination tree: every
// mirrored script with the wrapper name it would receive and every directory
// that would get an environment.
func (d *deployer) Plan() (string, error) {
	scripts, err := scan.Scripts(d.sourceRoot, d.rules)
	if err != nil {
		return "", newCommandError("source tree scan failed", err)
	}
	manifests, err := scan.Manifests(d.sourceRoot, d.rules)
	if err != nil {
		return "", newCommandError("manifest discovery failed", err)
	}

	tree := output.NewPlanTree(d.destBase)
	names := wrapper.NewNameSet()
	for _, script := range scripts {
		relative, relErr := filepath.Rel(d.sourceRoot, script)
		if relErr != nil || strings.HasPrefix(relative, "..") {
			continue
		}
		annotation := "[wrapper skipped: name conflict]"
		if name, nameErr := names.Claim(script, d.sourceRoot, d.prefix, d.rules.ScriptSuffix); nameErr == nil {
			annotation = "-> " + name
		}
		tree.InsertFile(relative, annotation)
	}
	for _, manifestPath := range manifests {
		relativeDir, relErr := filepath.Rel(d.sourceRoot, filepath.Dir(manifestPath))
		if relErr != nil || strings.HasPrefix(relativeDir, "..") {
			continue
		}
		tree.AnnotateDir(relativeDir, pyenv.EnvDirName+" [environment]")
	}
	return tree.Render(), nil
}
