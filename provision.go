package pydock

import (
	"os"
	"path/filepath"
	"strings"

	"pydock/internal/manifest"
	"pydock/internal/output"
	"pydock/internal/pyenv"
	"pydock/internal/scan"
)

// ProvisionAll discovers dependency manifests in the source tree (same
// exclusions as mirroring) and ensures each mirrored directory has its
// environment created and synced. Environment creation happens at most once
// per directory across runs, package installation is re-issued every run and
// left to the installer to converge.
func (d *deployer) ProvisionAll() (created int, err error) {
	manifests, err := scan.Manifests(d.sourceRoot, d.rules)
	if err != nil {
		return 0, newCommandError("manifest discovery failed", err)
	}
	if len(manifests) == 0 {
		d.printer.Out(output.Normal, "No manifests found, skipping environment provisioning.\n")
		return 0, nil
	}
	d.printer.Out(output.Normal, "Found %d %s\n", len(manifests), output.Plural(len(manifests), "manifest", "manifests"))

	for _, manifestPath := range manifests {
		if d.provision(manifestPath) {
			created++
		}
	}

	d.sum.EnvsCreated = created
	if created > 0 {
		d.printer.Out(output.Normal, "Environments created: %d\n", created)
	}
	return created, nil
}

// provision handles one manifest and reports whether a new environment came
// into existence. All failures are reported and leave the other manifests
// unaffected.
func (d *deployer) provision(manifestPath string) (newlyCreated bool) {
	relativeDir, relErr := filepath.Rel(d.sourceRoot, filepath.Dir(manifestPath))
	if relErr != nil || strings.HasPrefix(relativeDir, "..") {
		d.printer.Out(output.Warning, "Skipping manifest outside source tree: %s\n", manifestPath)
		return false
	}
	targetDir := filepath.Join(d.destBase, relativeDir)
	envDir := filepath.Join(targetDir, pyenv.EnvDirName)
	label := filepath.Join(relativeDir, d.rules.ManifestName)

	if d.dryRun {
		d.printer.Out(output.Normal, "[dry-run] provision environment at %s\n", envDir)
		return false
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		d.printer.Out(output.Warning, "Cannot prepare directory for environment (%s): %s\n", label, err)
		d.sum.EnvFailures++
		return false
	}

	existed := dirExists(envDir)
	if existed {
		d.printer.Out(output.Verbose, "Environment already present: %s\n", envDir)
		d.sum.EnvsReused++
	} else {
		d.printer.Out(output.Normal, "Creating environment: %s\n", envDir)
		if err := d.env.CreateEnvironment(envDir); err != nil {
			d.printer.Out(output.Warning, "Environment creation failed (%s): %s\n", label, err)
			d.sum.EnvFailures++
			return false
		}
		newlyCreated = true
	}

	if err := d.env.UpgradeInstaller(envDir); err != nil {
		d.printer.Out(output.Warning, "Installer upgrade failed (%s): %s\n", label, err)
		//not fatal for this manifest, installation is still attempted
	}

	specifiers, loadErr := manifest.Load(manifestPath)
	if loadErr != nil {
		d.printer.Out(output.Warning, "Cannot read manifest (%s): %s\n", label, loadErr)
		return
	}
	if len(specifiers) == 0 {
		d.printer.Out(output.Normal, "Empty manifest, bare environment provisioned (%s).\n", label)
		return
	}

	d.printer.Out(output.Normal, "Installing %d %s from %s\n", len(specifiers), output.Plural(len(specifiers), "package", "packages"), label)
	if err := d.env.InstallPackages(envDir, specifiers); err != nil {
		//a partially populated environment is kept, the idempotent re-run is the recovery path
		d.printer.Out(output.Warning, "Installation failed (%s): %s\n", label, err)
		d.sum.EnvFailures++
	}
	return
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
