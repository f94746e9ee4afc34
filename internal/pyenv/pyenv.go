// Package pyenv abstracts creation and population of isolated Python
// environments so that deployment logic never spawns interpreters directly.
package pyenv

import "path/filepath"

// EnvDirName is the fixed relative name of an isolated environment inside a
// provisioned directory.
const EnvDirName = ".venv"

// Manager performs the environment operations of one target ecosystem.
// All paths passed in are absolute paths of the environment directory itself
// (i.e. the ".venv" directory, not its parent).
type Manager interface {

	// CreateEnvironment sets up a fresh isolated environment at envDir.
	// The parent directory must exist already.
	CreateEnvironment(envDir string) error

	// UpgradeInstaller brings the environment's package installer to the
	// latest version.
	UpgradeInstaller(envDir string) error

	// InstallPackages installs or re-syncs the given package specifiers in
	// one batch request. An empty list is a no-op.
	InstallPackages(envDir string, specifiers []string) error
}

// InterpreterPath yields the interpreter location inside an environment.
func InterpreterPath(envDir string) string {
	return filepath.Join(envDir, "bin", "python")
}

// InstallerPath yields the package installer location inside an environment.
func InstallerPath(envDir string) string {
	return filepath.Join(envDir, "bin", "pip")
}
