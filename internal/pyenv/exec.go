package pyenv

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// RequiredTool must be present on PATH for the exec-backed manager to work.
const RequiredTool = "python3"

type execManager struct {
	python string //system-wide interpreter used to bootstrap environments
}

// NewExecManager returns a Manager that shells out to the given system
// interpreter ("python3 -m venv", "pip install ..."). An empty string selects
// the default tool name, resolution against PATH happens on first use.
func NewExecManager(python string) Manager {
	if python == "" {
		python = RequiredTool
	}
	return &execManager{python: python}
}

// CheckAvailable verifies the bootstrap interpreter can be found on PATH.
func CheckAvailable(python string) error {
	if python == "" {
		python = RequiredTool
	}
	if _, err := exec.LookPath(python); err != nil {
		return fmt.Errorf("required tool %s not found: %w", python, err)
	}
	return nil
}

func (m *execManager) CreateEnvironment(envDir string) error {
	cmd := exec.Command(m.python, "-m", "venv", envDir)
	cmd.Stdout = io.Discard
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("environment creation failed (is the venv module installed?): %w", err)
	}
	return nil
}

func (m *execManager) UpgradeInstaller(envDir string) error {
	cmd := exec.Command(InterpreterPath(envDir), "-m", "pip", "install", "--upgrade", "pip")
	cmd.Stdout = io.Discard //upgrade chatter is of no interest unless it fails
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("installer upgrade failed: %w", err)
	}
	return nil
}

func (m *execManager) InstallPackages(envDir string, specifiers []string) error {
	if len(specifiers) == 0 {
		return nil
	}
	requirements, err := os.CreateTemp("", "pydock-requirements-*.txt")
	if err != nil {
		return fmt.Errorf("cannot stage requirements: %w", err)
	}
	defer os.Remove(requirements.Name())
	if _, err := requirements.WriteString(strings.Join(specifiers, "\n") + "\n"); err != nil {
		requirements.Close()
		return fmt.Errorf("cannot stage requirements: %w", err)
	}
	if err := requirements.Close(); err != nil {
		return fmt.Errorf("cannot stage requirements: %w", err)
	}

	cmd := exec.Command(InstallerPath(envDir), "install", "-r", requirements.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("package installation failed: %w", err)
	}
	return nil
}
