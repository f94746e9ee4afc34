package pydock

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pydock/internal/pyenv"
)

// fakeEnvManager substitutes the Python tooling: created environments exist
// on disk (directory plus executable interpreter stub) so that existence
// checks and the runtime resolver behave like with real environments.
type fakeEnvManager struct {
	created    []string
	upgraded   []string
	installed  map[string][]string
	failCreate bool
}

func newFakeEnvManager() *fakeEnvManager {
	return &fakeEnvManager{installed: make(map[string][]string)}
}

func (f *fakeEnvManager) CreateEnvironment(envDir string) error {
	if f.failCreate {
		return errors.New("platform lacks environment support")
	}
	if err := os.MkdirAll(filepath.Join(envDir, "bin"), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(pyenv.InterpreterPath(envDir), []byte("#!/bin/sh\n"), 0o755); err != nil {
		return err
	}
	f.created = append(f.created, envDir)
	return nil
}

func (f *fakeEnvManager) UpgradeInstaller(envDir string) error {
	f.upgraded = append(f.upgraded, envDir)
	return nil
}

func (f *fakeEnvManager) InstallPackages(envDir string, specifiers []string) error {
	f.installed[envDir] = append([]string(nil), specifiers...)
	return nil
}

type fixture struct {
	source string
	dest   string
	bin    string
	env    *fakeEnvManager
}

func setupFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	fx := fixture{
		source: filepath.Join(base, "source"),
		dest:   filepath.Join(base, "dest"),
		bin:    filepath.Join(base, "bin"),
		env:    newFakeEnvManager(),
	}
	if err := os.MkdirAll(fx.source, 0o755); err != nil {
		t.Fatal(err)
	}
	return fx
}

func (fx fixture) write(t *testing.T, relativePath string, content string) {
	t.Helper()
	path := filepath.Join(fx.source, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (fx fixture) newDeployer(t *testing.T, config CreateConfig) Deployer {
	t.Helper()
	config.EnvManager = fx.env
	config.Verbosity = QuietMode
	handle, err := New(fx.source, fx.dest, fx.bin, config)
	if err != nil {
		t.Fatalf("deployer setup failed: %s", err)
	}
	handle.(*deployer).printer.SetWriters(io.Discard, io.Discard)
	return handle
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read %s: %s", path, err)
	}
	return string(content)
}

func TestEndToEndDeployment(t *testing.T) {
	fx := setupFixture(t)
	fx.write(t, "tools/report.py", "print('report')\n")
	fx.write(t, "tools/convert/convert.py", "print('convert')\n")
	fx.write(t, "tools/convert/venv.txt", "requests\n# comment\n\nrich==13.7.1")

	summary, err := fx.newDeployer(t, CreateConfig{}).Deploy()
	if err != nil {
		t.Fatalf("deployment failed: %s", err)
	}

	//both scripts mirrored
	if summary.FilesCopied != 2 {
		t.Errorf("expected 2 copied scripts but got %d", summary.FilesCopied)
	}
	for _, mirrored := range []string{"tools/report.py", "tools/convert/convert.py"} {
		if _, err := os.Stat(filepath.Join(fx.dest, filepath.FromSlash(mirrored))); err != nil {
			t.Errorf("mirrored file missing: %s", mirrored)
		}
	}

	//environment only where the manifest is
	convertEnv := filepath.Join(fx.dest, "tools", "convert", pyenv.EnvDirName)
	if len(fx.env.created) != 1 || fx.env.created[0] != convertEnv {
		t.Errorf("expected exactly one environment at %s but got %v", convertEnv, fx.env.created)
	}
	if _, err := os.Stat(filepath.Join(fx.dest, "tools", pyenv.EnvDirName)); err == nil {
		t.Error("no environment must be created for a directory without manifest")
	}

	//manifest filtered to the effective package list, order preserved
	specifiers := fx.env.installed[convertEnv]
	if len(specifiers) != 2 || specifiers[0] != "requests" || specifiers[1] != "rich==13.7.1" {
		t.Errorf("unexpected install list: %v", specifiers)
	}

	//two wrappers, resolving to environment and fallback respectively
	convertWrapper := readFile(t, filepath.Join(fx.bin, "convert"))
	if !strings.Contains(convertWrapper, filepath.Join(fx.dest, "tools", "convert", "convert.py")) {
		t.Error("convert wrapper must target the mirrored script")
	}
	reportWrapper := readFile(t, filepath.Join(fx.bin, "report"))
	if !strings.Contains(reportWrapper, filepath.Join(fx.dest, "tools", "report.py")) {
		t.Error("report wrapper must target the mirrored script")
	}
	if summary.WrappersInstalled != 2 {
		t.Errorf("expected 2 wrappers but got %d", summary.WrappersInstalled)
	}

	//install log records both entries
	log := readFile(t, filepath.Join(fx.dest, InstallLogName))
	if !strings.Contains(log, "convert -> ") || !strings.Contains(log, "report -> ") {
		t.Errorf("install log incomplete:\n%s", log)
	}
}

func TestDeploymentIsIdempotent(t *testing.T) {
	fx := setupFixture(t)
	fx.write(t, "tools/report.py", "print('report')\n")
	fx.write(t, "tools/convert/convert.py", "print('convert')\n")
	fx.write(t, "tools/convert/venv.txt", "requests\n")

	if _, err := fx.newDeployer(t, CreateConfig{}).Deploy(); err != nil {
		t.Fatalf("first deployment failed: %s", err)
	}
	firstWrapper := readFile(t, filepath.Join(fx.bin, "convert"))
	firstScript := readFile(t, filepath.Join(fx.dest, "tools", "convert", "convert.py"))

	//fresh handle, same trees
	summary, err := fx.newDeployer(t, CreateConfig{}).Deploy()
	if err != nil {
		t.Fatalf("second deployment failed: %s", err)
	}

	if len(fx.env.created) != 1 {
		t.Errorf("environment must be created exactly once across runs, got %d creations", len(fx.env.created))
	}
	if summary.EnvsReused != 1 {
		t.Errorf("second run must reuse the environment, summary: %+v", summary)
	}
	if secondWrapper := readFile(t, filepath.Join(fx.bin, "convert")); secondWrapper != firstWrapper {
		t.Error("regenerated wrapper content must be byte-identical")
	}
	if secondScript := readFile(t, filepath.Join(fx.dest, "tools", "convert", "convert.py")); secondScript != firstScript {
		t.Error("re-mirrored script must be byte-identical")
	}
	//package sync is re-issued every run, convergence is the installer's job
	if len(fx.env.installed) != 1 {
		t.Errorf("unexpected install targets: %v", fx.env.installed)
	}
}

func TestEmptyManifestProvisionsBareEnvironment(t *testing.T) {
	fx := setupFixture(t)
	fx.write(t, "tool.py", "print('hi')\n")
	fx.write(t, "venv.txt", "# only comments\n\n")

	if _, err := fx.newDeployer(t, CreateConfig{}).Deploy(); err != nil {
		t.Fatalf("deployment failed: %s", err)
	}

	envDir := filepath.Join(fx.dest, pyenv.EnvDirName)
	if len(fx.env.created) != 1 || fx.env.created[0] != envDir {
		t.Errorf("bare environment expected at %s, created: %v", envDir, fx.env.created)
	}
	if specifiers, requested := fx.env.installed[envDir]; requested {
		t.Errorf("no installation must be requested for an empty manifest, got %v", specifiers)
	}
}

func TestEnvironmentCreationFailureIsIsolated(t *testing.T) {
	fx := setupFixture(t)
	fx.write(t, "a/tool.py", "pass\n")
	fx.write(t, "a/venv.txt", "requests\n")
	fx.write(t, "b/tool2.py", "pass\n")
	fx.env.failCreate = true

	summary, err := fx.newDeployer(t, CreateConfig{}).Deploy()
	if err != nil {
		t.Fatalf("run must not abort on environment failure: %s", err)
	}
	if summary.EnvFailures != 1 {
		t.Errorf("expected 1 environment failure but got %d", summary.EnvFailures)
	}
	if summary.FilesCopied != 2 || summary.WrappersInstalled != 2 {
		t.Errorf("mirroring and wrappers must proceed despite environment failure: %+v", summary)
	}
}

func TestExcludedTreesAreNotMirrored(t *testing.T) {
	fx := setupFixture(t)
	fx.write(t, "keep.py", "pass\n")
	fx.write(t, ".archive/old/tool.py", "pass\n")
	fx.write(t, "__pycache__/cached.py", "pass\n")

	summary, err := fx.newDeployer(t, CreateConfig{}).Deploy()
	if err != nil {
		t.Fatalf("deployment failed: %s", err)
	}
	if summary.FilesCopied != 1 {
		t.Errorf("expected only keep.py to be copied, summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(fx.dest, ".archive")); err == nil {
		t.Error("excluded subtree leaked into the destination")
	}
}

func TestCollidingBasenamesBothGetWrappers(t *testing.T) {
	fx := setupFixture(t)
	fx.write(t, "convert.py", "pass\n")
	fx.write(t, "tools/convert/convert.py", "pass\n")

	summary, err := fx.newDeployer(t, CreateConfig{}).Deploy()
	if err != nil {
		t.Fatalf("deployment failed: %s", err)
	}
	if summary.WrappersInstalled != 2 {
		t.Fatalf("expected 2 wrappers but got %d", summary.WrappersInstalled)
	}
	plain := readFile(t, filepath.Join(fx.bin, "convert"))
	if !strings.Contains(plain, filepath.Join(fx.dest, "convert.py")) {
		t.Error("plain name must belong to the first claimed script")
	}
	if _, err := os.Stat(filepath.Join(fx.bin, "tools-convert-convert")); err != nil {
		t.Error("second script must receive the path-derived wrapper name")
	}
}

func TestDryRunMutatesNothing(t *testing.T) {
	fx := setupFixture(t)
	fx.write(t, "tools/tool.py", "pass\n")
	fx.write(t, "tools/venv.txt", "requests\n")

	summary, err := fx.newDeployer(t, CreateConfig{DryRun: true}).Deploy()
	if err != nil {
		t.Fatalf("dry run failed: %s", err)
	}
	if summary.FilesCopied != 1 || summary.WrappersInstalled != 1 {
		t.Errorf("dry run must still report planned work: %+v", summary)
	}
	if _, err := os.Stat(fx.dest); err == nil {
		t.Error("dry run must not create the destination base")
	}
	if _, err := os.Stat(fx.bin); err == nil {
		t.Error("dry run must not create the binary directory")
	}
	if len(fx.env.created) != 0 {
		t.Errorf("dry run must not create environments: %v", fx.env.created)
	}
}

func TestPlanRendersTree(t *testing.T) {
	fx := setupFixture(t)
	fx.write(t, "tools/convert/convert.py", "pass\n")
	fx.write(t, "tools/convert/venv.txt", "requests\n")

	rendered, err := fx.newDeployer(t, CreateConfig{}).Plan()
	if err != nil {
		t.Fatalf("plan failed: %s", err)
	}
	for _, expected := range []string{"convert.py", "-> convert", pyenv.EnvDirName} {
		if !strings.Contains(rendered, expected) {
			t.Errorf("plan output lacks %q:\n%s", expected, rendered)
		}
	}
}
