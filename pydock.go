// Package pydock implements mirrored deployment of Python tool trees: scripts
// are copied from a source tree into a managed destination tree, directories
// carrying a dependency manifest get an isolated environment provisioned at
// the mirrored location, and every mirrored script receives an executable
// wrapper in a shared binary directory which resolves its interpreter at
// invocation time.
package pydock

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/n2code/ndocid"

	"pydock/internal/output"
	"pydock/internal/pyenv"
	"pydock/internal/scan"
)

type VerbosityLevel int

const (
	DefaultVerbosity VerbosityLevel = iota
	VerboseMode
	QuietMode
)

// ElevationPolicy decides how wrappers reach a binary directory the current
// user cannot write to.
type ElevationPolicy int

const (
	// ElevatePreferUnprivileged writes directly when possible and only falls
	// back to privilege elevation when the binary directory is not writable.
	ElevatePreferUnprivileged ElevationPolicy = iota
	// ElevateAlways routes every wrapper installation through elevation.
	ElevateAlways
)

// CreateConfig holds the common switches of a deployment handle.
// The zero value is a sensible default.
type CreateConfig struct {
	Verbosity     VerbosityLevel
	DryRun        bool //report planned actions without mutating anything
	Elevation     ElevationPolicy
	WrapperPrefix string //prepended to every wrapper name
	PlainLogs     bool   //suppress icon prefixes in output

	// EnvManager substitutes the environment tooling, primarily for tests.
	// nil selects the python3 exec adapter.
	EnvManager pyenv.Manager
}

// RequestChoice represents a single-choice decision callback, the first
// option is considered the default "yes"-like choice. If the choice is
// aborted an empty string must be returned.
type RequestChoice func(request string, options []string, cleanup bool) (choice string)

const ChoiceAborted = ""

// Summary reports the counts of one deployment run. It is printed regardless
// of partial failures encountered along the way.
type Summary struct {
	FilesCopied       int
	CopyFailures      int
	EnvsCreated       int
	EnvsReused        int
	EnvFailures       int
	WrappersInstalled int
	WrappersSkipped   int
}

// Deployer is the deployment handle for one source tree. All operations are
// idempotent on an unchanged source: mirroring re-copies unconditionally,
// provisioning converges, and wrapper content is a pure function of target
// path and name. Mirroring is additive-only: files deleted from the source
// are never removed from the destination.
type Deployer interface {

	// Mirror copies all qualifying scripts into the destination tree,
	// preserving relative structure and overwriting unconditionally.
	// A per-file copy failure is logged and the file skipped.
	Mirror() (copied int, err error)

	// ProvisionAll ensures an isolated environment next to every mirrored
	// manifest directory and installs the declared packages. Failures are
	// isolated per manifest.
	ProvisionAll() (created int, err error)

	// SynthesizeAll generates a wrapper in the binary directory for every
	// script present in the destination tree. Name collisions fall back to a
	// path-derived name; an unresolvable collision is reported and skipped.
	SynthesizeAll() (installed int, err error)

	// Deploy runs mirror, provisioning, and wrapper synthesis in order and
	// returns the accumulated summary. Only a precondition failure (required
	// external tool absent) aborts before any mutation.
	Deploy() (Summary, error)

	// Plan renders the tree of planned destination content without touching
	// the filesystem.
	Plan() (string, error)

	// Clear removes previously mirrored subtrees and previously generated
	// wrappers (identified by their marker comment), confirming each batch
	// through the given callback.
	Clear(choice RequestChoice) error

	// Uninstall removes the wrappers recorded in the install log and then
	// the destination base itself.
	Uninstall(choice RequestChoice) error

	// Watch re-runs Deploy whenever the source tree changes, debounced,
	// until the stop channel is closed.
	Watch(stop <-chan struct{}) error

	// LastSummary returns the summary accumulated by the most recent
	// operations on this handle.
	LastSummary() Summary
}

type deployer struct {
	sourceRoot string //absolute, system-native path
	destBase   string //absolute, system-native path
	binDir     string //absolute, system-native path
	rules      scan.Rules
	env        pyenv.Manager
	needsTool  bool //precondition check applies only to the exec-backed manager
	elevation  ElevationPolicy
	prefix     string
	dryRun     bool
	printer    output.Printer
	runId      string
	logEntries []string //"name -> target" lines of the current run
	sum        Summary
}

// New creates a deployment handle mirroring sourceRoot to destBase with
// wrappers in binDir. The source must exist, the destination and binary
// directories are created on demand.
func New(sourceRoot string, destBase string, binDir string, config CreateConfig) (Deployer, error) {
	d := &deployer{
		sourceRoot: mustAbsFilepath(sourceRoot),
		destBase:   mustAbsFilepath(destBase),
		binDir:     mustAbsFilepath(binDir),
		rules:      scan.DefaultRules(),
		elevation:  config.Elevation,
		prefix:     config.WrapperPrefix,
		dryRun:     config.DryRun,
		runId:      ndocid.EncodeUint64(uint64(time.Now().Unix())),
	}

	info, err := os.Stat(d.sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("source tree inaccessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source tree is not a directory: %s", d.sourceRoot)
	}

	classes := []output.Class{output.Normal, output.Warning, output.Summary}
	switch config.Verbosity {
	case VerboseMode:
		classes = append(classes, output.Verbose)
	case QuietMode:
		classes = []output.Class{output.Warning, output.Summary}
	}
	d.printer = output.NewPrinter(classes, output.IconsEnabled() && !config.PlainLogs)

	d.env = config.EnvManager
	if d.env == nil {
		d.env = pyenv.NewExecManager("")
		d.needsTool = true
	}
	return d, nil
}

func (d *deployer) LastSummary() Summary {
	return d.sum
}

func mustAbsFilepath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		panic(err)
	}
	return abs
}
