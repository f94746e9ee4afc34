package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pydock"
	"pydock/internal/config"
	"pydock/internal/wrapper"
)

type CliRequest struct {
	verbose     bool
	quiet       bool
	dryRun      bool
	assumeYes   bool
	plainLogs   bool
	action      string
	actionFlags map[string]interface{}
	actionArgs  []string
}

const defaultBinDir = `/usr/local/bin`

func defaultDestBase() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, "Documents", "Python")
}

func parseFlags(args []string, out io.Writer, errOut io.Writer) (request *CliRequest, exitCode int) {
	flags := flag.NewFlagSet("", flag.ExitOnError)
	flags.Usage = func() {
		flags.Output().Write([]byte(`
Usage:
   pydock [-v|-q] [-n] [-y] [-p] [-h] [ACTION] [FLAG...] [TARGET]

 ACTIONs:  install  plan  clear  uninstall  resolve  watch

 Without an ACTION a plain install is performed.

`))
		flags.PrintDefaults()
		flags.Output().Write([]byte(`
 FLAG(s) and TARGET(s) are action-specific.
 You can read the help on any action:
    pydock <ACTION> -h

 Mirroring is additive-only: files removed from the source tree are never
 removed from the destination tree (use clear for a clean reinstallation).

`))
	}

	request = &CliRequest{}
	var generalHelpRequested bool
	flags.BoolVar(&request.verbose, "v", false, "Output more details on what is done (verbose mode)")
	flags.BoolVar(&request.quiet, "q", false, "Output as little as possible (quiet mode)")
	flags.BoolVar(&request.dryRun, "n", false, "Report planned actions without changing anything (dry run)")
	flags.BoolVar(&request.assumeYes, "y", false, "Confirm all questions automatically (non-interactive)")
	flags.BoolVar(&request.plainLogs, "p", false, "Plain log output without icons (also via PLAIN_LOGS)")
	flags.BoolVar(&generalHelpRequested, "h", false, "Display general usage help")

	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(errOut, "%s\nUsage help: pydock -h\n", err)
			exitCode = 2
			request = nil
		}
	}()

	flags.Parse(args) //exits on error

	if generalHelpRequested {
		flags.Usage()
		exitCode = 0
		request = nil
		return
	}
	if request.verbose && request.quiet {
		err = errors.New("quiet mode and verbose mode are mutually exclusive")
		return
	}

	request.action = "install"
	request.actionArgs = nil
	if flags.NArg() > 0 {
		request.action = flags.Arg(0)
		request.actionArgs = flags.Args()[1:]
	}
	request.actionFlags = make(map[string]interface{})

	actionDescriptionIndent := "  "
	actionDescription := actionDescriptionIndent
	flagSpecification := ""
	argumentSpecification := ""

	actionParams := flag.NewFlagSet(request.action+" action", flag.ExitOnError)
	actionParams.Usage = func() {
		fmt.Fprintf(actionParams.Output(), `
Usage of %s action:
   pydock [MODE] %s%s%s

%s
`, request.action, request.action, flagSpecification, argumentSpecification, actionDescription)
		if len(flagSpecification) > 0 {
			fmt.Fprint(actionParams.Output(), `
 Available flags:
`)
		}
		actionParams.PrintDefaults()
		fmt.Fprint(actionParams.Output(), `
 Global MODE documentation can be shown by:
    pydock -h

`)
	}

	addTreeFlags := func() {
		request.actionFlags["source"] = actionParams.String("source", "", "source tree to deploy from\n(default: PYDOCK_SOURCE or the working directory)")
		request.actionFlags["dest"] = actionParams.String("dest", "", "destination base the tree is mirrored to\n(default: PYDOCK_DEST or ~/Documents/Python)")
		request.actionFlags["bin"] = actionParams.String("bin", "", "shared binary directory receiving the wrappers\n(default: PYDOCK_BIN or "+defaultBinDir+")")
	}

ActionParamCheck:
	switch request.action {
	case "install", "watch":
		flagSpecification = " [-source ...] [-dest ...] [-bin ...] [-clear] [-root] [-prefix ...]"
		switch request.action {
		case "install":
			actionDescription += "Mirror the source tree, provision environments for every manifest,\n" +
				actionDescriptionIndent + "and install a wrapper per mirrored script."
		case "watch":
			actionDescription += "Run an install and repeat it whenever the source tree changes."
		}
		addTreeFlags()
		request.actionFlags["clear"] = actionParams.Bool("clear", false, "perform a cleaned reinstallation first (see clear action)")
		request.actionFlags["root"] = actionParams.Bool("root", false, "always install wrappers through elevation (sudo)")
		request.actionFlags["prefix"] = actionParams.String("prefix", "", "fixed prefix prepended to every wrapper name")
		actionParams.Parse(request.actionArgs)
		request.actionArgs = actionParams.Args()
		if actionParams.NArg() > 0 {
			err = errors.New("command accepts no arguments, only flags")
			break ActionParamCheck
		}
	case "plan":
		flagSpecification = " [-source ...] [-dest ...] [-prefix ...]"
		actionDescription += "Show the planned destination tree including wrapper names and\n" +
			actionDescriptionIndent + "environment locations, without changing anything."
		addTreeFlags()
		request.actionFlags["prefix"] = actionParams.String("prefix", "", "fixed prefix prepended to every wrapper name")
		actionParams.Parse(request.actionArgs)
		request.actionArgs = actionParams.Args()
		if actionParams.NArg() > 0 {
			err = errors.New("command accepts no arguments, only flags")
			break ActionParamCheck
		}
	case "clear", "uninstall":
		flagSpecification = " [-source ...] [-dest ...] [-bin ...]"
		switch request.action {
		case "clear":
			actionDescription += "Remove mirrored subtrees from the destination base and marked\n" +
				actionDescriptionIndent + "wrappers from the binary directory, with confirmation."
		case "uninstall":
			actionDescription += "Remove the wrappers recorded in the install log and then the\n" +
				actionDescriptionIndent + "destination tree, with confirmation."
		}
		addTreeFlags()
		actionParams.Parse(request.actionArgs)
		request.actionArgs = actionParams.Args()
		if actionParams.NArg() > 0 {
			err = errors.New("command accepts no arguments, only flags")
			break ActionParamCheck
		}
	case "resolve":
		argumentSpecification = " SCRIPT"
		actionDescription += "Print the interpreter a wrapper for the given script would pick,\n" +
			actionDescriptionIndent + "using the same upward environment search the wrappers perform."
		actionParams.Parse(request.actionArgs)
		request.actionArgs = actionParams.Args()
		if actionParams.NArg() != 1 {
			err = errors.New("bad number of arguments, exactly one expected")
			break ActionParamCheck
		}
	default:
		err = fmt.Errorf(`unknown action "%s"`, request.action)
	}
	return
}

func (rq *CliRequest) stringFlag(name string) string {
	if value, exists := rq.actionFlags[name]; exists {
		return *(value.(*string))
	}
	return ""
}

func (rq *CliRequest) boolFlag(name string) bool {
	if value, exists := rq.actionFlags[name]; exists {
		return *(value.(*bool))
	}
	return false
}

// treePaths resolves the three directories with flag > environment >
// settings file > default precedence.
func (rq *CliRequest) treePaths() (source string, dest string, bin string, settings config.Settings, err error) {
	source = rq.stringFlag("source")
	if source == "" {
		source = os.Getenv("PYDOCK_SOURCE")
	}
	if source == "" {
		source, err = os.Getwd()
		if err != nil {
			return
		}
	}

	settings, err = config.Load(source)
	if err != nil {
		return
	}

	dest = rq.stringFlag("dest")
	if dest == "" {
		dest = os.Getenv("PYDOCK_DEST")
	}
	if dest == "" {
		dest = settings.Dest
	}
	if dest == "" {
		dest = defaultDestBase()
	}

	bin = rq.stringFlag("bin")
	if bin == "" {
		bin = os.Getenv("PYDOCK_BIN")
	}
	if bin == "" {
		bin = settings.Bin
	}
	if bin == "" {
		bin = defaultBinDir
	}
	return
}

func (rq *CliRequest) execute() error {
	if rq.action == "resolve" {
		script, err := filepath.Abs(rq.actionArgs[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, wrapper.ResolveOnDisk(script, ""))
		return nil
	}

	source, dest, bin, settings, err := rq.treePaths()
	if err != nil {
		return err
	}

	cliConfig := pydock.CreateConfig{
		DryRun:        rq.dryRun,
		PlainLogs:     rq.plainLogs,
		WrapperPrefix: rq.stringFlag("prefix"),
	}
	if cliConfig.WrapperPrefix == "" {
		cliConfig.WrapperPrefix = settings.Prefix
	}
	if rq.verbose {
		cliConfig.Verbosity = pydock.VerboseMode
	}
	if rq.quiet {
		cliConfig.Verbosity = pydock.QuietMode
	}
	if rq.boolFlag("root") || settings.Elevate {
		cliConfig.Elevation = pydock.ElevateAlways
	}

	deployer, err := pydock.New(source, dest, bin, cliConfig)
	if err != nil {
		return err
	}

	choice := PromptUser(!rq.plainLogs)
	if rq.assumeYes {
		choice = AutoChooseDefaultOption(rq.quiet)
	}

	switch rq.action {
	case "install", "watch":
		if rq.boolFlag("clear") {
			if err := deployer.Clear(choice); err != nil {
				return err
			}
		}
		if _, err := deployer.Deploy(); err != nil {
			return err
		}
		if rq.action == "watch" {
			return deployer.Watch(nil)
		}
	case "plan":
		rendered, err := deployer.Plan()
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, rendered)
	case "clear":
		return deployer.Clear(choice)
	case "uninstall":
		return deployer.Uninstall(choice)
	default:
		panic("bad action")
	}
	return nil
}

func main() {
	rq, rc := parseFlags(os.Args[1:], os.Stdout, os.Stderr)
	if rc != 0 || rq == nil {
		os.Exit(rc)
	}
	if err := rq.execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}
