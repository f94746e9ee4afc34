package output

import (
	"fmt"
	"io"
	"os"
)

type Class int

const (
	Required Class = iota //requested information, never suppressed
	Error
	Warning
	Normal
	Verbose
	Summary
)

var icons = map[Class]string{
	Error:   "❌",
	Warning: "⚠️",
	Normal:  "ℹ️",
	Verbose: "ℹ️",
	Summary: "📊",
}

var plainTags = map[Class]string{
	Error:   "[ERROR]",
	Warning: "[WARN]",
	Normal:  "[INFO]",
	Verbose: "[INFO]",
	Summary: "[SUM]",
}

// Printer writes classed messages to the terminal, each line tagged with an
// icon (or a plain label when icons are disabled). Error and Warning go to
// the diagnosis stream.
type Printer struct {
	classes   map[Class]bool
	terminal  io.Writer
	diagnosis io.Writer
	useIcons  bool
}

func NewPrinter(include []Class, useIcons bool) (p Printer) {
	p = Printer{
		classes:   map[Class]bool{Required: true, Error: true},
		terminal:  os.Stdout,
		diagnosis: os.Stderr,
		useIcons:  useIcons,
	}
	for _, class := range include {
		p.classes[class] = true
	}
	return
}

// IconsEnabled honors the PLAIN_LOGS environment switch.
func IconsEnabled() bool {
	return os.Getenv("PLAIN_LOGS") == ""
}

func (p Printer) prefix(class Class) string {
	if class == Required {
		return ""
	}
	if p.useIcons {
		return icons[class] + " "
	}
	return plainTags[class] + " "
}

func (p Printer) Out(class Class, format string, values ...interface{}) {
	if !p.classes[class] {
		return
	}
	target := p.terminal
	if class == Error || class == Warning {
		target = p.diagnosis
	}
	fmt.Fprintf(target, p.prefix(class)+format, values...)
}

// SetWriters redirects output, primarily for capturing in tests.
func (p *Printer) SetWriters(terminal io.Writer, diagnosis io.Writer) {
	p.terminal = terminal
	p.diagnosis = diagnosis
}
