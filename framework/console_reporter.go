package framework

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/fatih/color"
	"golang.org/x/sys/unix"
)

// Version is the version of the harness, printed at the top of every run.
const Version = "3.1.0"

const indentationStep = 2

// ConsoleReporter prints an indented, human-readable report as the run progresses.
//
// Progress and feature output share the stream: a feature's own stdout appears between its
// name and its outcome.
type ConsoleReporter struct {
	Out     io.Writer
	NoColor bool
	// Command, if set, is the command line used to rerun a single trait. It is shown under
	// failed features.
	Command []string
	// Filters, if defined, are described at the start of the run.
	Filters RegexFilters

	indentation int
	colors      map[Result]*color.Color
}

func NewConsoleReporter(out io.Writer, noColor bool, command []string) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{Out: out, NoColor: noColor, Command: command}
}

func (c *ConsoleReporter) RunStarted(subject *Subject) {
	c.printf(0, "Running traits-unit version %s\n\n", Version)
	PrintFilterDescription(c.Out, c.Filters)
}

func (c *ConsoleReporter) SelectionFailed(err error) {
	c.printf(c.indentation, "%s\n", capitalize(err.Error()))
}

func (c *ConsoleReporter) SubjectStarted(subject *Subject, selected []*Trait) {
	c.printf(0, "Describing: %s\n", subject.Name)
	c.indentation = indentationStep
}

func (c *ConsoleReporter) TraitStarted(trait *Trait) {
	c.printf(c.indentation, "Trait: %s\n", trait.Name)
	c.indentation += indentationStep
}

func (c *ConsoleReporter) FeatureStarted(id FeatureID) {
	c.printf(c.indentation, "Feature: %s... ", id.Feature())
}

func (c *ConsoleReporter) FeatureFinished(id FeatureID, outcome Outcome) {
	if outcome.Result != Failed {
		c.printf(0, "%s\n", c.paint(outcome.Result))
		return
	}
	switch {
	case outcome.Signaled():
		c.printf(0, "(terminated by signal %d - %s: %s) ",
			int(outcome.Signal), unix.SignalName(outcome.Signal), outcome.Signal)
	case outcome.ExitCode.IsDefined():
		c.printf(0, "(exit status %d) ", outcome.ExitCode.IntValue())
	default:
		c.printf(0, "(terminated abnormally) ")
	}
	c.printf(0, "%s\n\n", c.paint(Failed))
	if outcome.Output != "" {
		c.printf(0, "%s", outcome.Output)
		if !strings.HasSuffix(outcome.Output, "\n") {
			c.printf(0, "\n")
		}
	}
	if outcome.Dropped > 0 {
		c.printf(0, "[... %d more bytes not captured]\n", outcome.Dropped)
	}
	if len(c.Command) > 0 {
		c.printf(c.indentation, "to rerun this trait: %s\n", rerunCommand(c.Command, id.Trait()))
	}
	c.printf(0, "\n")
}

func (c *ConsoleReporter) FeatureNotRun(id FeatureID, result Result, reason string) {
	c.printf(c.indentation, "Feature: %s... %s", id.Feature(), c.paint(result))
	if reason != "" {
		c.printf(0, " (%s)", reason)
	}
	c.printf(0, "\n")
}

func (c *ConsoleReporter) TraitFinished(trait *Trait, counts TraitResult) {
	c.indentation -= indentationStep
}

func (c *ConsoleReporter) Summary(totals TraitResult) {
	c.indentation = 0
	width := len(strconv.Itoa(totals.All))
	c.printf(0, "\n")
	c.printf(0, "Succeed: %*d\n", width, totals.Succeed)
	c.printf(0, "Skipped: %*d\n", width, totals.Skipped)
	c.printf(0, " Failed: %*d\n", width, totals.Failed)
	c.printf(0, "   Todo: %*d\n", width, totals.Todo)
	c.printf(0, "    All: %*d\n", width, totals.All)
}

func (c *ConsoleReporter) printf(indentation int, format string, args ...interface{}) {
	fmt.Fprintf(c.Out, "%*s", indentation, "")
	fmt.Fprintf(c.Out, format, args...)
}

func (c *ConsoleReporter) paint(r Result) string {
	if c.colors == nil {
		c.colors = map[Result]*color.Color{
			Succeeded: color.New(color.FgGreen),
			Skipped:   color.New(color.FgYellow),
			Failed:    color.New(color.FgRed, color.Bold),
			Pending:   color.New(color.FgCyan),
		}
		if c.NoColor {
			for _, col := range c.colors {
				col.DisableColor()
			}
		}
	}
	if col, ok := c.colors[r]; ok {
		return col.Sprint(r.String())
	}
	return r.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

func rerunCommand(command []string, trait string) string {
	var b commandBuilder
	b.add(command...)
	b.add(trait)
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
