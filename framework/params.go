package framework

import (
	"flag"
	"fmt"
	"io"
)

// Params are the command line parameters of a test program.
type Params struct {
	TraitNames      []string
	Filters         RegexFilters
	CaptureCapacity int
	Debug           bool
	DebugAll        bool
	NoColor         bool
	List            bool

	command []string
}

// Read parses args, which include the program name as args[0]. On failure it writes the
// problem and the usage text to errOut and returns false.
func (p *Params) Read(args []string, errOut io.Writer) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "Usage: %s [flags] [trait ...]\n\n", args[0])
		fmt.Fprintf(errOut, "Runs the named traits, or all traits if none are named.\n\n")
		fs.PrintDefaults()
	}
	fs.Var(&p.Filters.MustMatch, "run", "regex pattern(s) to select features to run")
	fs.Var(&p.Filters.MustNotMatch, "skip", "regex pattern(s) to select features not to run")
	fs.IntVar(&p.CaptureCapacity, "capture", DefaultCaptureCapacity, "bytes of diagnostic output kept per feature")
	fs.BoolVar(&p.Debug, "debug", false, "show debug output of failed features")
	fs.BoolVar(&p.DebugAll, "debug-all", false, "show debug output of all features, and harness debug logging")
	fs.BoolVar(&p.NoColor, "no-color", false, "disable colored output")
	fs.BoolVar(&p.List, "list", false, "print the test plan and exit")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if p.CaptureCapacity <= 0 {
		fmt.Fprintln(errOut, "-capture must be positive")
		fs.Usage()
		return false
	}
	p.TraitNames = fs.Args()
	// The rerun hint repeats the flags, so a rerun selects and reports the same way.
	p.command = args[:len(args)-len(p.TraitNames)]
	return true
}
