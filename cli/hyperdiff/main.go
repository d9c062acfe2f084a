package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

const (
	bin = "hyperdiff"

	// Exit codes follow git: 129 for usage errors, 128 for fatal errors.
	cannotStartExitCode      = 129
	fatalApplicationExitCode = 128
)

func main() {
	parser := flags.NewNamedParser(bin, flags.Default)
	parser.AddCommand("diff", "Show the edit script between two files or directories.", "", &CmdDiff{})
	parser.AddCommand("log", "Show the edit statistics of every commit of a repository.", "", &CmdLog{})
	parser.AddCommand("version", "Show the version information.", "", &CmdVersion{})

	_, err := parser.Parse()
	if err == nil {
		return
	}

	if e, ok := err.(*flags.Error); ok {
		if e.Type == flags.ErrHelp {
			return
		}

		if e.Type == flags.ErrCommandRequired || e.Type == flags.ErrRequired || e.Type == flags.ErrUnknownCommand {
			os.Exit(cannotStartExitCode)
		}
	}

	fmt.Fprintln(os.Stderr, "ERR:", err)
	os.Exit(fatalApplicationExitCode)
}
