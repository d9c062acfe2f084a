package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "devel"

type CmdVersion struct{}

func (c *CmdVersion) Execute(args []string) error {
	v := version
	if bi, ok := debug.ReadBuildInfo(); ok && v == "devel" && bi.Main.Version != "" {
		v = bi.Main.Version
	}

	fmt.Printf("%s version %s %s/%s (%s)\n", bin, v, runtime.GOOS, runtime.GOARCH, runtime.Version())
	return nil
}
