package main

import (
	"flag"
	"fmt"
	"os"
)

func flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\nflags for %s:\n", usage, name)
		fs.PrintDefaults()
	}
	return fs
}
