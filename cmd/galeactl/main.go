// galeactl is a command line tool for the Galea serial board: it streams
// sample data to local or remote sinks, runs clock probes, and forwards
// raw configuration commands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
