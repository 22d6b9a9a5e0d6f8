// launchdash serves an interactive SpaceX launch outcome dashboard and
// evaluates its charts from the command line.
//
// Usage:
//
//	launchdash serve [--data spacex_launch_dash.csv] [--addr 127.0.0.1:8052]
//	launchdash chart pie --site "KSC LC-39A" --format csv
//	launchdash chart scatter --low 2000 --high 8000 --format svg --out scatter.svg
//	launchdash import spacex_launch_dash.csv launches.sqlite
//	launchdash schema spacex_launch_dash.csv --format yaml
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
