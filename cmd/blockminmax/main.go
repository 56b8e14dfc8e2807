// Command blockminmax grids an XYZ point file onto a regular lattice,
// keeping the minimum (or maximum) z per cell.
package main

import (
	"os"
)

func main() {
	root := newRootCmd(newApp(os.Stdout))
	root.SetArgs(normalizeArgs(os.Args[1:]))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
