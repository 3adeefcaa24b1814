// Command regiontool inspects and edits region files without the GUI.
//
// Usage:
//
//	regiontool show resources/kellua_saari.ron
//	regiontool add-point --x 120 --y 88 --description "Harbour"
//	regiontool describe --index 0 --text "Old harbour"
//	regiontool convert kellua_saari.ron kellua_saari.yaml
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
