// Command cmvalidate loads a genesis atom description and runs it through
// a freshly built constraint machine, printing the outcome. It exists to
// exercise the library end to end, not as a production node.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
