// Command canvas-replay plays gesture scripts against a saved canvas
// project, optionally keeping the operator HTTP surface up afterwards.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
