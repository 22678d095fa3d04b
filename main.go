// The main package for the resonant executable.
package main

import (
	"os"

	"github.com/freeman-jiang/resonant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
