package main

import (
	"os"

	"github.com/gamedrops/droplist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
