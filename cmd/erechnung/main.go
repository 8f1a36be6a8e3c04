package main

import (
	"os"

	"github.com/rezonia/erechnung/cmd/erechnung/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
