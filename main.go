package main

import (
	"os"

	"github.com/openbar/barbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
