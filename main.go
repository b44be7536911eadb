package main

import (
	"os"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
