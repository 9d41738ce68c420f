package main

import (
	"os"

	"github.com/banklift-dev/banklift/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
