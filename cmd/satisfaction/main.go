package main

import (
	"os"

	"satisfaction/cmd/satisfaction/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
