package main

import (
	"os"

	"dpki-lite/go-core/cmd/dpki/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
