package main

import (
	"os"

	"rxparse/cmd/rxparse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
