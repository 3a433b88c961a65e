package main

import (
	"os"

	"pseudo2wasm/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
