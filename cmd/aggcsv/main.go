// Package main is the entry point for the aggcsv binary.
package main

import (
	"os"

	cli "aggcsv/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
