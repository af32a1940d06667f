// Package main provides the reflink CLI entrypoint.
package main

import (
	"os"

	"github.com/lukemcguire/reflink/cli"
)

func main() {
	os.Exit(cli.Execute())
}
