package main

import (
	"os"

	"github.com/jrsteele09/tripmate-client/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
