package main

import (
	"os"

	"github.com/coderi421/kyuu-orm/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
