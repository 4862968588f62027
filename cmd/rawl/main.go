package main

import (
	"os"

	"github.com/prorochestvo/rawl/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
