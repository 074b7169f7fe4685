package main

import (
	"os"

	"github.com/d1childress/neoTUI/cli"
	"github.com/d1childress/neoTUI/logging"
)

func main() {
	logging.Configure()
	os.Exit(cli.Run(os.Args[1:]))
}
