package main

import (
	"os"

	"github.com/stockroom-app/stockroom/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
