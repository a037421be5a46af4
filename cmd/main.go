package main

import (
	"os"

	"github.com/soundprediction/hskg/cmd/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
