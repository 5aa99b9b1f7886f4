// Package main is the buildledger entry point.
package main

import (
	"os"

	"github.com/kolmo-labs/buildledger/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
