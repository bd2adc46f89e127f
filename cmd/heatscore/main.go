// heatscore computes preliminary heat results from raw judge scores.
//
// Usage:
//
//	heatscore compute --fixture=<file> [heat-id...]
//	heatscore heat --dsn=<url> <heat-id>...
//	heatscore types
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
