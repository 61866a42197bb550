// Package main provides the bestmoved daemon and CLI for serving
// best-move queries from a pool of UCI engine processes.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
