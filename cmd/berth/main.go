package main

import (
	"fmt"
	"os"

	"github.com/wharflab/berth/cmd/berth/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitConfigError)
	}
}
