package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "jeeves",
		Short:   "Jeeves is a quota-aware gateway for LLM backends",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newAskCmd(),
		newCacheCmd(),
		newStatsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
