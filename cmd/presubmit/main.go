package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/garagon/presubmit/cmd/presubmit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		if errors.Is(err, commands.ErrChecksFailed) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
