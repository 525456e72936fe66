// Command vui runs the todo example in a terminal and pushes trees to it.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/vui/cmd/vui/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
