// RamanKey - Raman peak matching and polymer classification tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/RamanKey/cmd/ramankey/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
