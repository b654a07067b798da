package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "routec: %v\n", err)
		os.Exit(1)
	}
}
