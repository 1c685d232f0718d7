package main

import (
	"fmt"
	"os"
)

func main() {
	if err := buildRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "artbot:", err)
		os.Exit(1)
	}
}
