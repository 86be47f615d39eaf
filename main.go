package main

import (
	"os"

	"github.com/phennylalanine/jhvocab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
