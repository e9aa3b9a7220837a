package main

import (
	"os"

	"pdfstamp/cmd/pdfstamp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
