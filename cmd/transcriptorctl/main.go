package main

import (
	"os"

	"github.com/MF-patino/HerculaneumTranscriptor/cmd/transcriptorctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
