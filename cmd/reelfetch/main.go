// Command reelfetch processes a batch of Instagram Reel links and writes
// their transcripts, a compiled transcript and an optional xlsx report.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
