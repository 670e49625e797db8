package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/athorburn/concordia/internal/cli"
)

func main() {
	// Local .env carries OPENAI_API_KEY during development; absence is fine
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
