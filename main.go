package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/storyspark-lab/storyspark/pkg/cli"
)

var version = "dev"

func main() {
	// Optional .env for local development; missing file is not an error
	_ = godotenv.Load()

	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		os.Exit(1)
	}
}
