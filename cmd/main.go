package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"todo-tracker/internal/cli"
)

func main() {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	if err := cli.Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
