// Command ragkit chunks, embeds and retrieves text documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// envHome overrides the config and data directory (default ~/.ragkit).
const envHome = "RAGKIT_HOME"

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional; variables already set take precedence.
	_ = godotenv.Load()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(os.Getenv(envHome))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ragkit: %v\n", err)
		return 1
	}
	defer a.Close()

	cli.SetServices(a.services)

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
