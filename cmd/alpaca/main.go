// Package main is the entry point for the alpaca CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"apitools/internal/backend/alpaca"
	"apitools/internal/cli"
	"apitools/internal/commands/alpacacmd"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(alpacacmd.Registry, alpaca.NewFromConfig)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
